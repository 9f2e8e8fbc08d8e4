package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, issuer, userID string, roles []string, exp time.Time) string {
	claims := domain.FitledgerClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", VerifyToken(testSecret, "fitledger"), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c))
	})
	app.Get("/admin", VerifyToken(testSecret, "fitledger"), AuthorizeRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestVerifyToken(t *testing.T) {
	app := newAuthApp()
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", token: signToken(t, testSecret, "fitledger", "user-1", []string{domain.RoleMember}, future), wantStatus: 200, wantBody: "user-1"},
		{name: "missing", token: "", wantStatus: 401},
		{name: "wrong secret", token: signToken(t, "other", "fitledger", "user-1", nil, future), wantStatus: 401},
		{name: "wrong issuer", token: signToken(t, testSecret, "someone-else", "user-1", nil, future), wantStatus: 401},
		{name: "expired", token: signToken(t, testSecret, "fitledger", "user-1", nil, time.Now().Add(-time.Minute)), wantStatus: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestAuthorizeRole(t *testing.T) {
	app := newAuthApp()
	future := time.Now().Add(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "fitledger", "u", []string{domain.RoleMember}, future))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "fitledger", "u", []string{domain.RoleAdmin}, future))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	calls := 0
	app := fiber.New()
	app.Post("/meals", IdempotencyMiddleware(client, time.Hour), func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})

	send := func(correlationID string) (*http.Response, string) {
		req := httptest.NewRequest(http.MethodPost, "/meals", nil)
		if correlationID != "" {
			req.Header.Set("X-Correlation-ID", correlationID)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		return resp, string(body)
	}

	first, body1 := send("abc")
	second, body2 := send("abc")
	assert.Equal(t, fiber.StatusCreated, first.StatusCode)
	assert.Equal(t, fiber.StatusCreated, second.StatusCode)
	assert.Equal(t, body1, body2)
	assert.Equal(t, "true", second.Header.Get("X-Idempotent-Replay"))
	assert.Equal(t, 1, calls)

	_, body3 := send("")
	assert.Equal(t, fmt.Sprintf(`{"call":%d}`, 2), body3)
	assert.Equal(t, 2, calls)
}
