package middleware

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const idempotencyHeader = "X-Correlation-ID"

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// IdempotencyMiddleware replays the stored response when a mutating request
// repeats an X-Correlation-ID within ttl. Keys are scoped per user so two
// clients cannot collide on the same ID.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPatch && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get(idempotencyHeader)
		if correlationID == "" {
			return c.Next()
		}

		key := fmt.Sprintf("idempotency:%s:%s", GetUserID(c), correlationID)
		ctx := c.UserContext()

		if raw, err := redisClient.Get(ctx, key).Bytes(); err == nil {
			var cached cachedResponse
			if json.Unmarshal(raw, &cached) == nil {
				c.Set("X-Idempotent-Replay", "true")
				c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
				return c.Status(cached.Status).Send(cached.Body)
			}
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		body := c.Response().Body()
		if status < 200 || status >= 300 || !json.Valid(body) {
			return nil
		}

		payload, err := json.Marshal(cachedResponse{Status: status, Body: append(json.RawMessage(nil), body...)})
		if err == nil {
			if err := redisClient.Set(ctx, key, payload, ttl).Err(); err != nil {
				fmt.Printf("Warning: failed to store idempotent response: %v\n", err)
			}
		}
		return nil
	}
}
