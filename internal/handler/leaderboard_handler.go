package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/service"
	"github.com/mansoorceksport/fitledger/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// CreateLeaderboard POST /v1/leaderboards (admin)
func (h *LeaderboardHandler) CreateLeaderboard(c *fiber.Ctx) error {
	var req domain.Leaderboard
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	lb, err := h.leaderboardService.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lb)
}

func (h *LeaderboardHandler) ListLeaderboards(c *fiber.Ctx) error {
	boards, err := h.leaderboardService.ListActive(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(boards)
}

// GetLeaderboard GET /v1/leaderboards/:id?date=YYYY-MM-DD
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	asOf, err := parseDay(c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.leaderboardService.Get(c.UserContext(), c.Params("id"), asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// PublishLeaderboard POST /v1/leaderboards/:id/publish?date=YYYY-MM-DD (admin)
func (h *LeaderboardHandler) PublishLeaderboard(c *fiber.Ctx) error {
	asOf, err := parseDay(c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.leaderboardService.Publish(c.UserContext(), c.Params("id"), asOf)
	if err != nil {
		return respondError(c, err)
	}
	telemetry.AddSpanEvent(c, "leaderboard.published",
		attribute.String("leaderboard.id", c.Params("id")),
		attribute.Int("leaderboard.entries", len(page.Entries)),
	)
	return c.JSON(page)
}
