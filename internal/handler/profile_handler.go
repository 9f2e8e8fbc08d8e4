package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/middleware"
	"github.com/mansoorceksport/fitledger/internal/service"
)

type ProfileHandler struct {
	profileService   *service.ProfileService
	dashboardService *service.DashboardService
}

func NewProfileHandler(profileService *service.ProfileService, dashboardService *service.DashboardService) *ProfileHandler {
	return &ProfileHandler{
		profileService:   profileService,
		dashboardService: dashboardService,
	}
}

// GetProfile GET /v1/me/profile
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.profileService.Get(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile PUT /v1/me/profile
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	var req domain.BodyProfile
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	profile, err := h.profileService.Update(c.UserContext(), middleware.GetUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetMetrics GET /v1/me/metrics
func (h *ProfileHandler) GetMetrics(c *fiber.Ctx) error {
	metrics, err := h.profileService.GetMetrics(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(metrics)
}

// GetDashboard GET /v1/me/dashboard?date=YYYY-MM-DD
func (h *ProfileHandler) GetDashboard(c *fiber.Ctx) error {
	date, err := queryDay(c)
	if err != nil {
		return respondError(c, err)
	}
	summary, err := h.dashboardService.GetSummary(c.UserContext(), middleware.GetUserID(c), date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
