package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/middleware"
	"github.com/mansoorceksport/fitledger/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

type createGoalRequest struct {
	GoalType     string  `json:"goal_type"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	TargetValue  float64 `json:"target_value"`
	CurrentValue float64 `json:"current_value"`
	Unit         string  `json:"unit"`
	StartDate    string  `json:"start_date"`
	TargetDate   string  `json:"target_date"`
	IsDailyGoal  bool    `json:"is_daily_goal"`
}

// CreateGoal POST /v1/me/goals
func (h *GoalHandler) CreateGoal(c *fiber.Ctx) error {
	var req createGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	start, err := parseDay(req.StartDate)
	if err != nil {
		return respondError(c, err)
	}
	target, err := parseDay(req.TargetDate)
	if err != nil {
		return respondError(c, err)
	}

	goal, err := h.goalService.Create(c.UserContext(), middleware.GetUserID(c), &domain.Goal{
		GoalType:     req.GoalType,
		Title:        req.Title,
		Description:  req.Description,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Unit:         req.Unit,
		StartDate:    start,
		TargetDate:   target,
		IsDailyGoal:  req.IsDailyGoal,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

// ListGoals GET /v1/me/goals?status=active
func (h *GoalHandler) ListGoals(c *fiber.Ctx) error {
	goals, err := h.goalService.List(c.UserContext(), middleware.GetUserID(c), domain.GoalStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goals)
}

func (h *GoalHandler) GetGoal(c *fiber.Ctx) error {
	goal, err := h.goalService.Get(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goal)
}

// RecordProgress POST /v1/me/goals/:id/progress
func (h *GoalHandler) RecordProgress(c *fiber.Ctx) error {
	var req struct {
		Value *float64 `json:"value"`
		Date  string   `json:"date"`
		Notes string   `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	if req.Value == nil {
		return badRequest(c, "value is required")
	}
	date, err := parseDay(req.Date)
	if err != nil {
		return respondError(c, err)
	}

	goal, err := h.goalService.RecordProgress(c.UserContext(), middleware.GetUserID(c), c.Params("id"), *req.Value, date, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goal)
}

// UpdateStatus PATCH /v1/me/goals/:id/status
func (h *GoalHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status domain.GoalStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	goal, err := h.goalService.UpdateStatus(c.UserContext(), middleware.GetUserID(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goal)
}
