package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/middleware"
	"github.com/mansoorceksport/fitledger/internal/service"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
}

func NewChallengeHandler(challengeService *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

type createChallengeRequest struct {
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	ChallengeType        string  `json:"challenge_type"`
	TargetValue          float64 `json:"target_value"`
	TargetUnit           string  `json:"target_unit"`
	Rules                string  `json:"rules"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	RegistrationDeadline *string `json:"registration_deadline"`
	MaxParticipants      *int    `json:"max_participants"`
	IsPublic             bool    `json:"is_public"`
	AllowLateJoin        bool    `json:"allow_late_join"`
}

// CreateChallenge POST /v1/challenges
func (h *ChallengeHandler) CreateChallenge(c *fiber.Ctx) error {
	var req createChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	start, err := parseDay(req.StartDate)
	if err != nil {
		return respondError(c, err)
	}
	end, err := parseDay(req.EndDate)
	if err != nil {
		return respondError(c, err)
	}
	deadline, err := parseDayPtr(req.RegistrationDeadline)
	if err != nil {
		return respondError(c, err)
	}

	challenge, err := h.challengeService.Create(c.UserContext(), middleware.GetUserID(c), &domain.Challenge{
		Title:                req.Title,
		Description:          req.Description,
		ChallengeType:        req.ChallengeType,
		TargetValue:          req.TargetValue,
		TargetUnit:           req.TargetUnit,
		Rules:                req.Rules,
		StartDate:            start,
		EndDate:              end,
		RegistrationDeadline: deadline,
		MaxParticipants:      req.MaxParticipants,
		IsPublic:             req.IsPublic,
		AllowLateJoin:        req.AllowLateJoin,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

// ListChallenges GET /v1/challenges?status=active,open_registration
func (h *ChallengeHandler) ListChallenges(c *fiber.Ctx) error {
	var statuses []domain.ChallengeStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, domain.ChallengeStatus(strings.TrimSpace(s)))
		}
	}
	challenges, err := h.challengeService.List(c.UserContext(), statuses...)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(challenges)
}

func (h *ChallengeHandler) GetChallenge(c *fiber.Ctx) error {
	challenge, err := h.challengeService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(challenge)
}

// TransitionChallenge PATCH /v1/challenges/:id/status
func (h *ChallengeHandler) TransitionChallenge(c *fiber.Ctx) error {
	var req struct {
		Status domain.ChallengeStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	isAdmin := middleware.HasRole(c, domain.RoleAdmin)
	challenge, err := h.challengeService.Transition(c.UserContext(), middleware.GetUserID(c), isAdmin, c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(challenge)
}

// JoinChallenge POST /v1/challenges/:id/join
func (h *ChallengeHandler) JoinChallenge(c *fiber.Ctx) error {
	participant, err := h.challengeService.Join(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(participant)
}

// RecordProgress POST /v1/challenges/:id/progress
func (h *ChallengeHandler) RecordProgress(c *fiber.Ctx) error {
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

	participant, err := h.challengeService.RecordProgress(c.UserContext(), middleware.GetUserID(c), c.Params("id"), date, *req.Value, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(participant)
}

// GetProgressHistory GET /v1/challenges/:id/progress
func (h *ChallengeHandler) GetProgressHistory(c *fiber.Ctx) error {
	history, err := h.challengeService.ProgressHistory(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}

// GetStandings GET /v1/challenges/:id/standings
func (h *ChallengeHandler) GetStandings(c *fiber.Ctx) error {
	standings, err := h.challengeService.Standings(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(standings)
}

// DropOut POST /v1/challenges/:id/dropout
func (h *ChallengeHandler) DropOut(c *fiber.Ctx) error {
	if err := h.challengeService.DropOut(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "dropped out"})
}

// Disqualify POST /v1/challenges/:id/participants/:userId/disqualify (admin)
func (h *ChallengeHandler) Disqualify(c *fiber.Ctx) error {
	if err := h.challengeService.Disqualify(c.UserContext(), c.Params("id"), c.Params("userId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "disqualified"})
}
