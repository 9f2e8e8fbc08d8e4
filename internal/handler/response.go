package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitledger/internal/domain"
)

var notFoundErrors = []error{
	domain.ErrNotFound,
	domain.ErrProfileNotFound,
	domain.ErrExerciseNotFound,
	domain.ErrWorkoutNotFound,
	domain.ErrWorkoutEntryNotFound,
	domain.ErrFoodNotFound,
	domain.ErrRecipeNotFound,
	domain.ErrMealEntryNotFound,
	domain.ErrGoalNotFound,
	domain.ErrChallengeNotFound,
	domain.ErrParticipantNotFound,
	domain.ErrLeaderboardNotFound,
}

var badRequestErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrInvalidPeriod,
	domain.ErrInvalidID,
}

var conflictErrors = []error{
	domain.ErrAlreadyJoined,
	domain.ErrRegistrationClosed,
	domain.ErrChallengeFull,
	domain.ErrInvalidTransition,
	domain.ErrParticipantNotActive,
	domain.ErrDuplicateExercise,
}

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case matchesAny(err, notFoundErrors):
		return fiber.StatusNotFound
	case matchesAny(err, badRequestErrors):
		return fiber.StatusBadRequest
	case matchesAny(err, conflictErrors):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError writes the error envelope for err
func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

// parseDay parses a YYYY-MM-DD value; empty yields the zero time
func parseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	return t, nil
}

// parseDayPtr parses an optional YYYY-MM-DD value
func parseDayPtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDay(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
