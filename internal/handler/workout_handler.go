package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
	"github.com/mansoorceksport/fitledger/internal/middleware"
	"github.com/mansoorceksport/fitledger/internal/service"
)

type WorkoutHandler struct {
	workoutService *service.WorkoutService
	exerciseRepo   domain.ExerciseRepository // Exposed for simple CRUD
}

func NewWorkoutHandler(workoutService *service.WorkoutService, exerciseRepo domain.ExerciseRepository) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
		exerciseRepo:   exerciseRepo,
	}
}

// --- Exercise library ---

func (h *WorkoutHandler) ListExercises(c *fiber.Ctx) error {
	exs, err := h.workoutService.ListExercises(c.UserContext(), c.Query("category"), c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}
	if exs == nil {
		exs = []*domain.Exercise{}
	}
	return c.JSON(exs)
}

func (h *WorkoutHandler) CreateExercise(c *fiber.Ctx) error {
	// Admin Only (Middleware check outside)
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	if req.Name == "" || req.METValue <= 0 {
		return badRequest(c, "name and a positive met_value are required")
	}
	if err := h.exerciseRepo.Create(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *WorkoutHandler) UpdateExercise(c *fiber.Ctx) error {
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	if req.METValue <= 0 {
		return badRequest(c, "met_value must be positive")
	}
	req.ID = c.Params("id")
	if err := h.exerciseRepo.Update(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}

func (h *WorkoutHandler) DeleteExercise(c *fiber.Ctx) error {
	if err := h.exerciseRepo.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// --- Workouts ---

type createWorkoutRequest struct {
	Name   string               `json:"name"`
	Date   string               `json:"date"`
	Status domain.WorkoutStatus `json:"status"`
	Rating *int                 `json:"rating"`
	Notes  string               `json:"notes"`
}

// CreateWorkout POST /v1/me/workouts
func (h *WorkoutHandler) CreateWorkout(c *fiber.Ctx) error {
	var req createWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	date, err := parseDay(req.Date)
	if err != nil {
		return respondError(c, err)
	}

	workout, err := h.workoutService.Create(c.UserContext(), middleware.GetUserID(c), &domain.Workout{
		Name:   req.Name,
		Date:   date,
		Status: req.Status,
		Rating: req.Rating,
		Notes:  req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(workout)
}

// ListWorkouts GET /v1/me/workouts?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *WorkoutHandler) ListWorkouts(c *fiber.Ctx) error {
	from, err := parseDay(c.Query("from"))
	if err != nil {
		return respondError(c, err)
	}
	to, err := parseDay(c.Query("to"))
	if err != nil {
		return respondError(c, err)
	}
	workouts, err := h.workoutService.List(c.UserContext(), middleware.GetUserID(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workouts)
}

func (h *WorkoutHandler) GetWorkout(c *fiber.Ctx) error {
	workout, err := h.workoutService.Get(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

func (h *WorkoutHandler) DeleteWorkout(c *fiber.Ctx) error {
	if err := h.workoutService.Delete(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// SetStatus PATCH /v1/me/workouts/:id/status
func (h *WorkoutHandler) SetStatus(c *fiber.Ctx) error {
	var req struct {
		Status domain.WorkoutStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	workout, err := h.workoutService.SetStatus(c.UserContext(), middleware.GetUserID(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// CompleteWorkout POST /v1/me/workouts/:id/complete
func (h *WorkoutHandler) CompleteWorkout(c *fiber.Ctx) error {
	workout, err := h.workoutService.Complete(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

type addExerciseRequest struct {
	ExerciseID      string   `json:"exercise_id"`
	Sets            int      `json:"sets"`
	Reps            *int     `json:"reps"`
	DurationMinutes *int     `json:"duration_minutes"`
	LoadKg          *float64 `json:"load_kg"`
	DistanceMeters  *int     `json:"distance_meters"`
	Notes           string   `json:"notes"`
}

// AddExercise POST /v1/me/workouts/:id/exercises
func (h *WorkoutHandler) AddExercise(c *fiber.Ctx) error {
	var req addExerciseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	if req.ExerciseID == "" {
		return badRequest(c, "exercise_id is required")
	}

	entry, err := h.workoutService.AddExercise(c.UserContext(), middleware.GetUserID(c), c.Params("id"), req.ExerciseID, engine.ExerciseInput{
		Sets:            req.Sets,
		Reps:            req.Reps,
		DurationMinutes: req.DurationMinutes,
		LoadKg:          req.LoadKg,
		DistanceMeters:  req.DistanceMeters,
		Notes:           req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UpdateWorkoutExercise PATCH /v1/me/workouts/:id/exercises/:entryId
func (h *WorkoutHandler) UpdateWorkoutExercise(c *fiber.Ctx) error {
	var req service.ExerciseUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	entry, err := h.workoutService.UpdateExercise(c.UserContext(), middleware.GetUserID(c), c.Params("id"), c.Params("entryId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

// RemoveWorkoutExercise DELETE /v1/me/workouts/:id/exercises/:entryId
func (h *WorkoutHandler) RemoveWorkoutExercise(c *fiber.Ctx) error {
	workout, err := h.workoutService.RemoveExercise(c.UserContext(), middleware.GetUserID(c), c.Params("id"), c.Params("entryId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// GetStreak GET /v1/me/workouts/streak?date=YYYY-MM-DD
func (h *WorkoutHandler) GetStreak(c *fiber.Ctx) error {
	asOf, err := parseDay(c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	streak, err := h.workoutService.Streak(c.UserContext(), middleware.GetUserID(c), asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"streak": streak})
}
