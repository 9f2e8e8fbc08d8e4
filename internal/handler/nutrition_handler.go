package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/middleware"
	"github.com/mansoorceksport/fitledger/internal/service"
)

type NutritionHandler struct {
	nutritionService *service.NutritionService
}

func NewNutritionHandler(nutritionService *service.NutritionService) *NutritionHandler {
	return &NutritionHandler{nutritionService: nutritionService}
}

// queryDay reads ?date=, defaulting to today
func queryDay(c *fiber.Ctx) (time.Time, error) {
	date, err := parseDay(c.Query("date"))
	if err != nil {
		return time.Time{}, err
	}
	if date.IsZero() {
		date = time.Now()
	}
	return date, nil
}

// ========== Foods ==========

func (h *NutritionHandler) SearchFoods(c *fiber.Ctx) error {
	foods, err := h.nutritionService.SearchFoods(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(foods)
}

func (h *NutritionHandler) GetFood(c *fiber.Ctx) error {
	food, err := h.nutritionService.GetFood(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(food)
}

// GetFoodServing GET /v1/foods/:id/serving?grams=150
func (h *NutritionHandler) GetFoodServing(c *fiber.Ctx) error {
	var grams *float64
	if raw := c.Query("grams"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return badRequest(c, "grams must be a positive number")
		}
		grams = &v
	}
	facts, err := h.nutritionService.FoodServing(c.UserContext(), c.Params("id"), grams)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(facts)
}

func (h *NutritionHandler) CreateFood(c *fiber.Ctx) error {
	var req domain.Food
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	food, err := h.nutritionService.CreateFood(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(food)
}

func (h *NutritionHandler) UpdateFood(c *fiber.Ctx) error {
	var req domain.Food
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	food, err := h.nutritionService.UpdateFood(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(food)
}

func (h *NutritionHandler) DeleteFood(c *fiber.Ctx) error {
	if err := h.nutritionService.DeleteFood(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// ========== Recipes ==========

func (h *NutritionHandler) CreateRecipe(c *fiber.Ctx) error {
	var req domain.Recipe
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	recipe, err := h.nutritionService.CreateRecipe(c.UserContext(), middleware.GetUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

func (h *NutritionHandler) ListRecipes(c *fiber.Ctx) error {
	recipes, err := h.nutritionService.ListRecipes(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipes)
}

func (h *NutritionHandler) GetRecipe(c *fiber.Ctx) error {
	recipe, err := h.nutritionService.GetRecipe(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

func (h *NutritionHandler) DeleteRecipe(c *fiber.Ctx) error {
	if err := h.nutritionService.DeleteRecipe(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// SetIngredients PUT /v1/recipes/:id/ingredients
func (h *NutritionHandler) SetIngredients(c *fiber.Ctx) error {
	var req struct {
		Ingredients []domain.RecipeIngredient `json:"ingredients"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	recipe, err := h.nutritionService.SetIngredients(c.UserContext(), middleware.GetUserID(c), c.Params("id"), req.Ingredients)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// AddIngredient POST /v1/recipes/:id/ingredients
func (h *NutritionHandler) AddIngredient(c *fiber.Ctx) error {
	var req domain.RecipeIngredient
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	recipe, err := h.nutritionService.AddIngredient(c.UserContext(), middleware.GetUserID(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// RemoveIngredient DELETE /v1/recipes/:id/ingredients/:foodId
func (h *NutritionHandler) RemoveIngredient(c *fiber.Ctx) error {
	recipe, err := h.nutritionService.RemoveIngredient(c.UserContext(), middleware.GetUserID(c), c.Params("id"), c.Params("foodId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// ========== Meals ==========

type logMealRequest struct {
	ClientID      string          `json:"client_id"`
	MealType      domain.MealType `json:"meal_type"`
	Date          string          `json:"date"`
	FoodID        string          `json:"food_id"`
	RecipeID      string          `json:"recipe_id"`
	QuantityGrams float64         `json:"quantity_grams"`
	Notes         string          `json:"notes"`
}

// LogMeal POST /v1/me/meals
func (h *NutritionHandler) LogMeal(c *fiber.Ctx) error {
	var req logMealRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	date, err := parseDay(req.Date)
	if err != nil {
		return respondError(c, err)
	}

	entry, err := h.nutritionService.LogMeal(c.UserContext(), middleware.GetUserID(c), service.MealLog{
		ClientID:      req.ClientID,
		MealType:      req.MealType,
		Date:          date,
		FoodID:        req.FoodID,
		RecipeID:      req.RecipeID,
		QuantityGrams: req.QuantityGrams,
		Notes:         req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// ListMeals GET /v1/me/meals?date=YYYY-MM-DD
func (h *NutritionHandler) ListMeals(c *fiber.Ctx) error {
	date, err := queryDay(c)
	if err != nil {
		return respondError(c, err)
	}
	meals, err := h.nutritionService.ListMeals(c.UserContext(), middleware.GetUserID(c), date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(meals)
}

func (h *NutritionHandler) DeleteMeal(c *fiber.Ctx) error {
	if err := h.nutritionService.DeleteMeal(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// ========== Water ==========

// LogWater POST /v1/me/water
func (h *NutritionHandler) LogWater(c *fiber.Ctx) error {
	var req struct {
		AmountMl int    `json:"amount_ml"`
		Date     string `json:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	date, err := parseDay(req.Date)
	if err != nil {
		return respondError(c, err)
	}
	progress, err := h.nutritionService.LogWater(c.UserContext(), middleware.GetUserID(c), date, req.AmountMl)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(progress)
}

func (h *NutritionHandler) GetWater(c *fiber.Ctx) error {
	date, err := queryDay(c)
	if err != nil {
		return respondError(c, err)
	}
	progress, err := h.nutritionService.GetWater(c.UserContext(), middleware.GetUserID(c), date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(progress)
}

// ========== Goal & summary ==========

func (h *NutritionHandler) GetNutritionGoal(c *fiber.Ctx) error {
	goal, err := h.nutritionService.GetNutritionGoal(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goal)
}

func (h *NutritionHandler) SetNutritionGoal(c *fiber.Ctx) error {
	var req domain.NutritionGoal
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	goal, err := h.nutritionService.SetNutritionGoal(c.UserContext(), middleware.GetUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goal)
}

// GetDailySummary GET /v1/me/nutrition/summary?date=YYYY-MM-DD
func (h *NutritionHandler) GetDailySummary(c *fiber.Ctx) error {
	date, err := queryDay(c)
	if err != nil {
		return respondError(c, err)
	}
	summary, err := h.nutritionService.DailySummary(c.UserContext(), middleware.GetUserID(c), date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
