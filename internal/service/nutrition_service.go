package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
	"github.com/mansoorceksport/fitledger/internal/telemetry"
)

type NutritionService struct {
	foodRepo    domain.FoodRepository
	recipeRepo  domain.RecipeRepository
	mealRepo    domain.MealEntryRepository
	waterRepo   domain.WaterIntakeRepository
	goalRepo    domain.NutritionGoalRepository
	workoutRepo domain.WorkoutRepository
	profileRepo domain.ProfileRepository
	cache       domain.CacheRepository
	cacheTTL    time.Duration
	scaling     engine.RecipeScaling
	metrics     *telemetry.Metrics
	now         func() time.Time
}

// NutritionRepositories groups the stores the nutrition service reads and writes
type NutritionRepositories struct {
	Foods          domain.FoodRepository
	Recipes        domain.RecipeRepository
	Meals          domain.MealEntryRepository
	Water          domain.WaterIntakeRepository
	NutritionGoals domain.NutritionGoalRepository
	Workouts       domain.WorkoutRepository
	Profiles       domain.ProfileRepository
}

func NewNutritionService(repos NutritionRepositories, cache domain.CacheRepository, cacheTTL time.Duration, scaling engine.RecipeScaling, metrics *telemetry.Metrics) *NutritionService {
	return &NutritionService{
		foodRepo:    repos.Foods,
		recipeRepo:  repos.Recipes,
		mealRepo:    repos.Meals,
		waterRepo:   repos.Water,
		goalRepo:    repos.NutritionGoals,
		workoutRepo: repos.Workouts,
		profileRepo: repos.Profiles,
		cache:       cache,
		cacheTTL:    cacheTTL,
		scaling:     scaling,
		metrics:     metrics,
		now:         time.Now,
	}
}

// ========== Foods ==========

func (s *NutritionService) CreateFood(ctx context.Context, food *domain.Food) (*domain.Food, error) {
	food.Name = strings.TrimSpace(food.Name)
	if food.Name == "" {
		return nil, fmt.Errorf("%w: food name is required", domain.ErrInvalidInput)
	}
	if err := food.Validate(); err != nil {
		return nil, err
	}
	if food.DefaultServingGrams == 0 {
		food.DefaultServingGrams = engine.ReferenceGrams
	}
	food.ID = ""
	if err := s.foodRepo.Create(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}

func (s *NutritionService) GetFood(ctx context.Context, id string) (*domain.Food, error) {
	return s.foodRepo.GetByID(ctx, id)
}

func (s *NutritionService) SearchFoods(ctx context.Context, query string, limit int) ([]*domain.Food, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	foods, err := s.foodRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if foods == nil {
		foods = []*domain.Food{}
	}
	return foods, nil
}

// FoodServing is the nutrition of one serving; nil grams means the food's default serving
func (s *NutritionService) FoodServing(ctx context.Context, id string, grams *float64) (*domain.NutritionFacts, error) {
	if grams != nil && *grams <= 0 {
		return nil, fmt.Errorf("%w: serving grams must be positive", domain.ErrInvalidInput)
	}
	food, err := s.foodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	facts := engine.PerServing(*food, grams)
	return &facts, nil
}

// UpdateFood saves new reference values and recomputes every recipe using the
// food. Logged meals keep their snapshots.
func (s *NutritionService) UpdateFood(ctx context.Context, id string, food *domain.Food) (*domain.Food, error) {
	if _, err := s.foodRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := food.Validate(); err != nil {
		return nil, err
	}
	if food.DefaultServingGrams == 0 {
		food.DefaultServingGrams = engine.ReferenceGrams
	}
	food.ID = id
	if err := s.foodRepo.Update(ctx, food); err != nil {
		return nil, err
	}

	if err := s.refreshRecipesUsing(ctx, id); err != nil {
		return nil, fmt.Errorf("food updated but recipe totals are stale: %w", err)
	}
	return food, nil
}

// DeleteFood refuses to remove a food that recipes still reference
func (s *NutritionService) DeleteFood(ctx context.Context, id string) error {
	recipes, err := s.recipeRepo.ListByFood(ctx, id)
	if err != nil {
		return err
	}
	if len(recipes) > 0 {
		return fmt.Errorf("%w: food is used by %d recipe(s)", domain.ErrInvalidInput, len(recipes))
	}
	return s.foodRepo.Delete(ctx, id)
}

func (s *NutritionService) refreshRecipesUsing(ctx context.Context, foodID string) error {
	recipes, err := s.recipeRepo.ListByFood(ctx, foodID)
	if err != nil {
		return err
	}
	for _, r := range recipes {
		if err := s.recompute(ctx, r); err != nil {
			return fmt.Errorf("recipe %s: %w", r.ID, err)
		}
		if err := s.recipeRepo.SaveIngredients(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// ========== Recipes ==========

// RecipeView is a recipe with its per-serving nutrition
type RecipeView struct {
	*domain.Recipe
	PerServing domain.MacroTotals `json:"per_serving"`
}

func (s *NutritionService) CreateRecipe(ctx context.Context, userID string, recipe *domain.Recipe) (*RecipeView, error) {
	recipe.Name = strings.TrimSpace(recipe.Name)
	if recipe.Name == "" {
		return nil, fmt.Errorf("%w: recipe name is required", domain.ErrInvalidInput)
	}
	if recipe.Servings == 0 {
		recipe.Servings = 1
	}
	if recipe.Servings < 1 {
		return nil, fmt.Errorf("%w: recipe servings must be at least 1", domain.ErrInvalidInput)
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []domain.RecipeIngredient{}
	}
	recipe.ID = ""
	recipe.UserID = userID

	if err := s.recompute(ctx, recipe); err != nil {
		return nil, err
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return recipeView(recipe)
}

// GetRecipe returns a recipe the user owns or that is public
func (s *NutritionService) GetRecipe(ctx context.Context, userID, id string) (*RecipeView, error) {
	recipe, err := s.readableRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return recipeView(recipe)
}

func (s *NutritionService) ListRecipes(ctx context.Context, userID string) ([]*RecipeView, error) {
	recipes, err := s.recipeRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]*RecipeView, 0, len(recipes))
	for _, r := range recipes {
		v, err := recipeView(r)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// SetIngredients replaces the ingredient list and recomputes the totals
func (s *NutritionService) SetIngredients(ctx context.Context, userID, recipeID string, ingredients []domain.RecipeIngredient) (*RecipeView, error) {
	return s.mutateIngredients(ctx, userID, recipeID, func(r *domain.Recipe) error {
		r.Ingredients = ingredients
		return nil
	})
}

// AddIngredient appends a food, or raises its quantity if already present
func (s *NutritionService) AddIngredient(ctx context.Context, userID, recipeID string, ing domain.RecipeIngredient) (*RecipeView, error) {
	return s.mutateIngredients(ctx, userID, recipeID, func(r *domain.Recipe) error {
		for i := range r.Ingredients {
			if r.Ingredients[i].FoodID == ing.FoodID {
				r.Ingredients[i].QuantityGrams += ing.QuantityGrams
				if ing.Notes != "" {
					r.Ingredients[i].Notes = ing.Notes
				}
				return nil
			}
		}
		r.Ingredients = append(r.Ingredients, ing)
		return nil
	})
}

func (s *NutritionService) RemoveIngredient(ctx context.Context, userID, recipeID, foodID string) (*RecipeView, error) {
	return s.mutateIngredients(ctx, userID, recipeID, func(r *domain.Recipe) error {
		for i := range r.Ingredients {
			if r.Ingredients[i].FoodID == foodID {
				r.Ingredients = append(r.Ingredients[:i], r.Ingredients[i+1:]...)
				return nil
			}
		}
		return domain.ErrFoodNotFound
	})
}

func (s *NutritionService) DeleteRecipe(ctx context.Context, userID, recipeID string) error {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.UserID != userID {
		return domain.ErrForbidden
	}
	return s.recipeRepo.Delete(ctx, recipeID)
}

func (s *NutritionService) mutateIngredients(ctx context.Context, userID, recipeID string, mutate func(r *domain.Recipe) error) (*RecipeView, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if err := mutate(recipe); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, recipe); err != nil {
		return nil, err
	}
	if err := s.recipeRepo.SaveIngredients(ctx, recipe); err != nil {
		return nil, err
	}
	return recipeView(recipe)
}

// recompute resolves the recipe's foods and refreshes its stored totals
func (s *NutritionService) recompute(ctx context.Context, recipe *domain.Recipe) error {
	ids := make([]string, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		ids = append(ids, ing.FoodID)
	}
	foods, err := s.foodRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	resolved := make([]engine.Ingredient, 0, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		food, ok := foods[ing.FoodID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrFoodNotFound, ing.FoodID)
		}
		recipe.Ingredients[i].FoodName = food.Name
		resolved = append(resolved, engine.Ingredient{Food: *food, QuantityGrams: ing.QuantityGrams})
	}
	return engine.RecomputeRecipe(recipe, resolved)
}

// RecalculateRecipes recomputes the stored totals of every recipe the user owns
func (s *NutritionService) RecalculateRecipes(ctx context.Context, userID string) (int, error) {
	recipes, err := s.recipeRepo.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, r := range recipes {
		if r.UserID != userID {
			continue
		}
		if err := s.recompute(ctx, r); err != nil {
			return count, fmt.Errorf("recipe %s: %w", r.ID, err)
		}
		if err := s.recipeRepo.SaveIngredients(ctx, r); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *NutritionService) readableRecipe(ctx context.Context, userID, id string) (*domain.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.UserID != userID && !recipe.IsPublic {
		return nil, domain.ErrForbidden
	}
	return recipe, nil
}

func recipeView(r *domain.Recipe) (*RecipeView, error) {
	per, err := engine.RecipePerServing(*r)
	if err != nil {
		return nil, err
	}
	return &RecipeView{Recipe: r, PerServing: per}, nil
}

// ========== Meals ==========

// MealLog is a request to log a meal; exactly one of FoodID and RecipeID is set
type MealLog struct {
	ClientID      string          `json:"client_id"`
	MealType      domain.MealType `json:"meal_type"`
	Date          time.Time       `json:"date"`
	FoodID        string          `json:"food_id"`
	RecipeID      string          `json:"recipe_id"`
	QuantityGrams float64         `json:"quantity_grams"`
	Notes         string          `json:"notes"`
}

// LogMeal snapshots the nutrition of the eaten quantity once and stores it.
// A repeated ClientID returns the entry logged the first time.
func (s *NutritionService) LogMeal(ctx context.Context, userID string, req MealLog) (*domain.MealEntry, error) {
	if req.ClientID != "" {
		if existing, err := s.mealRepo.GetByClientID(ctx, req.ClientID); err == nil {
			if existing.UserID != userID {
				return nil, domain.ErrForbidden
			}
			return existing, nil
		} else if !errors.Is(err, domain.ErrMealEntryNotFound) {
			return nil, err
		}
	}

	switch req.MealType {
	case domain.MealBreakfast, domain.MealLunch, domain.MealDinner, domain.MealSnacks:
	default:
		return nil, fmt.Errorf("%w: unknown meal type %q", domain.ErrInvalidInput, req.MealType)
	}

	source, err := s.mealSource(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	snapshot, err := engine.MealSnapshot(source, req.QuantityGrams, s.scaling)
	if err != nil {
		return nil, err
	}

	if req.Date.IsZero() {
		req.Date = s.now()
	}
	if req.ClientID == "" {
		req.ClientID = generateULID()
	}
	entry := &domain.MealEntry{
		ClientID:      req.ClientID,
		UserID:        userID,
		MealType:      req.MealType,
		Date:          engine.DateOf(req.Date),
		SourceKind:    source.Kind(),
		SourceID:      source.ID(),
		SourceName:    source.Name(),
		QuantityGrams: req.QuantityGrams,
		Snapshot:      snapshot,
		Notes:         req.Notes,
	}
	if err := s.mealRepo.Create(ctx, entry); err != nil {
		// Lost a race with the same client ID
		if existing, getErr := s.mealRepo.GetByClientID(ctx, req.ClientID); getErr == nil && existing.UserID == userID {
			return existing, nil
		}
		return nil, err
	}

	s.metrics.RecordSnapshot(ctx, "meal")
	s.invalidateSummary(ctx, userID, entry.Date)
	return entry, nil
}

func (s *NutritionService) mealSource(ctx context.Context, userID string, req MealLog) (engine.MealSource, error) {
	switch {
	case req.FoodID != "" && req.RecipeID == "":
		food, err := s.foodRepo.GetByID(ctx, req.FoodID)
		if err != nil {
			return engine.MealSource{}, err
		}
		return engine.FoodSource(*food), nil
	case req.RecipeID != "" && req.FoodID == "":
		recipe, err := s.readableRecipe(ctx, userID, req.RecipeID)
		if err != nil {
			return engine.MealSource{}, err
		}
		return engine.RecipeSource(*recipe), nil
	}
	return engine.MealSource{}, fmt.Errorf("%w: meal entry needs exactly one of food_id or recipe_id", domain.ErrInvalidInput)
}

func (s *NutritionService) ListMeals(ctx context.Context, userID string, date time.Time) ([]*domain.MealEntry, error) {
	meals, err := s.mealRepo.ListByUserAndDate(ctx, userID, engine.DateOf(date))
	if err != nil {
		return nil, err
	}
	if meals == nil {
		meals = []*domain.MealEntry{}
	}
	return meals, nil
}

func (s *NutritionService) DeleteMeal(ctx context.Context, userID, id string) error {
	entry, err := s.mealRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return domain.ErrForbidden
	}
	if err := s.mealRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSummary(ctx, userID, entry.Date)
	return nil
}

// ========== Water ==========

// LogWater adds to the day's intake and returns the updated progress
func (s *NutritionService) LogWater(ctx context.Context, userID string, date time.Time, amountMl int) (*domain.WaterProgress, error) {
	if amountMl <= 0 {
		return nil, fmt.Errorf("%w: water amount must be positive", domain.ErrInvalidInput)
	}
	if date.IsZero() {
		date = s.now()
	}
	goal, err := s.GetNutritionGoal(ctx, userID)
	if err != nil {
		return nil, err
	}

	intake, err := s.waterRepo.AddAmount(ctx, userID, engine.DateOf(date), amountMl, goal.DailyWaterMl)
	if err != nil {
		return nil, fmt.Errorf("failed to log water: %w", err)
	}
	progress := engine.WaterProgress(intake.AmountMl, intake.DailyGoalMl)
	return &progress, nil
}

func (s *NutritionService) GetWater(ctx context.Context, userID string, date time.Time) (*domain.WaterProgress, error) {
	intake, err := s.waterRepo.GetByUserAndDate(ctx, userID, engine.DateOf(date))
	if err != nil {
		return nil, err
	}
	if intake == nil {
		goal, err := s.GetNutritionGoal(ctx, userID)
		if err != nil {
			return nil, err
		}
		progress := engine.WaterProgress(0, goal.DailyWaterMl)
		return &progress, nil
	}
	progress := engine.WaterProgress(intake.AmountMl, intake.DailyGoalMl)
	return &progress, nil
}

// ========== Nutrition goal ==========

// NutritionGoalView is the goal with its macro split converted to grams
type NutritionGoalView struct {
	*domain.NutritionGoal
	Macros domain.MacroGoals `json:"macros"`
}

// GetNutritionGoal returns the stored goal, or defaults derived from the profile
func (s *NutritionService) GetNutritionGoal(ctx context.Context, userID string) (*NutritionGoalView, error) {
	goal, err := s.goalRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		goal, err = s.defaultNutritionGoal(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	return nutritionGoalView(goal), nil
}

func (s *NutritionService) SetNutritionGoal(ctx context.Context, userID string, goal *domain.NutritionGoal) (*NutritionGoalView, error) {
	if goal.DailyCalories <= 0 {
		defaults, err := s.defaultNutritionGoal(ctx, userID)
		if err != nil {
			return nil, err
		}
		goal.DailyCalories = defaults.DailyCalories
	}
	if goal.DailyWaterMl <= 0 {
		goal.DailyWaterMl = engine.DefaultDailyWaterMl
	}
	if goal.ProteinPercentage == 0 && goal.CarbsPercentage == 0 && goal.FatsPercentage == 0 {
		goal.ProteinPercentage = engine.DefaultProteinPercentage
		goal.CarbsPercentage = engine.DefaultCarbsPercentage
		goal.FatsPercentage = engine.DefaultFatsPercentage
	}
	if goal.ProteinPercentage < 0 || goal.CarbsPercentage < 0 || goal.FatsPercentage < 0 ||
		goal.ProteinPercentage+goal.CarbsPercentage+goal.FatsPercentage != 100 {
		return nil, fmt.Errorf("%w: macro percentages must add up to 100", domain.ErrInvalidInput)
	}

	goal.UserID = userID
	goal.UpdatedAt = s.now()
	if err := s.goalRepo.Upsert(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to save nutrition goal: %w", err)
	}
	s.invalidateSummary(ctx, userID, s.now())
	return nutritionGoalView(goal), nil
}

func (s *NutritionService) defaultNutritionGoal(ctx context.Context, userID string) (*domain.NutritionGoal, error) {
	calories := engine.DefaultDailyCalorieGoal
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		calories = engine.DailyCalorieGoal(*profile)
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, err
	}
	return &domain.NutritionGoal{
		UserID:            userID,
		DailyCalories:     calories,
		DailyWaterMl:      engine.DefaultDailyWaterMl,
		ProteinPercentage: engine.DefaultProteinPercentage,
		CarbsPercentage:   engine.DefaultCarbsPercentage,
		FatsPercentage:    engine.DefaultFatsPercentage,
	}, nil
}

func nutritionGoalView(goal *domain.NutritionGoal) *NutritionGoalView {
	return &NutritionGoalView{
		NutritionGoal: goal,
		Macros:        engine.MacroGoals(goal.DailyCalories, goal.ProteinPercentage, goal.CarbsPercentage, goal.FatsPercentage),
	}
}

// ========== Daily summary ==========

// DailySummary is the energy balance of one day: meal snapshots against the
// calorie goal, crediting the burn of completed workouts.
func (s *NutritionService) DailySummary(ctx context.Context, userID string, date time.Time) (*domain.EnergyBalance, error) {
	if date.IsZero() {
		date = s.now()
	}
	day := engine.DateOf(date)

	if s.cache != nil {
		if cached, err := s.cache.GetDailySummary(ctx, userID, day); err == nil && cached != nil {
			return cached, nil
		}
	}

	goal, err := s.GetNutritionGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	meals, err := s.mealRepo.ListByUserAndDate(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	workouts, err := s.workoutRepo.ListByUser(ctx, userID, day, day)
	if err != nil {
		return nil, err
	}
	completed := make([]*domain.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.Status == domain.WorkoutCompleted {
			completed = append(completed, w)
		}
	}

	balance := engine.DailyEnergyBalance(day, goal.DailyCalories, meals, completed)

	if s.cache != nil {
		if err := s.cache.SetDailySummary(ctx, userID, &balance, s.cacheTTL); err != nil {
			fmt.Printf("Warning: failed to cache daily summary: %v\n", err)
		}
	}
	return &balance, nil
}

func (s *NutritionService) invalidateSummary(ctx context.Context, userID string, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDailySummary(ctx, userID, date); err != nil {
		fmt.Printf("Warning: failed to invalidate daily summary cache: %v\n", err)
	}
}
