package service

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nutritionFixture struct {
	svc      *NutritionService
	workouts *fakeWorkoutRepo
	meals    *fakeMealRepo
	recipes  *fakeRecipeRepo
	chicken  *domain.Food
	rice     *domain.Food
}

func newNutritionFixture(t *testing.T, scaling engine.RecipeScaling) *nutritionFixture {
	repos := NutritionRepositories{
		Foods:          newFakeFoodRepo(),
		Recipes:        newFakeRecipeRepo(),
		Meals:          newFakeMealRepo(),
		Water:          newFakeWaterRepo(),
		NutritionGoals: newFakeNutritionGoalRepo(),
		Workouts:       newFakeWorkoutRepo(),
		Profiles:       newFakeProfileRepo(),
	}
	svc := NewNutritionService(repos, newTestCache(t), time.Minute, scaling, nil)
	svc.now = fixedClock(today)

	ctx := context.Background()
	chicken, err := svc.CreateFood(ctx, &domain.Food{Name: "Chicken breast", CaloriesPer100g: 165, ProteinPer100g: 31, FatsPer100g: 3.6})
	require.NoError(t, err)
	rice, err := svc.CreateFood(ctx, &domain.Food{Name: "White rice", CaloriesPer100g: 130, ProteinPer100g: 2.7, CarbsPer100g: 28, FatsPer100g: 0.3})
	require.NoError(t, err)

	return &nutritionFixture{
		svc:      svc,
		workouts: repos.Workouts.(*fakeWorkoutRepo),
		meals:    repos.Meals.(*fakeMealRepo),
		recipes:  repos.Recipes.(*fakeRecipeRepo),
		chicken:  chicken,
		rice:     rice,
	}
}

func (f *nutritionFixture) createBowl(t *testing.T) *RecipeView {
	view, err := f.svc.CreateRecipe(context.Background(), "user-1", &domain.Recipe{
		Name:     "Chicken rice bowl",
		Servings: 2,
		Ingredients: []domain.RecipeIngredient{
			{FoodID: f.chicken.ID, QuantityGrams: 200},
			{FoodID: f.rice.ID, QuantityGrams: 300},
		},
	})
	require.NoError(t, err)
	return view
}

func TestCreateFoodDefaultsServing(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingByWeight)
	assert.Equal(t, 100.0, f.chicken.DefaultServingGrams)

	_, err := f.svc.CreateFood(context.Background(), &domain.Food{Name: "Bad", CaloriesPer100g: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	facts, err := f.svc.FoodServing(context.Background(), f.chicken.ID, floatPtr(150))
	require.NoError(t, err)
	assert.Equal(t, 247.5, facts.Calories)
}

func TestRecipeTotalsFollowIngredients(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingByWeight)
	ctx := context.Background()

	bowl := f.createBowl(t)
	assert.Equal(t, "Chicken breast", bowl.Ingredients[0].FoodName)
	assert.InDelta(t, 720, bowl.Totals.Calories, 1e-9)
	assert.InDelta(t, 84, bowl.Totals.Carbs, 1e-9)
	assert.Equal(t, 500.0, bowl.TotalWeightGrams)
	assert.Equal(t, 360.0, bowl.PerServing.Calories)

	bowl, err := f.svc.AddIngredient(ctx, "user-1", bowl.ID, domain.RecipeIngredient{FoodID: f.rice.ID, QuantityGrams: 100})
	require.NoError(t, err)
	assert.Len(t, bowl.Ingredients, 2)
	assert.InDelta(t, 850, bowl.Totals.Calories, 1e-9)

	bowl, err = f.svc.RemoveIngredient(ctx, "user-1", bowl.ID, f.chicken.ID)
	require.NoError(t, err)
	assert.InDelta(t, 520, bowl.Totals.Calories, 1e-9)
	assert.Equal(t, 400.0, bowl.TotalWeightGrams)

	_, err = f.svc.AddIngredient(ctx, "user-2", bowl.ID, domain.RecipeIngredient{FoodID: f.rice.ID, QuantityGrams: 100})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.AddIngredient(ctx, "user-1", bowl.ID, domain.RecipeIngredient{FoodID: "missing", QuantityGrams: 100})
	assert.ErrorIs(t, err, domain.ErrFoodNotFound)
}

func TestLogMealSnapshots(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingByWeight)
	ctx := context.Background()
	bowl := f.createBowl(t)

	foodMeal, err := f.svc.LogMeal(ctx, "user-1", MealLog{MealType: domain.MealLunch, FoodID: f.chicken.ID, QuantityGrams: 150})
	require.NoError(t, err)
	assert.Equal(t, domain.MealSourceFood, foodMeal.SourceKind)
	assert.Equal(t, 247.5, foodMeal.Snapshot.Calories)
	assert.NotEmpty(t, foodMeal.ClientID)

	recipeMeal, err := f.svc.LogMeal(ctx, "user-1", MealLog{MealType: domain.MealDinner, RecipeID: bowl.ID, QuantityGrams: 250})
	require.NoError(t, err)
	assert.Equal(t, domain.MealSourceRecipe, recipeMeal.SourceKind)
	assert.Equal(t, 360.0, recipeMeal.Snapshot.Calories)
	assert.Equal(t, 42.0, recipeMeal.Snapshot.Carbs)

	// Changing the food recomputes the recipe but never a logged meal
	chicken := *f.chicken
	chicken.CaloriesPer100g = 200
	_, err = f.svc.UpdateFood(ctx, f.chicken.ID, &chicken)
	require.NoError(t, err)

	refreshed, err := f.svc.GetRecipe(ctx, "user-1", bowl.ID)
	require.NoError(t, err)
	assert.InDelta(t, 790, refreshed.Totals.Calories, 1e-9)

	stored, err := f.meals.GetByID(ctx, foodMeal.ID)
	require.NoError(t, err)
	assert.Equal(t, 247.5, stored.Snapshot.Calories)
}

func TestLogMealLegacyScaling(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingLegacy)
	bowl := f.createBowl(t)

	meal, err := f.svc.LogMeal(context.Background(), "user-1", MealLog{MealType: domain.MealDinner, RecipeID: bowl.ID, QuantityGrams: 360})
	require.NoError(t, err)
	// per serving 360 kcal x 360 g / 720 kcal
	assert.InDelta(t, 180, meal.Snapshot.Calories, 1e-9)
}

func TestLogMealValidation(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingByWeight)
	ctx := context.Background()
	bowl := f.createBowl(t)

	_, err := f.svc.LogMeal(ctx, "user-1", MealLog{MealType: domain.MealLunch, FoodID: f.chicken.ID, RecipeID: bowl.ID, QuantityGrams: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.LogMeal(ctx, "user-1", MealLog{MealType: domain.MealLunch, QuantityGrams: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.LogMeal(ctx, "user-1", MealLog{MealType: "brunch", FoodID: f.chicken.ID, QuantityGrams: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.LogMeal(ctx, "user-1", MealLog{MealType: domain.MealLunch, FoodID: f.chicken.ID, QuantityGrams: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.LogMeal(ctx, "user-2", MealLog{MealType: domain.MealLunch, RecipeID: bowl.ID, QuantityGrams: 100})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogMealIsIdempotentByClientID(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingByWeight)
	ctx := context.Background()

	req := MealLog{ClientID: "01HZXCLIENT", MealType: domain.MealBreakfast, FoodID: f.rice.ID, QuantityGrams: 100}
	first, err := f.svc.LogMeal(ctx, "user-1", req)
	require.NoError(t, err)
	second, err := f.svc.LogMeal(ctx, "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	meals, err := f.svc.ListMeals(ctx, "user-1", today)
	require.NoError(t, err)
	assert.Len(t, meals, 1)

	_, err = f.svc.LogMeal(ctx, "user-2", req)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDailySummary(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingByWeight)
	ctx := context.Background()
	day := engine.DateOf(today)

	_, err := f.svc.LogMeal(ctx, "user-1", MealLog{MealType: domain.MealLunch, FoodID: f.chicken.ID, QuantityGrams: 150})
	require.NoError(t, err)
	require.NoError(t, f.workouts.Create(ctx, &domain.Workout{
		UserID: "user-1", Date: day, Status: domain.WorkoutCompleted,
		WorkoutAggregate: domain.WorkoutAggregate{TotalCaloriesBurned: 300},
	}))
	require.NoError(t, f.workouts.Create(ctx, &domain.Workout{
		UserID: "user-1", Date: day, Status: domain.WorkoutPlanned,
		WorkoutAggregate: domain.WorkoutAggregate{TotalCaloriesBurned: 1000},
	}))

	summary, err := f.svc.DailySummary(ctx, "user-1", today)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultDailyCalorieGoal, summary.DailyCalorieGoal)
	assert.Equal(t, 247.5, summary.Consumed.Calories)
	assert.Equal(t, 300, summary.Burned)
	assert.Equal(t, -52.5, summary.Net)
	assert.Equal(t, 2052.5, summary.Remaining)

	// Logging a meal drops the cached summary
	_, err = f.svc.LogMeal(ctx, "user-1", MealLog{MealType: domain.MealDinner, FoodID: f.rice.ID, QuantityGrams: 100})
	require.NoError(t, err)
	summary, err = f.svc.DailySummary(ctx, "user-1", today)
	require.NoError(t, err)
	assert.Equal(t, 377.5, summary.Consumed.Calories)
}

func TestWaterAndNutritionGoal(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingByWeight)
	ctx := context.Background()

	_, err := f.svc.LogWater(ctx, "user-1", today, 500)
	require.NoError(t, err)
	progress, err := f.svc.LogWater(ctx, "user-1", today, 500)
	require.NoError(t, err)
	assert.Equal(t, 1000, progress.AmountMl)
	assert.Equal(t, 50.0, progress.ProgressPercentage)
	assert.Equal(t, 4.0, progress.GlassesConsumed)

	_, err = f.svc.LogWater(ctx, "user-1", today, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	defaults, err := f.svc.GetNutritionGoal(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2000, defaults.DailyCalories)
	assert.Equal(t, domain.MacroGoals{ProteinG: 125, CarbsG: 250, FatsG: 56}, defaults.Macros)

	goal, err := f.svc.SetNutritionGoal(ctx, "user-1", &domain.NutritionGoal{
		DailyCalories: 2000, ProteinPercentage: 30, CarbsPercentage: 40, FatsPercentage: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MacroGoals{ProteinG: 150, CarbsG: 200, FatsG: 67}, goal.Macros)
	assert.Equal(t, engine.DefaultDailyWaterMl, goal.DailyWaterMl)

	_, err = f.svc.SetNutritionGoal(ctx, "user-1", &domain.NutritionGoal{
		DailyCalories: 2000, ProteinPercentage: 30, CarbsPercentage: 40, FatsPercentage: 20,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecalculateRecipes(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingByWeight)
	ctx := context.Background()
	bowl := f.createBowl(t)

	stale := *bowl.Recipe
	stale.Totals = domain.MacroTotals{}
	stale.TotalWeightGrams = 0
	require.NoError(t, f.recipes.SaveIngredients(ctx, &stale))

	n, err := f.svc.RecalculateRecipes(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.GetRecipe(ctx, "user-1", bowl.ID)
	require.NoError(t, err)
	assert.InDelta(t, 720, got.Totals.Calories, 1e-9)
	assert.Equal(t, 500.0, got.TotalWeightGrams)

	n, err = f.svc.RecalculateRecipes(ctx, "user-2")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteFoodInUse(t *testing.T) {
	f := newNutritionFixture(t, engine.RecipeScalingByWeight)
	f.createBowl(t)

	err := f.svc.DeleteFood(context.Background(), f.rice.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
