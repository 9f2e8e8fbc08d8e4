package engine

import (
	"testing"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	chicken = domain.Food{
		ID: "food-chicken", Name: "Chicken breast",
		CaloriesPer100g: 165, ProteinPer100g: 31, CarbsPer100g: 0, FatsPer100g: 3.6,
		SodiumPer100g: 74, DefaultServingGrams: 150,
	}
	rice = domain.Food{
		ID: "food-rice", Name: "White rice",
		CaloriesPer100g: 130, ProteinPer100g: 2.7, CarbsPer100g: 28, FatsPer100g: 0.3,
		DefaultServingGrams: 100,
	}
)

func chickenAndRice() (domain.Recipe, []Ingredient) {
	ingredients := []Ingredient{
		{Food: chicken, QuantityGrams: 200},
		{Food: rice, QuantityGrams: 300},
	}
	r := domain.Recipe{ID: "recipe-1", Name: "Chicken rice", Servings: 4}
	_ = RecomputeRecipe(&r, ingredients)
	return r, ingredients
}

func TestPerServing(t *testing.T) {
	facts := PerServing(chicken, nil)
	assert.Equal(t, 247.5, facts.Calories)
	assert.Equal(t, 46.5, facts.Protein)
	assert.Equal(t, 5.4, facts.Fats)
	assert.Equal(t, 111.0, facts.Sodium)

	half := PerServing(chicken, floatPtr(50))
	assert.Equal(t, 82.5, half.Calories)
	assert.Equal(t, 1.8, half.Fats)

	noDefault := domain.Food{CaloriesPer100g: 52}
	assert.Equal(t, 52.0, PerServing(noDefault, nil).Calories)
}

func TestPerServingAtReferenceIsRaw(t *testing.T) {
	precise := domain.Food{
		CaloriesPer100g: 123.45, ProteinPer100g: 7.25, CarbsPer100g: 11.05, FatsPer100g: 3.35,
		FiberPer100g: 1.15, SugarPer100g: 0.05, SodiumPer100g: 12.75,
	}
	assert.Equal(t, precise.Per100g(), PerServing(precise, floatPtr(100)))
}

func TestRecipeTotals(t *testing.T) {
	_, ingredients := chickenAndRice()

	totals := RecipeTotals(ingredients)
	assert.InDelta(t, 720, totals.Calories, 1e-9)
	assert.InDelta(t, 70.1, totals.Protein, 1e-9)
	assert.InDelta(t, 84, totals.Carbs, 1e-9)
	assert.InDelta(t, 8.1, totals.Fats, 1e-9)

	assert.Equal(t, totals, RecipeTotals(ingredients), "recompute must be deterministic")
	assert.Equal(t, 500.0, TotalWeightGrams(ingredients))
}

func TestRecomputeRecipeRejectsNonPositiveQuantity(t *testing.T) {
	r := domain.Recipe{Servings: 1}
	err := RecomputeRecipe(&r, []Ingredient{{Food: rice, QuantityGrams: 0}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecipePerServing(t *testing.T) {
	r, _ := chickenAndRice()

	per, err := RecipePerServing(r)
	require.NoError(t, err)
	assert.Equal(t, 180.0, per.Calories)
	assert.Equal(t, 17.5, per.Protein)
	assert.Equal(t, 21.0, per.Carbs)

	tolerance := 0.05*float64(r.Servings) + 1e-9
	s := float64(r.Servings)
	assert.InDelta(t, r.Totals.Calories, per.Calories*s, tolerance)
	assert.InDelta(t, r.Totals.Protein, per.Protein*s, tolerance)
	assert.InDelta(t, r.Totals.Carbs, per.Carbs*s, tolerance)
	assert.InDelta(t, r.Totals.Fats, per.Fats*s, tolerance)

	r.Servings = 0
	_, err = RecipePerServing(r)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMealSnapshotFood(t *testing.T) {
	snap, err := MealSnapshot(FoodSource(chicken), 200, RecipeScalingByWeight)
	require.NoError(t, err)
	assert.Equal(t, domain.MacroTotals{Calories: 330, Protein: 62, Carbs: 0, Fats: 7.2}, snap)
}

func TestMealSnapshotRecipe(t *testing.T) {
	r, _ := chickenAndRice()

	byWeight, err := MealSnapshot(RecipeSource(r), 250, RecipeScalingByWeight)
	require.NoError(t, err)
	assert.Equal(t, 360.0, byWeight.Calories)
	assert.InDelta(t, 35.05, byWeight.Protein, 0.051)
	assert.Equal(t, 42.0, byWeight.Carbs)

	legacy, err := MealSnapshot(RecipeSource(r), 360, RecipeScalingLegacy)
	require.NoError(t, err)
	assert.InDelta(t, 90, legacy.Calories, 1e-9)
	assert.InDelta(t, 8.75, legacy.Protein, 1e-9)
}

func TestMealSnapshotFrozen(t *testing.T) {
	food := chicken
	snap, err := MealSnapshot(FoodSource(food), 100, RecipeScalingByWeight)
	require.NoError(t, err)

	food.CaloriesPer100g = 999
	assert.Equal(t, 165.0, snap.Calories)
}

func TestMealSnapshotInvalid(t *testing.T) {
	r, _ := chickenAndRice()

	_, err := MealSnapshot(MealSource{}, 100, RecipeScalingByWeight)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no source")

	_, err = MealSnapshot(FoodSource(chicken), 0, RecipeScalingByWeight)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "zero quantity")

	empty := r
	empty.TotalWeightGrams = 0
	_, err = MealSnapshot(RecipeSource(empty), 100, RecipeScalingByWeight)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "recipe without weight")
}

func TestMealSourceAccessors(t *testing.T) {
	src := RecipeSource(domain.Recipe{ID: "r1", Name: "Oats"})
	assert.Equal(t, domain.MealSourceRecipe, src.Kind())
	assert.Equal(t, "r1", src.ID())
	assert.Equal(t, "Oats", src.Name())
	assert.Equal(t, "", MealSource{}.ID())
}

func TestParseRecipeScaling(t *testing.T) {
	s, err := ParseRecipeScaling("")
	require.NoError(t, err)
	assert.Equal(t, RecipeScalingByWeight, s)

	s, err = ParseRecipeScaling("legacy")
	require.NoError(t, err)
	assert.Equal(t, RecipeScalingLegacy, s)

	_, err = ParseRecipeScaling("servings")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMacroGoals(t *testing.T) {
	got := MacroGoals(2000, DefaultProteinPercentage, DefaultCarbsPercentage, DefaultFatsPercentage)
	assert.Equal(t, domain.MacroGoals{ProteinG: 125, CarbsG: 250, FatsG: 56}, got)
}

func TestDailyEnergyBalance(t *testing.T) {
	day := time.Date(2024, 5, 15, 20, 0, 0, 0, time.UTC)
	meals := []*domain.MealEntry{
		{Snapshot: domain.MacroTotals{Calories: 500, Protein: 30}},
		{Snapshot: domain.MacroTotals{Calories: 700.5, Protein: 20}},
	}
	workouts := []*domain.Workout{
		{WorkoutAggregate: domain.WorkoutAggregate{TotalCaloriesBurned: 300}},
	}

	bal := DailyEnergyBalance(day, 2000, meals, workouts)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), bal.Date)
	assert.Equal(t, 1200.5, bal.Consumed.Calories)
	assert.Equal(t, 50.0, bal.Consumed.Protein)
	assert.Equal(t, 300, bal.Burned)
	assert.Equal(t, 900.5, bal.Net)
	assert.Equal(t, 1099.5, bal.Remaining)
}
