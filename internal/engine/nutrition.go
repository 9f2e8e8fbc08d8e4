package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
)

// ReferenceGrams is the unit food nutrition is expressed against
const ReferenceGrams = 100.0

// Default macro split and water target for a fresh nutrition goal
const (
	DefaultProteinPercentage = 25
	DefaultCarbsPercentage   = 50
	DefaultFatsPercentage    = 25
	DefaultDailyWaterMl      = 2000
)

const (
	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0
)

// PerServing scales a food's per-100g values to a serving. A nil serving uses
// the food's default serving size (100 g when unset). Each field is rounded to
// 1 decimal place on its own, so the sum of rounded fields can drift from a
// separately rounded total.
func PerServing(food domain.Food, servingGrams *float64) domain.NutritionFacts {
	grams := food.DefaultServingGrams
	if servingGrams != nil {
		grams = *servingGrams
	} else if grams <= 0 {
		grams = ReferenceGrams
	}
	if grams == ReferenceGrams {
		return food.Per100g()
	}

	m := grams / ReferenceGrams
	raw := food.Per100g()
	return domain.NutritionFacts{
		Calories: roundTo(raw.Calories*m, 1),
		Protein:  roundTo(raw.Protein*m, 1),
		Carbs:    roundTo(raw.Carbs*m, 1),
		Fats:     roundTo(raw.Fats*m, 1),
		Fiber:    roundTo(raw.Fiber*m, 1),
		Sugar:    roundTo(raw.Sugar*m, 1),
		Sodium:   roundTo(raw.Sodium*m, 1),
	}
}

// Ingredient pairs a food's current nutrition with the grams used in a recipe
type Ingredient struct {
	Food          domain.Food
	QuantityGrams float64
}

// RecipeTotals sums each ingredient's macros scaled by grams/100 at full precision
func RecipeTotals(ingredients []Ingredient) domain.MacroTotals {
	var t domain.MacroTotals
	for _, ing := range ingredients {
		m := ing.QuantityGrams / ReferenceGrams
		t.Calories += ing.Food.CaloriesPer100g * m
		t.Protein += ing.Food.ProteinPer100g * m
		t.Carbs += ing.Food.CarbsPer100g * m
		t.Fats += ing.Food.FatsPer100g * m
	}
	return t
}

// TotalWeightGrams sums ingredient quantities
func TotalWeightGrams(ingredients []Ingredient) float64 {
	var total float64
	for _, ing := range ingredients {
		total += ing.QuantityGrams
	}
	return total
}

// RecomputeRecipe refreshes the stored rollup after the ingredient set changed.
// Callers persist the recipe afterwards.
func RecomputeRecipe(recipe *domain.Recipe, ingredients []Ingredient) error {
	for _, ing := range ingredients {
		if ing.QuantityGrams <= 0 {
			return fmt.Errorf("%w: ingredient %q quantity must be positive", domain.ErrInvalidInput, ing.Food.Name)
		}
	}
	recipe.Totals = RecipeTotals(ingredients)
	recipe.TotalWeightGrams = TotalWeightGrams(ingredients)
	return nil
}

// RecipePerServing divides the stored totals by the serving count, 1 decimal place per field
func RecipePerServing(recipe domain.Recipe) (domain.MacroTotals, error) {
	if recipe.Servings < 1 {
		return domain.MacroTotals{}, fmt.Errorf("%w: recipe servings must be at least 1", domain.ErrInvalidInput)
	}
	s := float64(recipe.Servings)
	return domain.MacroTotals{
		Calories: roundTo(recipe.Totals.Calories/s, 1),
		Protein:  roundTo(recipe.Totals.Protein/s, 1),
		Carbs:    roundTo(recipe.Totals.Carbs/s, 1),
		Fats:     roundTo(recipe.Totals.Fats/s, 1),
	}, nil
}

// MealSource is either a food or a recipe. Build one with FoodSource or
// RecipeSource; the zero value is rejected by MealSnapshot.
type MealSource struct {
	kind   domain.MealSourceKind
	food   domain.Food
	recipe domain.Recipe
}

func FoodSource(food domain.Food) MealSource {
	return MealSource{kind: domain.MealSourceFood, food: food}
}

func RecipeSource(recipe domain.Recipe) MealSource {
	return MealSource{kind: domain.MealSourceRecipe, recipe: recipe}
}

func (s MealSource) Kind() domain.MealSourceKind { return s.kind }

// ID returns the referenced food or recipe ID
func (s MealSource) ID() string {
	switch s.kind {
	case domain.MealSourceFood:
		return s.food.ID
	case domain.MealSourceRecipe:
		return s.recipe.ID
	}
	return ""
}

func (s MealSource) Name() string {
	switch s.kind {
	case domain.MealSourceFood:
		return s.food.Name
	case domain.MealSourceRecipe:
		return s.recipe.Name
	}
	return ""
}

// RecipeScaling selects how a logged recipe quantity is scaled
type RecipeScaling string

const (
	// RecipeScalingByWeight scales recipe totals by grams eaten over the recipe's total ingredient weight
	RecipeScalingByWeight RecipeScaling = "weight"
	// RecipeScalingLegacy scales the per-serving view by grams over total calories, matching historic records
	RecipeScalingLegacy RecipeScaling = "legacy"
)

// ParseRecipeScaling accepts "weight", "legacy" or "" (weight)
func ParseRecipeScaling(s string) (RecipeScaling, error) {
	switch RecipeScaling(s) {
	case "", RecipeScalingByWeight:
		return RecipeScalingByWeight, nil
	case RecipeScalingLegacy:
		return RecipeScalingLegacy, nil
	}
	return "", fmt.Errorf("%w: unknown recipe scaling %q", domain.ErrInvalidInput, s)
}

// MealSnapshot computes the nutrition frozen onto a meal entry at log time.
// It is called once when the entry is created and never again.
func MealSnapshot(source MealSource, quantityGrams float64, policy RecipeScaling) (domain.MacroTotals, error) {
	if quantityGrams <= 0 {
		return domain.MacroTotals{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	switch source.kind {
	case domain.MealSourceFood:
		f := PerServing(source.food, &quantityGrams)
		return domain.MacroTotals{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fats: f.Fats}, nil

	case domain.MealSourceRecipe:
		r := source.recipe
		if policy == RecipeScalingLegacy {
			per, err := RecipePerServing(r)
			if err != nil {
				return domain.MacroTotals{}, err
			}
			divisor := r.Totals.Calories
			if divisor == 0 {
				divisor = 1
			}
			m := quantityGrams / divisor
			return domain.MacroTotals{
				Calories: per.Calories * m,
				Protein:  per.Protein * m,
				Carbs:    per.Carbs * m,
				Fats:     per.Fats * m,
			}, nil
		}
		if r.TotalWeightGrams <= 0 {
			return domain.MacroTotals{}, fmt.Errorf("%w: recipe %q has no ingredient weight", domain.ErrInvalidInput, r.Name)
		}
		m := quantityGrams / r.TotalWeightGrams
		return domain.MacroTotals{
			Calories: roundTo(r.Totals.Calories*m, 1),
			Protein:  roundTo(r.Totals.Protein*m, 1),
			Carbs:    roundTo(r.Totals.Carbs*m, 1),
			Fats:     roundTo(r.Totals.Fats*m, 1),
		}, nil
	}

	return domain.MacroTotals{}, fmt.Errorf("%w: meal entry needs exactly one of food or recipe", domain.ErrInvalidInput)
}

// MacroGoals converts a percentage split of the daily calories into grams
func MacroGoals(dailyCalories, proteinPct, carbsPct, fatsPct int) domain.MacroGoals {
	kcal := float64(dailyCalories)
	return domain.MacroGoals{
		ProteinG: int(math.Round(kcal * float64(proteinPct) / 100 / kcalPerGramProtein)),
		CarbsG:   int(math.Round(kcal * float64(carbsPct) / 100 / kcalPerGramCarbs)),
		FatsG:    int(math.Round(kcal * float64(fatsPct) / 100 / kcalPerGramFat)),
	}
}

// DailyEnergyBalance totals a day's meal snapshots against the calorie goal,
// crediting the frozen burn of the given workouts.
func DailyEnergyBalance(date time.Time, dailyCalorieGoal int, meals []*domain.MealEntry, workouts []*domain.Workout) domain.EnergyBalance {
	var consumed domain.MacroTotals
	for _, m := range meals {
		consumed.Calories += m.Snapshot.Calories
		consumed.Protein += m.Snapshot.Protein
		consumed.Carbs += m.Snapshot.Carbs
		consumed.Fats += m.Snapshot.Fats
	}
	burned := 0
	for _, w := range workouts {
		burned += w.TotalCaloriesBurned
	}

	consumed = domain.MacroTotals{
		Calories: roundTo(consumed.Calories, 1),
		Protein:  roundTo(consumed.Protein, 1),
		Carbs:    roundTo(consumed.Carbs, 1),
		Fats:     roundTo(consumed.Fats, 1),
	}
	net := roundTo(consumed.Calories-float64(burned), 1)
	return domain.EnergyBalance{
		Date:             DateOf(date),
		DailyCalorieGoal: dailyCalorieGoal,
		Consumed:         consumed,
		Burned:           burned,
		Net:              net,
		Remaining:        roundTo(float64(dailyCalorieGoal)-net, 1),
	}
}
