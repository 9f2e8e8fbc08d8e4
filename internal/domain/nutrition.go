package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrFoodNotFound      = errors.New("food not found")
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrMealEntryNotFound = errors.New("meal entry not found")
)

// NutritionFacts holds the seven tracked nutrients. Sodium is in mg, the rest in g (calories in kcal).
type NutritionFacts struct {
	Calories float64 `json:"calories" bson:"calories"`
	Protein  float64 `json:"protein" bson:"protein"`
	Carbs    float64 `json:"carbs" bson:"carbs"`
	Fats     float64 `json:"fats" bson:"fats"`
	Fiber    float64 `json:"fiber" bson:"fiber"`
	Sugar    float64 `json:"sugar" bson:"sugar"`
	Sodium   float64 `json:"sodium" bson:"sodium"`
}

// MacroTotals is the four-field nutrition view used by recipes and meal snapshots
type MacroTotals struct {
	Calories float64 `json:"calories" bson:"calories"`
	Protein  float64 `json:"protein" bson:"protein"`
	Carbs    float64 `json:"carbs" bson:"carbs"`
	Fats     float64 `json:"fats" bson:"fats"`
}

// Food is reference nutrition data per 100 g
type Food struct {
	ID                  string    `json:"id" bson:"_id,omitempty"`
	Name                string    `json:"name" bson:"name"`
	Brand               string    `json:"brand,omitempty" bson:"brand,omitempty"`
	Category            string    `json:"category,omitempty" bson:"category,omitempty"`
	CaloriesPer100g     float64   `json:"calories_per_100g" bson:"calories_per_100g"`
	ProteinPer100g      float64   `json:"protein_per_100g" bson:"protein_per_100g"`
	CarbsPer100g        float64   `json:"carbs_per_100g" bson:"carbs_per_100g"`
	FatsPer100g         float64   `json:"fats_per_100g" bson:"fats_per_100g"`
	FiberPer100g        float64   `json:"fiber_per_100g" bson:"fiber_per_100g"`
	SugarPer100g        float64   `json:"sugar_per_100g" bson:"sugar_per_100g"`
	SodiumPer100g       float64   `json:"sodium_per_100g" bson:"sodium_per_100g"` // mg
	DefaultServingGrams float64   `json:"default_serving_grams" bson:"default_serving_grams"`
	Barcode             string    `json:"barcode,omitempty" bson:"barcode,omitempty"`
	IsVerified          bool      `json:"is_verified" bson:"is_verified"`
	CreatedAt           time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}

// Per100g returns the raw reference values
func (f Food) Per100g() NutritionFacts {
	return NutritionFacts{
		Calories: f.CaloriesPer100g,
		Protein:  f.ProteinPer100g,
		Carbs:    f.CarbsPer100g,
		Fats:     f.FatsPer100g,
		Fiber:    f.FiberPer100g,
		Sugar:    f.SugarPer100g,
		Sodium:   f.SodiumPer100g,
	}
}

// Validate rejects negative nutrient values
func (f Food) Validate() error {
	facts := f.Per100g()
	for _, v := range []float64{facts.Calories, facts.Protein, facts.Carbs, facts.Fats, facts.Fiber, facts.Sugar, facts.Sodium} {
		if v < 0 {
			return fmt.Errorf("%w: nutrient values must not be negative", ErrInvalidInput)
		}
	}
	if f.DefaultServingGrams < 0 {
		return fmt.Errorf("%w: default serving size must not be negative", ErrInvalidInput)
	}
	return nil
}

type RecipeIngredient struct {
	FoodID        string  `json:"food_id" bson:"food_id"`
	FoodName      string  `json:"food_name" bson:"food_name"`
	QuantityGrams float64 `json:"quantity_grams" bson:"quantity_grams"`
	Notes         string  `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Recipe stores its ingredient rollup at full precision; it is recomputed after every ingredient mutation
type Recipe struct {
	ID               string             `json:"id" bson:"_id,omitempty"`
	UserID           string             `json:"user_id" bson:"user_id"`
	Name             string             `json:"name" bson:"name"`
	Description      string             `json:"description,omitempty" bson:"description,omitempty"`
	Servings         int                `json:"servings" bson:"servings"`
	PrepTimeMinutes  *int               `json:"prep_time_minutes,omitempty" bson:"prep_time_minutes,omitempty"`
	CookTimeMinutes  *int               `json:"cook_time_minutes,omitempty" bson:"cook_time_minutes,omitempty"`
	Ingredients      []RecipeIngredient `json:"ingredients" bson:"ingredients"`
	Totals           MacroTotals        `json:"totals" bson:"totals"`
	TotalWeightGrams float64            `json:"total_weight_grams" bson:"total_weight_grams"`
	IsPublic         bool               `json:"is_public" bson:"is_public"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnacks    MealType = "snacks"
)

type MealSourceKind string

const (
	MealSourceFood   MealSourceKind = "food"
	MealSourceRecipe MealSourceKind = "recipe"
)

// MealEntry is a logged meal. Snapshot is computed once at creation and never recomputed.
type MealEntry struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	ClientID      string         `json:"client_id" bson:"client_id"` // ULID
	UserID        string         `json:"user_id" bson:"user_id"`
	MealType      MealType       `json:"meal_type" bson:"meal_type"`
	Date          time.Time      `json:"date" bson:"date"`
	SourceKind    MealSourceKind `json:"source_kind" bson:"source_kind"`
	SourceID      string         `json:"source_id" bson:"source_id"`
	SourceName    string         `json:"source_name" bson:"source_name"`
	QuantityGrams float64        `json:"quantity_grams" bson:"quantity_grams"`
	Snapshot      MacroTotals    `json:"snapshot" bson:"snapshot"`
	Notes         string         `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
}

type WaterIntake struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Date        time.Time `json:"date" bson:"date"`
	AmountMl    int       `json:"amount_ml" bson:"amount_ml"`
	DailyGoalMl int       `json:"daily_goal_ml" bson:"daily_goal_ml"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type WaterProgress struct {
	AmountMl           int     `json:"amount_ml"`
	DailyGoalMl        int     `json:"daily_goal_ml"`
	ProgressPercentage float64 `json:"progress_percentage"`
	GlassesConsumed    float64 `json:"glasses_consumed"`
}

// NutritionGoal is the user's daily intake target and macro split in percent
type NutritionGoal struct {
	ID                string    `json:"id" bson:"_id,omitempty"`
	UserID            string    `json:"user_id" bson:"user_id"`
	DailyCalories     int       `json:"daily_calories" bson:"daily_calories"`
	DailyWaterMl      int       `json:"daily_water_ml" bson:"daily_water_ml"`
	ProteinPercentage int       `json:"protein_percentage" bson:"protein_percentage"`
	CarbsPercentage   int       `json:"carbs_percentage" bson:"carbs_percentage"`
	FatsPercentage    int       `json:"fats_percentage" bson:"fats_percentage"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

type MacroGoals struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatsG    int `json:"fats_g"`
}

// EnergyBalance is the day's intake against the calorie goal, crediting exercise burn
type EnergyBalance struct {
	Date             time.Time   `json:"date"`
	DailyCalorieGoal int         `json:"daily_calorie_goal"`
	Consumed         MacroTotals `json:"consumed"`
	Burned           int         `json:"burned"`
	Net              float64     `json:"net"`
	Remaining        float64     `json:"remaining"`
}

type FoodRepository interface {
	Create(ctx context.Context, food *Food) error
	GetByID(ctx context.Context, id string) (*Food, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Food, error)
	Search(ctx context.Context, query string, limit int) ([]*Food, error)
	Update(ctx context.Context, food *Food) error
	Delete(ctx context.Context, id string) error
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *Recipe) error
	GetByID(ctx context.Context, id string) (*Recipe, error)
	ListByUser(ctx context.Context, userID string) ([]*Recipe, error)
	// SaveIngredients overwrites the ingredient list together with its recomputed totals
	SaveIngredients(ctx context.Context, recipe *Recipe) error
	ListByFood(ctx context.Context, foodID string) ([]*Recipe, error)
	Delete(ctx context.Context, id string) error
}

type MealEntryRepository interface {
	Create(ctx context.Context, entry *MealEntry) error
	GetByID(ctx context.Context, id string) (*MealEntry, error)
	GetByClientID(ctx context.Context, clientID string) (*MealEntry, error)
	ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]*MealEntry, error)
	Delete(ctx context.Context, id string) error
}

type WaterIntakeRepository interface {
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*WaterIntake, error)
	// AddAmount increments the day's intake, creating the record with goalMl if missing
	AddAmount(ctx context.Context, userID string, date time.Time, amountMl, goalMl int) (*WaterIntake, error)
}

type NutritionGoalRepository interface {
	GetByUserID(ctx context.Context, userID string) (*NutritionGoal, error)
	Upsert(ctx context.Context, goal *NutritionGoal) error
}
