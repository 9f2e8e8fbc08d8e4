package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRecipeRepository struct {
	collection *mongo.Collection
}

func NewMongoRecipeRepository(db *mongo.Database) *MongoRecipeRepository {
	coll := db.Collection("recipes")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"user_id": 1}},
		{Keys: bson.M{"ingredients.food_id": 1}},
	})

	return &MongoRecipeRepository{
		collection: coll,
	}
}

func (r *MongoRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	recipe.CreatedAt = time.Now()
	recipe.UpdatedAt = time.Now()
	if recipe.Ingredients == nil {
		recipe.Ingredients = []domain.RecipeIngredient{}
	}

	result, err := r.collection.InsertOne(ctx, recipe)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		recipe.ID = oid.Hex()
	}
	return nil
}

func (r *MongoRecipeRepository) GetByID(ctx context.Context, id string) (*domain.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var recipe domain.Recipe
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&recipe)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *MongoRecipeRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Recipe, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recipes []*domain.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// SaveIngredients writes the ingredient list and its rollup together
func (r *MongoRecipeRepository) SaveIngredients(ctx context.Context, recipe *domain.Recipe) error {
	oid, err := primitive.ObjectIDFromHex(recipe.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	recipe.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"servings":           recipe.Servings,
			"ingredients":        recipe.Ingredients,
			"totals":             recipe.Totals,
			"total_weight_grams": recipe.TotalWeightGrams,
			"updated_at":         recipe.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to save recipe ingredients: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrRecipeNotFound
	}
	return nil
}

// ListByFood returns recipes that use the given food, so their totals can be recomputed
func (r *MongoRecipeRepository) ListByFood(ctx context.Context, foodID string) ([]*domain.Recipe, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"ingredients.food_id": foodID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recipes []*domain.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *MongoRecipeRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
