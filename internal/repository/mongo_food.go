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

type MongoFoodRepository struct {
	collection *mongo.Collection
}

func NewMongoFoodRepository(db *mongo.Database) *MongoFoodRepository {
	coll := db.Collection("foods")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"name": 1}},
		{Keys: bson.M{"barcode": 1}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})

	return &MongoFoodRepository{
		collection: coll,
	}
}

func (r *MongoFoodRepository) Create(ctx context.Context, food *domain.Food) error {
	food.CreatedAt = time.Now()
	food.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, food)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: barcode %s already registered", domain.ErrInvalidInput, food.Barcode)
		}
		return fmt.Errorf("failed to create food: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		food.ID = oid.Hex()
	}
	return nil
}

func (r *MongoFoodRepository) GetByID(ctx context.Context, id string) (*domain.Food, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var food domain.Food
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&food)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrFoodNotFound
		}
		return nil, err
	}
	return &food, nil
}

// GetByIDs loads several foods at once, keyed by ID. Missing IDs are simply absent from the map.
func (r *MongoFoodRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Food, error) {
	oids, err := objectIDs(ids)
	if err != nil {
		return nil, err
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var foods []*domain.Food
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}
	return byID, nil
}

func (r *MongoFoodRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Food, error) {
	filter := bson.M{}
	if query != "" {
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": primitive.Regex{Pattern: regexQuote(query), Options: "i"}}},
			bson.M{"barcode": query},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "is_verified", Value: -1}, {Key: "name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var foods []*domain.Food
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

func (r *MongoFoodRepository) Update(ctx context.Context, food *domain.Food) error {
	oid, err := primitive.ObjectIDFromHex(food.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	food.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":                  food.Name,
			"brand":                 food.Brand,
			"category":              food.Category,
			"calories_per_100g":     food.CaloriesPer100g,
			"protein_per_100g":      food.ProteinPer100g,
			"carbs_per_100g":        food.CarbsPer100g,
			"fats_per_100g":         food.FatsPer100g,
			"fiber_per_100g":        food.FiberPer100g,
			"sugar_per_100g":        food.SugarPer100g,
			"sodium_per_100g":       food.SodiumPer100g,
			"default_serving_grams": food.DefaultServingGrams,
			"is_verified":           food.IsVerified,
			"updated_at":            food.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrFoodNotFound
	}
	return nil
}

func (r *MongoFoodRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
