package repository

import (
	"context"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoNutritionGoalRepository struct {
	collection *mongo.Collection
}

func NewMongoNutritionGoalRepository(db *mongo.Database) *MongoNutritionGoalRepository {
	coll := db.Collection("nutrition_goals")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"user_id": 1},
		Options: options.Index().SetUnique(true),
	})

	return &MongoNutritionGoalRepository{
		collection: coll,
	}
}

// GetByUserID returns nil, nil when the user has not set a goal
func (r *MongoNutritionGoalRepository) GetByUserID(ctx context.Context, userID string) (*domain.NutritionGoal, error) {
	var goal domain.NutritionGoal
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&goal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &goal, nil
}

func (r *MongoNutritionGoalRepository) Upsert(ctx context.Context, goal *domain.NutritionGoal) error {
	goal.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"daily_calories":     goal.DailyCalories,
			"daily_water_ml":     goal.DailyWaterMl,
			"protein_percentage": goal.ProteinPercentage,
			"carbs_percentage":   goal.CarbsPercentage,
			"fats_percentage":    goal.FatsPercentage,
			"updated_at":         goal.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved domain.NutritionGoal
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": goal.UserID}, update, opts).Decode(&saved); err != nil {
		return err
	}
	*goal = saved
	return nil
}
