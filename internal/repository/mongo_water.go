package repository

import (
	"context"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoWaterIntakeRepository struct {
	collection *mongo.Collection
}

func NewMongoWaterIntakeRepository(db *mongo.Database) *MongoWaterIntakeRepository {
	coll := db.Collection("water_intake")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoWaterIntakeRepository{
		collection: coll,
	}
}

func (r *MongoWaterIntakeRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*domain.WaterIntake, error) {
	var intake domain.WaterIntake
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Decode(&intake)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Nothing logged yet today
		}
		return nil, err
	}
	return &intake, nil
}

// AddAmount atomically increments the day's total so concurrent logs are not lost
func (r *MongoWaterIntakeRepository) AddAmount(ctx context.Context, userID string, date time.Time, amountMl, goalMl int) (*domain.WaterIntake, error) {
	update := bson.M{
		"$inc":         bson.M{"amount_ml": amountMl},
		"$set":         bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{"daily_goal_ml": goalMl},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var intake domain.WaterIntake
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID, "date": date}, update, opts).Decode(&intake)
	if err != nil {
		return nil, err
	}
	return &intake, nil
}
