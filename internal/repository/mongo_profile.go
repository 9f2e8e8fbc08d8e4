package repository

import (
	"context"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoProfileRepository struct {
	collection *mongo.Collection
}

func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	coll := db.Collection("body_profiles")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"user_id": 1},
		Options: options.Index().SetUnique(true),
	})

	return &MongoProfileRepository{
		collection: coll,
	}
}

func (r *MongoProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.BodyProfile, error) {
	var profile domain.BodyProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert writes the full profile keyed by user, keeping the original created_at
func (r *MongoProfileRepository) Upsert(ctx context.Context, profile *domain.BodyProfile) error {
	now := time.Now()
	profile.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"age":            profile.Age,
			"height_cm":      profile.HeightCm,
			"weight_kg":      profile.WeightKg,
			"sex":            profile.Sex,
			"activity_level": profile.ActivityLevel,
			"fitness_goal":   profile.FitnessGoal,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved domain.BodyProfile
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": profile.UserID}, update, opts).Decode(&saved); err != nil {
		return err
	}
	*profile = saved
	return nil
}
