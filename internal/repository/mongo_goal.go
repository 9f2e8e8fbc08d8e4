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

type MongoGoalRepository struct {
	collection *mongo.Collection
	progress   *mongo.Collection
}

func NewMongoGoalRepository(db *mongo.Database) *MongoGoalRepository {
	coll := db.Collection("goals")
	progress := db.Collection("goal_progress")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}},
	})
	progress.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "goal_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoGoalRepository{
		collection: coll,
		progress:   progress,
	}
}

func (r *MongoGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, goal)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		goal.ID = oid.Hex()
	}
	return nil
}

func (r *MongoGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var goal domain.Goal
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&goal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// ListByUser returns the user's goals, optionally filtered by status
func (r *MongoGoalRepository) ListByUser(ctx context.Context, userID string, status domain.GoalStatus) ([]*domain.Goal, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "target_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var goals []*domain.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *MongoGoalRepository) UpdateProgress(ctx context.Context, id string, currentValue float64, status domain.GoalStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"current_value": currentValue,
			"status":        status,
			"updated_at":    time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func (r *MongoGoalRepository) UpdateStatus(ctx context.Context, id string, status domain.GoalStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

// UpsertProgressEntry keeps one sample per goal per day
func (r *MongoGoalRepository) UpsertProgressEntry(ctx context.Context, entry *domain.GoalProgress) error {
	update := bson.M{
		"$set": bson.M{
			"value": entry.Value,
			"notes": entry.Notes,
		},
		"$setOnInsert": bson.M{"created_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved domain.GoalProgress
	err := r.progress.FindOneAndUpdate(ctx, bson.M{"goal_id": entry.GoalID, "date": entry.Date}, update, opts).Decode(&saved)
	if err != nil {
		return fmt.Errorf("failed to record goal progress: %w", err)
	}
	*entry = saved
	return nil
}
