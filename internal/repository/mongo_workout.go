package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoWorkoutRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutRepository(db *mongo.Database) *MongoWorkoutRepository {
	coll := db.Collection("workouts")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
	})

	return &MongoWorkoutRepository{
		collection: coll,
	}
}

func (r *MongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) error {
	workout.CreatedAt = time.Now()
	workout.UpdatedAt = time.Now()
	if workout.Exercises == nil {
		workout.Exercises = []*domain.WorkoutExercise{}
	}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return fmt.Errorf("failed to create workout: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		workout.ID = oid.Hex()
	}
	return nil
}

func (r *MongoWorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var workout domain.Workout
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&workout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *MongoWorkoutRepository) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*domain.Workout, error) {
	filter := bson.M{
		"user_id": userID,
		"date":    bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []*domain.Workout
	if err := cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// SaveExercises writes the entry set and its aggregate in one update
func (r *MongoWorkoutRepository) SaveExercises(ctx context.Context, workout *domain.Workout) error {
	oid, err := primitive.ObjectIDFromHex(workout.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	workout.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"exercises":              workout.Exercises,
			"total_duration_minutes": workout.TotalDurationMinutes,
			"total_calories_burned":  workout.TotalCaloriesBurned,
			"updated_at":             workout.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to save workout exercises: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrWorkoutNotFound
	}
	return nil
}

func (r *MongoWorkoutRepository) UpdateStatus(ctx context.Context, id string, status domain.WorkoutStatus) error {
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
		return domain.ErrWorkoutNotFound
	}
	return nil
}

func (r *MongoWorkoutRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *MongoWorkoutRepository) CompletedDates(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	filter := bson.M{
		"user_id": userID,
		"status":  domain.WorkoutCompleted,
		"date":    bson.M{"$gte": since},
	}

	values, err := r.collection.Distinct(ctx, "date", filter)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		if dt, ok := v.(primitive.DateTime); ok {
			dates = append(dates, dt.Time().UTC())
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates, nil
}

func (r *MongoWorkoutRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*domain.Workout, error) {
	filter := bson.M{
		"status": domain.WorkoutCompleted,
		"date":   bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "updated_at", Value: 1}}).
		SetProjection(bson.M{"exercises": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []*domain.Workout
	if err := cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}
