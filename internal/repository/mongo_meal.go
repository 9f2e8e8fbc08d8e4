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

// MongoMealEntryRepository stores meal entries. Entries are insert-only: the
// nutrition snapshot is never updated after creation.
type MongoMealEntryRepository struct {
	collection *mongo.Collection
}

func NewMongoMealEntryRepository(db *mongo.Database) *MongoMealEntryRepository {
	coll := db.Collection("meal_entries")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"client_id": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}},
	})

	return &MongoMealEntryRepository{
		collection: coll,
	}
}

func (r *MongoMealEntryRepository) Create(ctx context.Context, entry *domain.MealEntry) error {
	entry.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create meal entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *MongoMealEntryRepository) GetByID(ctx context.Context, id string) (*domain.MealEntry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var entry domain.MealEntry
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrMealEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *MongoMealEntryRepository) GetByClientID(ctx context.Context, clientID string) (*domain.MealEntry, error) {
	var entry domain.MealEntry
	err := r.collection.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrMealEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *MongoMealEntryRepository) ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]*domain.MealEntry, error) {
	filter := bson.M{"user_id": userID, "date": date}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*domain.MealEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *MongoMealEntryRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
