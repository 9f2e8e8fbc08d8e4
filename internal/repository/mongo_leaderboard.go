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

type MongoLeaderboardRepository struct {
	collection *mongo.Collection
	entries    *mongo.Collection
}

func NewMongoLeaderboardRepository(db *mongo.Database) *MongoLeaderboardRepository {
	coll := db.Collection("leaderboards")
	entries := db.Collection("leaderboard_entries")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// At most one entry per (leaderboard, user, period start)
	entries.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "leaderboard_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "period_start", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "leaderboard_id", Value: 1}, {Key: "period_start", Value: 1}, {Key: "rank", Value: 1}}},
	})

	return &MongoLeaderboardRepository{
		collection: coll,
		entries:    entries,
	}
}

func (r *MongoLeaderboardRepository) Create(ctx context.Context, lb *domain.Leaderboard) error {
	lb.CreatedAt = time.Now()
	lb.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, lb)
	if err != nil {
		return fmt.Errorf("failed to create leaderboard: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		lb.ID = oid.Hex()
	}
	return nil
}

func (r *MongoLeaderboardRepository) GetByID(ctx context.Context, id string) (*domain.Leaderboard, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var lb domain.Leaderboard
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&lb)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrLeaderboardNotFound
		}
		return nil, err
	}
	return &lb, nil
}

func (r *MongoLeaderboardRepository) ListActive(ctx context.Context) ([]*domain.Leaderboard, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var boards []*domain.Leaderboard
	if err := cursor.All(ctx, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// ReplaceEntries upserts the period's entries on the unique key and removes
// users that fell off the board since the last publish.
func (r *MongoLeaderboardRepository) ReplaceEntries(ctx context.Context, leaderboardID string, periodStart time.Time, entries []domain.LeaderboardEntry) error {
	now := time.Now()
	users := make([]string, 0, len(entries))
	models := make([]mongo.WriteModel, 0, len(entries))
	for _, e := range entries {
		users = append(users, e.UserID)
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{
				"leaderboard_id": leaderboardID,
				"user_id":        e.UserID,
				"period_start":   periodStart,
			}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"rank":       e.Rank,
					"score":      e.Score,
					"period_end": e.PeriodEnd,
				},
				"$setOnInsert": bson.M{"created_at": now},
			}).
			SetUpsert(true))
	}

	_, err := r.entries.DeleteMany(ctx, bson.M{
		"leaderboard_id": leaderboardID,
		"period_start":   periodStart,
		"user_id":        bson.M{"$nin": users},
	})
	if err != nil {
		return fmt.Errorf("failed to prune leaderboard entries: %w", err)
	}

	if len(models) == 0 {
		return nil
	}
	if _, err := r.entries.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to upsert leaderboard entries: %w", err)
	}
	return nil
}

func (r *MongoLeaderboardRepository) GetEntries(ctx context.Context, leaderboardID string, periodStart time.Time) ([]domain.LeaderboardEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := r.entries.Find(ctx, bson.M{"leaderboard_id": leaderboardID, "period_start": periodStart}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
