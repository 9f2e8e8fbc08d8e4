package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoChallengeProgressRepository struct {
	collection *mongo.Collection
}

func NewMongoChallengeProgressRepository(db *mongo.Database) *MongoChallengeProgressRepository {
	coll := db.Collection("challenge_progress")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "participant_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoChallengeProgressRepository{
		collection: coll,
	}
}

func (r *MongoChallengeProgressRepository) Upsert(ctx context.Context, p *domain.ChallengeProgress) error {
	update := bson.M{
		"$set": bson.M{
			"daily_value":      p.DailyValue,
			"cumulative_value": p.CumulativeValue,
			"verified":         p.Verified,
			"notes":            p.Notes,
		},
		"$setOnInsert": bson.M{"created_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved domain.ChallengeProgress
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"participant_id": p.ParticipantID, "date": p.Date}, update, opts).Decode(&saved)
	if err != nil {
		return fmt.Errorf("failed to record challenge progress: %w", err)
	}
	*p = saved
	return nil
}

// ListByParticipant returns samples oldest first
func (r *MongoChallengeProgressRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domain.ChallengeProgress, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"participant_id": participantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var samples []*domain.ChallengeProgress
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}
