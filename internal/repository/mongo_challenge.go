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

type MongoChallengeRepository struct {
	collection *mongo.Collection
}

func NewMongoChallengeRepository(db *mongo.Database) *MongoChallengeRepository {
	coll := db.Collection("challenges")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "start_date", Value: 1}},
	})

	return &MongoChallengeRepository{
		collection: coll,
	}
}

func (r *MongoChallengeRepository) Create(ctx context.Context, challenge *domain.Challenge) error {
	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, challenge)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		challenge.ID = oid.Hex()
	}
	return nil
}

func (r *MongoChallengeRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var challenge domain.Challenge
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&challenge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *MongoChallengeRepository) ListByStatus(ctx context.Context, statuses ...domain.ChallengeStatus) ([]*domain.Challenge, error) {
	filter := bson.M{}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var challenges []*domain.Challenge
	if err := cursor.All(ctx, &challenges); err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *MongoChallengeRepository) UpdateStatus(ctx context.Context, id string, status domain.ChallengeStatus) error {
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
		return domain.ErrChallengeNotFound
	}
	return nil
}

func (r *MongoChallengeRepository) IncrementParticipants(ctx context.Context, id string, delta int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$inc": bson.M{"total_participants": delta},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}
