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

type MongoParticipantRepository struct {
	collection *mongo.Collection
}

func NewMongoParticipantRepository(db *mongo.Database) *MongoParticipantRepository {
	coll := db.Collection("challenge_participants")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "challenge_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoParticipantRepository{
		collection: coll,
	}
}

func (r *MongoParticipantRepository) Create(ctx context.Context, p *domain.ChallengeParticipant) error {
	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyJoined
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *MongoParticipantRepository) GetByID(ctx context.Context, id string) (*domain.ChallengeParticipant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var p domain.ChallengeParticipant
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoParticipantRepository) GetByChallengeAndUser(ctx context.Context, challengeID, userID string) (*domain.ChallengeParticipant, error) {
	var p domain.ChallengeParticipant
	err := r.collection.FindOne(ctx, bson.M{"challenge_id": challengeID, "user_id": userID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoParticipantRepository) ListByChallenge(ctx context.Context, challengeID string) ([]*domain.ChallengeParticipant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "join_seq", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"challenge_id": challengeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var participants []*domain.ChallengeParticipant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *MongoParticipantRepository) UpdateValue(ctx context.Context, id string, currentValue float64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"current_value": currentValue},
	})
	return err
}

func (r *MongoParticipantRepository) UpdateStatus(ctx context.Context, id string, status domain.ParticipantStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"status": status},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

// SaveStandings writes every participant's derived fields in a single bulk write
func (r *MongoParticipantRepository) SaveStandings(ctx context.Context, participants []*domain.ChallengeParticipant) error {
	if len(participants) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(participants))
	for _, p := range participants {
		oid, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return domain.ErrInvalidID
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": oid}).
			SetUpdate(bson.M{"$set": bson.M{
				"completion_percentage": p.CompletionPercentage,
				"target_reached":        p.TargetReached,
				"current_rank":          p.CurrentRank,
				"final_rank":            p.FinalRank,
				"status":                p.Status,
			}}))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to save standings: %w", err)
	}
	return nil
}
