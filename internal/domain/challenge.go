package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrParticipantNotFound  = errors.New("challenge participant not found")
	ErrAlreadyJoined        = errors.New("already joined this challenge")
	ErrRegistrationClosed   = errors.New("challenge registration is closed")
	ErrChallengeFull        = errors.New("challenge has reached its participant limit")
	ErrInvalidTransition    = errors.New("invalid challenge status transition")
	ErrParticipantNotActive = errors.New("participant is not active in this challenge")
)

type ChallengeStatus string

const (
	ChallengeDraft              ChallengeStatus = "draft"
	ChallengeOpenRegistration   ChallengeStatus = "open_registration"
	ChallengeRegistrationClosed ChallengeStatus = "registration_closed"
	ChallengeActive             ChallengeStatus = "active"
	ChallengeCompleted          ChallengeStatus = "completed"
	ChallengeCancelled          ChallengeStatus = "cancelled"
)

// challengeTransitions lists the forward edges of the status machine; cancelled is handled separately
var challengeTransitions = map[ChallengeStatus]ChallengeStatus{
	ChallengeDraft:              ChallengeOpenRegistration,
	ChallengeOpenRegistration:   ChallengeRegistrationClosed,
	ChallengeRegistrationClosed: ChallengeActive,
	ChallengeActive:             ChallengeCompleted,
}

// IsTerminal reports whether no further transition is possible
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeCompleted || s == ChallengeCancelled
}

// CanTransition reports whether a challenge may move from one status to another
func CanTransition(from, to ChallengeStatus) bool {
	if to == ChallengeCancelled {
		return !from.IsTerminal()
	}
	next, ok := challengeTransitions[from]
	return ok && next == to
}

type Challenge struct {
	ID                   string          `json:"id" bson:"_id,omitempty"`
	Title                string          `json:"title" bson:"title"`
	Description          string          `json:"description" bson:"description"`
	CreatedBy            string          `json:"created_by" bson:"created_by"`
	ChallengeType        string          `json:"challenge_type" bson:"challenge_type"`
	TargetValue          float64         `json:"target_value" bson:"target_value"`
	TargetUnit           string          `json:"target_unit" bson:"target_unit"`
	Rules                string          `json:"rules,omitempty" bson:"rules,omitempty"`
	StartDate            time.Time       `json:"start_date" bson:"start_date"`
	EndDate              time.Time       `json:"end_date" bson:"end_date"`
	RegistrationDeadline *time.Time      `json:"registration_deadline,omitempty" bson:"registration_deadline,omitempty"`
	MaxParticipants      *int            `json:"max_participants,omitempty" bson:"max_participants,omitempty"`
	IsPublic             bool            `json:"is_public" bson:"is_public"`
	AllowLateJoin        bool            `json:"allow_late_join" bson:"allow_late_join"`
	Status               ChallengeStatus `json:"status" bson:"status"`
	TotalParticipants    int             `json:"total_participants" bson:"total_participants"`
	CreatedAt            time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" bson:"updated_at"`
}

type ParticipantStatus string

const (
	ParticipantActive       ParticipantStatus = "active"
	ParticipantCompleted    ParticipantStatus = "completed"
	ParticipantDroppedOut   ParticipantStatus = "dropped_out"
	ParticipantDisqualified ParticipantStatus = "disqualified"
)

// Ranked reports whether the participant takes part in ranking
func (s ParticipantStatus) Ranked() bool {
	return s == ParticipantActive || s == ParticipantCompleted
}

// ChallengeParticipant tracks one user's standing. JoinSeq is a monotonic
// sequence captured at registration and breaks ties between equal JoinedAt values.
type ChallengeParticipant struct {
	ID                   string            `json:"id" bson:"_id,omitempty"`
	ChallengeID          string            `json:"challenge_id" bson:"challenge_id"`
	UserID               string            `json:"user_id" bson:"user_id"`
	JoinedAt             time.Time         `json:"joined_at" bson:"joined_at"`
	JoinSeq              int64             `json:"join_seq" bson:"join_seq"`
	CurrentValue         float64           `json:"current_value" bson:"current_value"`
	TargetReached        bool              `json:"target_reached" bson:"target_reached"`
	CompletionPercentage float64           `json:"completion_percentage" bson:"completion_percentage"`
	CurrentRank          *int              `json:"current_rank" bson:"current_rank"`
	FinalRank            *int              `json:"final_rank" bson:"final_rank"`
	Status               ParticipantStatus `json:"status" bson:"status"`
}

// ChallengeProgress is a participant's daily sample; CumulativeValue is the running total up to Date
type ChallengeProgress struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	ParticipantID   string    `json:"participant_id" bson:"participant_id"`
	Date            time.Time `json:"date" bson:"date"`
	DailyValue      float64   `json:"daily_value" bson:"daily_value"`
	CumulativeValue float64   `json:"cumulative_value" bson:"cumulative_value"`
	Verified        bool      `json:"verified" bson:"verified"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *Challenge) error
	GetByID(ctx context.Context, id string) (*Challenge, error)
	ListByStatus(ctx context.Context, statuses ...ChallengeStatus) ([]*Challenge, error)
	UpdateStatus(ctx context.Context, id string, status ChallengeStatus) error
	IncrementParticipants(ctx context.Context, id string, delta int) error
}

type ParticipantRepository interface {
	Create(ctx context.Context, participant *ChallengeParticipant) error
	GetByID(ctx context.Context, id string) (*ChallengeParticipant, error)
	GetByChallengeAndUser(ctx context.Context, challengeID, userID string) (*ChallengeParticipant, error)
	ListByChallenge(ctx context.Context, challengeID string) ([]*ChallengeParticipant, error)
	UpdateValue(ctx context.Context, id string, currentValue float64) error
	UpdateStatus(ctx context.Context, id string, status ParticipantStatus) error
	// SaveStandings persists the derived fields (rank, percentage, target flag) of every participant
	SaveStandings(ctx context.Context, participants []*ChallengeParticipant) error
}

type ChallengeProgressRepository interface {
	// Upsert replaces the participant's sample for the same date
	Upsert(ctx context.Context, progress *ChallengeProgress) error
	ListByParticipant(ctx context.Context, participantID string) ([]*ChallengeProgress, error)
}
