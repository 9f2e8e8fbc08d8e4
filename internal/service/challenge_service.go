package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
	"github.com/mansoorceksport/fitledger/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const participantSequence = "challenge_participants"

type ChallengeService struct {
	challengeRepo   domain.ChallengeRepository
	participantRepo domain.ParticipantRepository
	progressRepo    domain.ChallengeProgressRepository
	sequences       domain.SequenceRepository
	metrics         *telemetry.Metrics
	now             func() time.Time
}

func NewChallengeService(
	challengeRepo domain.ChallengeRepository,
	participantRepo domain.ParticipantRepository,
	progressRepo domain.ChallengeProgressRepository,
	sequences domain.SequenceRepository,
	metrics *telemetry.Metrics,
) *ChallengeService {
	return &ChallengeService{
		challengeRepo:   challengeRepo,
		participantRepo: participantRepo,
		progressRepo:    progressRepo,
		sequences:       sequences,
		metrics:         metrics,
		now:             time.Now,
	}
}

// ChallengeView is a challenge with its date-derived fields
type ChallengeView struct {
	*domain.Challenge
	RegistrationOpen bool `json:"registration_open"`
	DaysRemaining    int  `json:"days_remaining"`
	DurationDays     int  `json:"duration_days"`
}

func (s *ChallengeService) view(c *domain.Challenge) *ChallengeView {
	today := s.now()
	return &ChallengeView{
		Challenge:        c,
		RegistrationOpen: engine.IsRegistrationOpen(*c, today),
		DaysRemaining:    engine.DaysRemaining(*c, today),
		DurationDays:     engine.DurationDays(*c),
	}
}

// Create stores a new challenge in draft
func (s *ChallengeService) Create(ctx context.Context, createdBy string, c *domain.Challenge) (*ChallengeView, error) {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return nil, fmt.Errorf("%w: challenge title is required", domain.ErrInvalidInput)
	}
	if c.TargetValue < 0 {
		return nil, fmt.Errorf("%w: target value must not be negative", domain.ErrInvalidInput)
	}
	c.StartDate = engine.DateOf(c.StartDate)
	c.EndDate = engine.DateOf(c.EndDate)
	if c.StartDate.IsZero() || c.EndDate.Before(c.StartDate) {
		return nil, fmt.Errorf("%w: challenge needs a start date on or before its end date", domain.ErrInvalidInput)
	}
	if c.RegistrationDeadline != nil {
		deadline := engine.DateOf(*c.RegistrationDeadline)
		if deadline.After(c.EndDate) {
			return nil, fmt.Errorf("%w: registration deadline is after the end date", domain.ErrInvalidInput)
		}
		c.RegistrationDeadline = &deadline
	}
	if c.MaxParticipants != nil && *c.MaxParticipants < 1 {
		return nil, fmt.Errorf("%w: max participants must be at least 1", domain.ErrInvalidInput)
	}

	c.ID = ""
	c.CreatedBy = createdBy
	c.Status = domain.ChallengeDraft
	c.TotalParticipants = 0

	if err := s.challengeRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return s.view(c), nil
}

func (s *ChallengeService) Get(ctx context.Context, id string) (*ChallengeView, error) {
	c, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// List returns challenges in the given statuses, or all when none are given
func (s *ChallengeService) List(ctx context.Context, statuses ...domain.ChallengeStatus) ([]*ChallengeView, error) {
	challenges, err := s.challengeRepo.ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	out := make([]*ChallengeView, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, s.view(c))
	}
	return out, nil
}

// Transition moves a challenge along its status machine. Only the creator or an admin may do so.
func (s *ChallengeService) Transition(ctx context.Context, actorID string, isAdmin bool, id string, to domain.ChallengeStatus) (*ChallengeView, error) {
	c, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CreatedBy != actorID && !isAdmin {
		return nil, domain.ErrForbidden
	}
	if err := s.transition(ctx, c, to); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *ChallengeService) transition(ctx context.Context, c *domain.Challenge, to domain.ChallengeStatus) error {
	if !domain.CanTransition(c.Status, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, c.Status, to)
	}
	if err := s.challengeRepo.UpdateStatus(ctx, c.ID, to); err != nil {
		return err
	}
	c.Status = to

	if to == domain.ChallengeCompleted {
		if _, err := s.finalize(ctx, c); err != nil {
			return fmt.Errorf("challenge completed but final ranks were not saved: %w", err)
		}
	}
	return nil
}

// Join registers the user. JoinedAt and a monotonic sequence are captured now
// and break ties between equal values in the standings.
func (s *ChallengeService) Join(ctx context.Context, userID, challengeID string) (*domain.ChallengeParticipant, error) {
	c, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lateJoin := c.Status == domain.ChallengeActive && c.AllowLateJoin
	if !engine.IsRegistrationOpen(*c, now) && !lateJoin {
		return nil, domain.ErrRegistrationClosed
	}
	if c.MaxParticipants != nil && c.TotalParticipants >= *c.MaxParticipants {
		return nil, domain.ErrChallengeFull
	}

	if _, err := s.participantRepo.GetByChallengeAndUser(ctx, challengeID, userID); err == nil {
		return nil, domain.ErrAlreadyJoined
	} else if !errors.Is(err, domain.ErrParticipantNotFound) {
		return nil, err
	}

	seq, err := s.sequences.Next(ctx, participantSequence)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate join sequence: %w", err)
	}

	participant := &domain.ChallengeParticipant{
		ChallengeID: challengeID,
		UserID:      userID,
		JoinedAt:    now.UTC(),
		JoinSeq:     seq,
		Status:      domain.ParticipantActive,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, err
	}
	if err := s.challengeRepo.IncrementParticipants(ctx, challengeID, 1); err != nil {
		fmt.Printf("Warning: failed to increment participant count for %s: %v\n", challengeID, err)
	}

	standings, err := s.rerank(ctx, c)
	if err != nil {
		return nil, err
	}
	for _, p := range standings {
		if p.ID == participant.ID {
			return p, nil
		}
	}
	return participant, nil
}

// RecordProgress stores the user's value for a day and rebuilds the running
// totals, so a backdated sample also shifts every later cumulative value.
func (s *ChallengeService) RecordProgress(ctx context.Context, userID, challengeID string, date time.Time, value float64, notes string) (*domain.ChallengeParticipant, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: progress value must not be negative", domain.ErrInvalidInput)
	}
	c, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.ChallengeActive {
		return nil, fmt.Errorf("%w: challenge is %s", domain.ErrInvalidInput, c.Status)
	}
	participant, err := s.participantRepo.GetByChallengeAndUser(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	if participant.Status != domain.ParticipantActive {
		return nil, domain.ErrParticipantNotActive
	}

	if date.IsZero() {
		date = s.now()
	}
	day := engine.DateOf(date)
	if day.Before(c.StartDate) || day.After(c.EndDate) {
		return nil, fmt.Errorf("%w: %s is outside the challenge dates", domain.ErrInvalidInput, day.Format(time.DateOnly))
	}

	samples, err := s.progressRepo.ListByParticipant(ctx, participant.ID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, p := range samples {
		if engine.DateOf(p.Date).Equal(day) {
			p.DailyValue = value
			p.Notes = notes
			found = true
		}
	}
	if !found {
		samples = append(samples, &domain.ChallengeProgress{
			ParticipantID: participant.ID,
			Date:          day,
			DailyValue:    value,
			Notes:         notes,
		})
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Date.Before(samples[j].Date) })

	total := 0.0
	for _, p := range samples {
		total += p.DailyValue
		if p.Date.Before(day) {
			continue
		}
		p.CumulativeValue = total
		if err := s.progressRepo.Upsert(ctx, p); err != nil {
			return nil, err
		}
	}

	if err := s.participantRepo.UpdateValue(ctx, participant.ID, total); err != nil {
		return nil, err
	}

	standings, err := s.rerank(ctx, c)
	if err != nil {
		return nil, err
	}
	for _, p := range standings {
		if p.ID == participant.ID {
			return p, nil
		}
	}
	return participant, nil
}

// ProgressHistory returns the user's daily samples in date order
func (s *ChallengeService) ProgressHistory(ctx context.Context, userID, challengeID string) ([]*domain.ChallengeProgress, error) {
	participant, err := s.participantRepo.GetByChallengeAndUser(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.progressRepo.ListByParticipant(ctx, participant.ID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []*domain.ChallengeProgress{}
	}
	return history, nil
}

// Standings recomputes and returns the challenge's participants ordered by rank;
// unranked participants follow.
func (s *ChallengeService) Standings(ctx context.Context, challengeID string) ([]*domain.ChallengeParticipant, error) {
	c, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if c.Status.IsTerminal() {
		participants, err := s.participantRepo.ListByChallenge(ctx, challengeID)
		if err != nil {
			return nil, err
		}
		return sortByRank(participants), nil
	}
	return s.rerank(ctx, c)
}

// DropOut withdraws the user. The participant keeps any final rank and is excluded from ranking.
func (s *ChallengeService) DropOut(ctx context.Context, userID, challengeID string) error {
	return s.exclude(ctx, challengeID, userID, domain.ParticipantDroppedOut)
}

// Disqualify excludes a participant from the standings
func (s *ChallengeService) Disqualify(ctx context.Context, challengeID, userID string) error {
	return s.exclude(ctx, challengeID, userID, domain.ParticipantDisqualified)
}

func (s *ChallengeService) exclude(ctx context.Context, challengeID, userID string, status domain.ParticipantStatus) error {
	c, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return err
	}
	if c.Status.IsTerminal() {
		return fmt.Errorf("%w: challenge is %s", domain.ErrInvalidInput, c.Status)
	}
	participant, err := s.participantRepo.GetByChallengeAndUser(ctx, challengeID, userID)
	if err != nil {
		return err
	}
	if !participant.Status.Ranked() {
		return domain.ErrParticipantNotActive
	}
	if err := s.participantRepo.UpdateStatus(ctx, participant.ID, status); err != nil {
		return err
	}
	if err := s.challengeRepo.IncrementParticipants(ctx, challengeID, -1); err != nil {
		fmt.Printf("Warning: failed to decrement participant count for %s: %v\n", challengeID, err)
	}
	_, err = s.rerank(ctx, c)
	return err
}

// AdvanceStatuses applies the date-driven transitions to every scheduled
// challenge as of today and returns how many challenges changed status.
func (s *ChallengeService) AdvanceStatuses(ctx context.Context, today time.Time) (int, error) {
	challenges, err := s.challengeRepo.ListByStatus(ctx,
		domain.ChallengeOpenRegistration, domain.ChallengeRegistrationClosed, domain.ChallengeActive)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, c := range challenges {
		moved := false
		for {
			next, ok := scheduledStatus(*c, today)
			if !ok {
				break
			}
			if err := s.transition(ctx, c, next); err != nil {
				return changed, fmt.Errorf("challenge %s: %w", c.ID, err)
			}
			moved = true
		}
		if moved {
			changed++
		}
	}
	return changed, nil
}

// scheduledStatus is the next status the calendar calls for, if any
func scheduledStatus(c domain.Challenge, today time.Time) (domain.ChallengeStatus, bool) {
	day := engine.DateOf(today)
	switch c.Status {
	case domain.ChallengeOpenRegistration:
		if !engine.IsRegistrationOpen(c, day) {
			return domain.ChallengeRegistrationClosed, true
		}
	case domain.ChallengeRegistrationClosed:
		if !day.Before(c.StartDate) {
			return domain.ChallengeActive, true
		}
	case domain.ChallengeActive:
		if day.After(c.EndDate) {
			return domain.ChallengeCompleted, true
		}
	}
	return "", false
}

// finalize freezes final ranks and marks still-active participants completed
func (s *ChallengeService) finalize(ctx context.Context, c *domain.Challenge) ([]*domain.ChallengeParticipant, error) {
	ranked, err := s.rerank(ctx, c)
	if err != nil {
		return nil, err
	}

	values := make([]domain.ChallengeParticipant, len(ranked))
	for i, p := range ranked {
		values[i] = *p
		if values[i].Status == domain.ParticipantActive {
			values[i].Status = domain.ParticipantCompleted
		}
	}
	final := toPointers(engine.FinalizeRanks(values))
	if err := s.participantRepo.SaveStandings(ctx, final); err != nil {
		return nil, err
	}
	return sortByRank(final), nil
}

// rerank derives completion, target flag and rank for every participant and persists them
func (s *ChallengeService) rerank(ctx context.Context, c *domain.Challenge) ([]*domain.ChallengeParticipant, error) {
	ctx, span := telemetry.StartSpan(ctx, "challenge.rank",
		attribute.String("challenge.id", c.ID),
	)
	defer span.End()

	participants, err := s.participantRepo.ListByChallenge(ctx, c.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	values := make([]domain.ChallengeParticipant, len(participants))
	for i, p := range participants {
		values[i] = *p
	}

	ranked := toPointers(engine.RankParticipants(values, c.TargetValue))
	span.SetAttributes(attribute.Int("challenge.participants", len(ranked)))
	s.metrics.RecordRankingBatch(ctx, "challenge", len(ranked))

	if err := s.participantRepo.SaveStandings(ctx, ranked); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return sortByRank(ranked), nil
}

func toPointers(ps []domain.ChallengeParticipant) []*domain.ChallengeParticipant {
	out := make([]*domain.ChallengeParticipant, len(ps))
	for i := range ps {
		out[i] = &ps[i]
	}
	return out
}

// sortByRank orders by current rank, then final rank, with unranked participants last
func sortByRank(ps []*domain.ChallengeParticipant) []*domain.ChallengeParticipant {
	rankOf := func(p *domain.ChallengeParticipant) int {
		if p.CurrentRank != nil {
			return *p.CurrentRank
		}
		if p.FinalRank != nil {
			return *p.FinalRank
		}
		return int(^uint(0) >> 1)
	}
	sort.SliceStable(ps, func(i, j int) bool { return rankOf(ps[i]) < rankOf(ps[j]) })
	return ps
}
