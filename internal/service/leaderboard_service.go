package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
	"github.com/mansoorceksport/fitledger/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type LeaderboardService struct {
	leaderboardRepo   domain.LeaderboardRepository
	workoutRepo       domain.WorkoutRepository
	participantRepo   domain.ParticipantRepository
	cache             domain.CacheRepository
	archive           domain.ArchiveRepository
	cacheTTL          time.Duration
	defaultMaxEntries int
	metrics           *telemetry.Metrics
	now               func() time.Time
}

func NewLeaderboardService(
	leaderboardRepo domain.LeaderboardRepository,
	workoutRepo domain.WorkoutRepository,
	participantRepo domain.ParticipantRepository,
	cache domain.CacheRepository,
	archive domain.ArchiveRepository,
	cacheTTL time.Duration,
	defaultMaxEntries int,
	metrics *telemetry.Metrics,
) *LeaderboardService {
	return &LeaderboardService{
		leaderboardRepo:   leaderboardRepo,
		workoutRepo:       workoutRepo,
		participantRepo:   participantRepo,
		cache:             cache,
		archive:           archive,
		cacheTTL:          cacheTTL,
		defaultMaxEntries: defaultMaxEntries,
		metrics:           metrics,
		now:               time.Now,
	}
}

func (s *LeaderboardService) Create(ctx context.Context, lb *domain.Leaderboard) (*domain.Leaderboard, error) {
	lb.Name = strings.TrimSpace(lb.Name)
	if lb.Name == "" {
		return nil, fmt.Errorf("%w: leaderboard name is required", domain.ErrInvalidInput)
	}
	switch lb.LeaderboardType {
	case domain.LeaderboardGlobalCalories, domain.LeaderboardGlobalWorkouts,
		domain.LeaderboardWeeklyActive, domain.LeaderboardMonthlyConsistent:
	case domain.LeaderboardChallenge:
		if lb.ChallengeID == "" {
			return nil, fmt.Errorf("%w: challenge leaderboard needs a challenge_id", domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: unknown leaderboard type %q", domain.ErrInvalidInput, lb.LeaderboardType)
	}
	if _, _, err := engine.PeriodBounds(lb.TimePeriod, s.now()); err != nil {
		return nil, err
	}
	if lb.MaxEntries == 0 {
		lb.MaxEntries = s.defaultMaxEntries
	}

	lb.ID = ""
	lb.IsActive = true
	if err := s.leaderboardRepo.Create(ctx, lb); err != nil {
		return nil, fmt.Errorf("failed to create leaderboard: %w", err)
	}
	return lb, nil
}

func (s *LeaderboardService) ListActive(ctx context.Context) ([]*domain.Leaderboard, error) {
	boards, err := s.leaderboardRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []*domain.Leaderboard{}
	}
	return boards, nil
}

// Get returns the period of the leaderboard containing asOf, from cache when published recently
func (s *LeaderboardService) Get(ctx context.Context, id string, asOf time.Time) (*domain.LeaderboardPage, error) {
	lb, err := s.leaderboardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	start, end, err := engine.PeriodBounds(lb.TimePeriod, asOf)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, err := s.cache.GetLeaderboardPage(ctx, id, start); err == nil && cached != nil {
			return cached, nil
		}
	}

	entries, err := s.leaderboardRepo.GetEntries(ctx, id, start)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	page := &domain.LeaderboardPage{Leaderboard: lb, PeriodStart: start, PeriodEnd: end, Entries: entries}

	if s.cache != nil && len(entries) > 0 {
		if err := s.cache.SetLeaderboardPage(ctx, page, s.cacheTTL); err != nil {
			fmt.Printf("Warning: failed to cache leaderboard page: %v\n", err)
		}
	}
	return page, nil
}

// Publish ranks the period containing asOf, replaces its stored entries,
// archives the page to object storage and refreshes the cache.
func (s *LeaderboardService) Publish(ctx context.Context, id string, asOf time.Time) (*domain.LeaderboardPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "leaderboard.publish", attribute.String("leaderboard.id", id))
	defer span.End()

	lb, err := s.leaderboardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	start, end, err := engine.PeriodBounds(lb.TimePeriod, asOf)
	if err != nil {
		return nil, err
	}

	scores, err := s.scores(ctx, lb, start, end)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to score leaderboard: %w", err)
	}

	entries, err := engine.BuildLeaderboardEntries(lb.ID, scores, start, end, lb.MaxEntries)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("leaderboard.type", string(lb.LeaderboardType)),
		attribute.Int("leaderboard.scored_users", len(scores)),
		attribute.Int("leaderboard.entries", len(entries)),
	)
	s.metrics.RecordRankingBatch(ctx, "leaderboard", len(scores))

	if err := s.leaderboardRepo.ReplaceEntries(ctx, lb.ID, start, entries); err != nil {
		span.RecordError(err)
		return nil, err
	}

	page := &domain.LeaderboardPage{Leaderboard: lb, PeriodStart: start, PeriodEnd: end, Entries: entries}

	if s.archive != nil {
		body, err := json.Marshal(page)
		if err == nil {
			key := fmt.Sprintf("leaderboards/%s/%s/%s.json", lb.ID, start.Format(time.DateOnly), generateULID())
			url, err := s.archive.Put(ctx, key, body, "application/json")
			if err != nil {
				fmt.Printf("Warning: failed to archive leaderboard %s: %v\n", lb.ID, err)
			} else {
				page.ArchiveURL = url
			}
		}
	}

	if s.cache != nil {
		if err := s.cache.SetLeaderboardPage(ctx, page, s.cacheTTL); err != nil {
			fmt.Printf("Warning: failed to cache leaderboard page: %v\n", err)
		}
	}
	return page, nil
}

// PublishActive publishes the current period of every active leaderboard
func (s *LeaderboardService) PublishActive(ctx context.Context, asOf time.Time) (int, error) {
	boards, err := s.leaderboardRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, lb := range boards {
		if _, err := s.Publish(ctx, lb.ID, asOf); err != nil {
			return published, fmt.Errorf("leaderboard %s: %w", lb.ID, err)
		}
		published++
	}
	return published, nil
}

// scores collects one score per user for the period:
//   - global_calories: frozen calories burned in completed workouts
//   - global_workouts: number of completed workouts
//   - weekly_active: minutes of completed workouts
//   - monthly_consistent: distinct days with a completed workout
//   - challenge_specific: the participant's cumulative challenge value
func (s *LeaderboardService) scores(ctx context.Context, lb *domain.Leaderboard, start, end time.Time) ([]domain.UserScore, error) {
	if lb.LeaderboardType == domain.LeaderboardChallenge {
		participants, err := s.participantRepo.ListByChallenge(ctx, lb.ChallengeID)
		if err != nil {
			return nil, err
		}
		scores := make([]domain.UserScore, 0, len(participants))
		for _, p := range participants {
			if !p.Status.Ranked() {
				continue
			}
			scores = append(scores, domain.UserScore{
				UserID:          p.UserID,
				Score:           p.CurrentValue,
				FirstActivityAt: p.JoinedAt,
				Seq:             p.JoinSeq,
			})
		}
		return scores, nil
	}

	workouts, err := s.workoutRepo.ListCompletedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*domain.UserScore)
	days := make(map[string]map[time.Time]struct{})
	var order []string
	for _, w := range workouts {
		sc, ok := byUser[w.UserID]
		if !ok {
			sc = &domain.UserScore{UserID: w.UserID, FirstActivityAt: w.UpdatedAt, Seq: int64(len(order))}
			byUser[w.UserID] = sc
			days[w.UserID] = make(map[time.Time]struct{})
			order = append(order, w.UserID)
		}

		switch lb.LeaderboardType {
		case domain.LeaderboardGlobalCalories:
			sc.Score += float64(w.TotalCaloriesBurned)
		case domain.LeaderboardGlobalWorkouts:
			sc.Score++
		case domain.LeaderboardWeeklyActive:
			sc.Score += float64(w.TotalDurationMinutes)
		case domain.LeaderboardMonthlyConsistent:
			days[w.UserID][engine.DateOf(w.Date)] = struct{}{}
			sc.Score = float64(len(days[w.UserID]))
		}
	}

	scores := make([]domain.UserScore, 0, len(order))
	for _, userID := range order {
		scores = append(scores, *byUser[userID])
	}
	return scores, nil
}
