package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
)

type ProfileService struct {
	profileRepo domain.ProfileRepository
	cache       domain.CacheRepository
	cacheTTL    time.Duration
}

func NewProfileService(profileRepo domain.ProfileRepository, cache domain.CacheRepository, cacheTTL time.Duration) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

// Get returns the user's profile, or an empty one if none was saved yet
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.BodyProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return &domain.BodyProfile{UserID: userID, ActivityLevel: domain.ActivityModeratelyActive, FitnessGoal: domain.GoalMaintenance}, nil
	}
	return profile, err
}

// Update validates and stores the profile, then drops the cached metrics
func (s *ProfileService) Update(ctx context.Context, userID string, profile *domain.BodyProfile) (*domain.BodyProfile, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	profile.UserID = userID
	if profile.ActivityLevel == "" {
		profile.ActivityLevel = domain.ActivityModeratelyActive
	}
	if profile.FitnessGoal == "" {
		profile.FitnessGoal = domain.GoalMaintenance
	}
	profile.UpdatedAt = time.Now()

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateProfileMetrics(ctx, userID); err != nil {
			fmt.Printf("Warning: failed to invalidate profile metrics cache: %v\n", err)
		}
	}
	return profile, nil
}

// GetMetrics returns the derived BMI/BMR/TDEE view. It is computed from the
// live profile on every miss and never stored outside the cache.
func (s *ProfileService) GetMetrics(ctx context.Context, userID string) (*domain.ProfileMetrics, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetProfileMetrics(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics := engine.ProfileMetrics(*profile)

	if s.cache != nil {
		if err := s.cache.SetProfileMetrics(ctx, userID, &metrics, s.cacheTTL); err != nil {
			fmt.Printf("Warning: failed to cache profile metrics: %v\n", err)
		}
	}
	return &metrics, nil
}

// bodyWeight returns the profile weight, or nil when the user has no profile
func (s *ProfileService) bodyWeight(ctx context.Context, userID string) (*float64, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile.WeightKg, nil
}

func validateProfile(p *domain.BodyProfile) error {
	if p.Age != nil && (*p.Age <= 0 || *p.Age > 130) {
		return fmt.Errorf("%w: age must be between 1 and 130", domain.ErrInvalidInput)
	}
	if p.HeightCm != nil && *p.HeightCm <= 0 {
		return fmt.Errorf("%w: height must be positive", domain.ErrInvalidInput)
	}
	if p.WeightKg != nil && *p.WeightKg <= 0 {
		return fmt.Errorf("%w: weight must be positive", domain.ErrInvalidInput)
	}
	switch p.Sex {
	case "", domain.SexMale, domain.SexFemale, domain.SexOther, domain.SexUnspecified:
	default:
		return fmt.Errorf("%w: unknown sex %q", domain.ErrInvalidInput, p.Sex)
	}
	switch p.ActivityLevel {
	case "", domain.ActivitySedentary, domain.ActivityLightlyActive, domain.ActivityModeratelyActive,
		domain.ActivityVeryActive, domain.ActivityExtraActive:
	default:
		return fmt.Errorf("%w: unknown activity level %q", domain.ErrInvalidInput, p.ActivityLevel)
	}
	switch p.FitnessGoal {
	case "", domain.GoalWeightLoss, domain.GoalWeightGain, domain.GoalMuscleGain,
		domain.GoalMaintenance, domain.GoalEndurance, domain.GoalStrength:
	default:
		return fmt.Errorf("%w: unknown fitness goal %q", domain.ErrInvalidInput, p.FitnessGoal)
	}
	return nil
}
