package repository

import (
	"context"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
)

const (
	exerciseByIDKeyPrefix = "exercise:id:"
	exerciseListKeyPrefix = "exercise:list:"
	exerciseCacheTTL      = 30 * time.Minute
)

// CachedExerciseRepository wraps an exercise store with Redis caching.
// The library is read on every logged entry and changes only through admin writes.
type CachedExerciseRepository struct {
	store domain.ExerciseRepository
	cache *RedisCacheRepository
}

// NewCachedExerciseRepository creates a new cached exercise repository
func NewCachedExerciseRepository(store domain.ExerciseRepository, cache *RedisCacheRepository) *CachedExerciseRepository {
	return &CachedExerciseRepository{
		store: store,
		cache: cache,
	}
}

// GetByID retrieves an exercise with caching
func (r *CachedExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	key := exerciseByIDKeyPrefix + id

	// Try cache first
	var exercise domain.Exercise
	if err := r.cache.Get(ctx, key, &exercise); err == nil {
		return &exercise, nil
	}

	result, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, result, exerciseCacheTTL)
	return result, nil
}

// List caches the category-only listings; name searches go straight to the store
func (r *CachedExerciseRepository) List(ctx context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	if name, _ := filter["name"].(string); name != "" {
		return r.store.List(ctx, filter)
	}
	category, _ := filter["category"].(string)
	key := exerciseListKeyPrefix + category

	var exercises []*domain.Exercise
	if err := r.cache.Get(ctx, key, &exercises); err == nil {
		return exercises, nil
	}

	result, err := r.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, key, result, exerciseCacheTTL)
	return result, nil
}

// Create creates an exercise and invalidates the cached listings
func (r *CachedExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	if err := r.store.Create(ctx, exercise); err != nil {
		return err
	}
	_ = r.cache.DeleteByPattern(ctx, exerciseListKeyPrefix+"*")
	return nil
}

// Update changes an exercise. Entries already logged keep their own MET copy.
func (r *CachedExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if err := r.store.Update(ctx, exercise); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, exerciseByIDKeyPrefix+exercise.ID)
	_ = r.cache.DeleteByPattern(ctx, exerciseListKeyPrefix+"*")
	return nil
}

func (r *CachedExerciseRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, exerciseByIDKeyPrefix+id)
	_ = r.cache.DeleteByPattern(ctx, exerciseListKeyPrefix+"*")
	return nil
}
