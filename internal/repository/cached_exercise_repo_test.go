package repository

import (
	"context"
	"testing"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExerciseStore struct {
	exercises map[string]*domain.Exercise
	gets      int
	lists     int
}

func (s *countingExerciseStore) Create(ctx context.Context, ex *domain.Exercise) error {
	ex.ID = "ex-" + ex.Name
	cp := *ex
	s.exercises[ex.ID] = &cp
	return nil
}

func (s *countingExerciseStore) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	s.gets++
	ex, ok := s.exercises[id]
	if !ok {
		return nil, domain.ErrExerciseNotFound
	}
	cp := *ex
	return &cp, nil
}

func (s *countingExerciseStore) List(ctx context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	s.lists++
	var out []*domain.Exercise
	for _, ex := range s.exercises {
		cp := *ex
		out = append(out, &cp)
	}
	return out, nil
}

func (s *countingExerciseStore) Update(ctx context.Context, ex *domain.Exercise) error {
	cp := *ex
	s.exercises[ex.ID] = &cp
	return nil
}

func (s *countingExerciseStore) Delete(ctx context.Context, id string) error {
	delete(s.exercises, id)
	return nil
}

func TestCachedExerciseRepository(t *testing.T) {
	_, cache := setupRedis(t)
	store := &countingExerciseStore{exercises: map[string]*domain.Exercise{}}
	repo := NewCachedExerciseRepository(store, cache)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Exercise{Name: "Rowing", METValue: 7}))

	for i := 0; i < 3; i++ {
		ex, err := repo.GetByID(ctx, "ex-Rowing")
		require.NoError(t, err)
		assert.Equal(t, 7.0, ex.METValue)
	}
	assert.Equal(t, 1, store.gets, "repeat reads come from the cache")

	_, err := repo.List(ctx, map[string]interface{}{})
	require.NoError(t, err)
	_, err = repo.List(ctx, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists)

	_, err = repo.List(ctx, map[string]interface{}{"name": "row"})
	require.NoError(t, err)
	assert.Equal(t, 2, store.lists, "name searches bypass the cache")

	require.NoError(t, repo.Update(ctx, &domain.Exercise{ID: "ex-Rowing", Name: "Rowing", METValue: 8.5}))
	ex, err := repo.GetByID(ctx, "ex-Rowing")
	require.NoError(t, err)
	assert.Equal(t, 8.5, ex.METValue)
	assert.Equal(t, 2, store.gets)

	_, err = repo.List(ctx, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 3, store.lists, "writes invalidate listings")

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
}
