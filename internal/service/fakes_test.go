package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
)

// In-memory repositories shared by the service tests

type idGen struct {
	mu sync.Mutex
	n  int
}

func (g *idGen) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%024x", g.n)
}

var ids = &idGen{}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.BodyProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*domain.BodyProfile{}}
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.BodyProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, profile *domain.BodyProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

type fakeExerciseRepo struct {
	exercises map[string]*domain.Exercise
}

func newFakeExerciseRepo(exs ...*domain.Exercise) *fakeExerciseRepo {
	r := &fakeExerciseRepo{exercises: map[string]*domain.Exercise{}}
	for _, e := range exs {
		r.exercises[e.ID] = e
	}
	return r
}

func (r *fakeExerciseRepo) Create(ctx context.Context, e *domain.Exercise) error {
	e.ID = ids.next()
	r.exercises[e.ID] = e
	return nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	e, ok := r.exercises[id]
	if !ok {
		return nil, domain.ErrExerciseNotFound
	}
	return e, nil
}

func (r *fakeExerciseRepo) List(ctx context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	var out []*domain.Exercise
	for _, e := range r.exercises {
		if c, ok := filter["category"].(string); ok && c != e.Category {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, e *domain.Exercise) error {
	r.exercises[e.ID] = e
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, id string) error {
	delete(r.exercises, id)
	return nil
}

type fakeWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[string]*domain.Workout
	// datesCalls records the since argument of every CompletedDates call
	datesCalls []time.Time
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: map[string]*domain.Workout{}}
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, w *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = ids.next()
	cp := *w
	r.workouts[w.ID] = &cp
	return nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, domain.ErrWorkoutNotFound
	}
	cp := *w
	cp.Exercises = make([]*domain.WorkoutExercise, len(w.Exercises))
	for i, e := range w.Exercises {
		ec := *e
		cp.Exercises[i] = &ec
	}
	return &cp, nil
}

func (r *fakeWorkoutRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Workout
	for _, w := range r.workouts {
		if w.UserID == userID && !w.Date.Before(from) && !w.Date.After(to) {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeWorkoutRepo) SaveExercises(ctx context.Context, w *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.workouts[w.ID]
	if !ok {
		return domain.ErrWorkoutNotFound
	}
	stored.Exercises = make([]*domain.WorkoutExercise, len(w.Exercises))
	for i, e := range w.Exercises {
		ec := *e
		stored.Exercises[i] = &ec
	}
	stored.WorkoutAggregate = w.WorkoutAggregate
	return nil
}

func (r *fakeWorkoutRepo) UpdateStatus(ctx context.Context, id string, status domain.WorkoutStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return domain.ErrWorkoutNotFound
	}
	w.Status = status
	return nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workouts, id)
	return nil
}

func (r *fakeWorkoutRepo) CompletedDates(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datesCalls = append(r.datesCalls, since)
	seen := map[time.Time]bool{}
	var out []time.Time
	for _, w := range r.workouts {
		if w.UserID == userID && w.Status == domain.WorkoutCompleted && !w.Date.Before(since) && !seen[w.Date] {
			seen[w.Date] = true
			out = append(out, w.Date)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Workout
	for _, w := range r.workouts {
		if w.Status == domain.WorkoutCompleted && !w.Date.Before(from) && !w.Date.After(to) {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

type fakeFoodRepo struct {
	foods map[string]*domain.Food
}

func newFakeFoodRepo() *fakeFoodRepo { return &fakeFoodRepo{foods: map[string]*domain.Food{}} }

func (r *fakeFoodRepo) Create(ctx context.Context, f *domain.Food) error {
	f.ID = ids.next()
	cp := *f
	r.foods[f.ID] = &cp
	return nil
}

func (r *fakeFoodRepo) GetByID(ctx context.Context, id string) (*domain.Food, error) {
	f, ok := r.foods[id]
	if !ok {
		return nil, domain.ErrFoodNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFoodRepo) GetByIDs(ctx context.Context, idList []string) (map[string]*domain.Food, error) {
	out := map[string]*domain.Food{}
	for _, id := range idList {
		if f, ok := r.foods[id]; ok {
			cp := *f
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakeFoodRepo) Search(ctx context.Context, query string, limit int) ([]*domain.Food, error) {
	var out []*domain.Food
	for _, f := range r.foods {
		if strings.Contains(strings.ToLower(f.Name), strings.ToLower(query)) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFoodRepo) Update(ctx context.Context, f *domain.Food) error {
	cp := *f
	r.foods[f.ID] = &cp
	return nil
}

func (r *fakeFoodRepo) Delete(ctx context.Context, id string) error {
	delete(r.foods, id)
	return nil
}

type fakeRecipeRepo struct {
	recipes map[string]*domain.Recipe
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: map[string]*domain.Recipe{}}
}

func copyRecipe(r *domain.Recipe) *domain.Recipe {
	cp := *r
	cp.Ingredients = append([]domain.RecipeIngredient(nil), r.Ingredients...)
	return &cp
}

func (r *fakeRecipeRepo) Create(ctx context.Context, rec *domain.Recipe) error {
	rec.ID = ids.next()
	r.recipes[rec.ID] = copyRecipe(rec)
	return nil
}

func (r *fakeRecipeRepo) GetByID(ctx context.Context, id string) (*domain.Recipe, error) {
	rec, ok := r.recipes[id]
	if !ok {
		return nil, domain.ErrRecipeNotFound
	}
	return copyRecipe(rec), nil
}

func (r *fakeRecipeRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Recipe, error) {
	var out []*domain.Recipe
	for _, rec := range r.recipes {
		if rec.UserID == userID {
			out = append(out, copyRecipe(rec))
		}
	}
	return out, nil
}

func (r *fakeRecipeRepo) SaveIngredients(ctx context.Context, rec *domain.Recipe) error {
	r.recipes[rec.ID] = copyRecipe(rec)
	return nil
}

func (r *fakeRecipeRepo) ListByFood(ctx context.Context, foodID string) ([]*domain.Recipe, error) {
	var out []*domain.Recipe
	for _, rec := range r.recipes {
		for _, ing := range rec.Ingredients {
			if ing.FoodID == foodID {
				out = append(out, copyRecipe(rec))
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRecipeRepo) Delete(ctx context.Context, id string) error {
	delete(r.recipes, id)
	return nil
}

type fakeMealRepo struct {
	mu    sync.Mutex
	meals map[string]*domain.MealEntry
}

func newFakeMealRepo() *fakeMealRepo { return &fakeMealRepo{meals: map[string]*domain.MealEntry{}} }

func (r *fakeMealRepo) Create(ctx context.Context, e *domain.MealEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meals {
		if m.ClientID == e.ClientID {
			return fmt.Errorf("duplicate client_id %s", e.ClientID)
		}
	}
	e.ID = ids.next()
	cp := *e
	r.meals[e.ID] = &cp
	return nil
}

func (r *fakeMealRepo) GetByID(ctx context.Context, id string) (*domain.MealEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meals[id]
	if !ok {
		return nil, domain.ErrMealEntryNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMealRepo) GetByClientID(ctx context.Context, clientID string) (*domain.MealEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meals {
		if m.ClientID == clientID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrMealEntryNotFound
}

func (r *fakeMealRepo) ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]*domain.MealEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.MealEntry
	for _, m := range r.meals {
		if m.UserID == userID && m.Date.Equal(date) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMealRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.meals, id)
	return nil
}

type fakeWaterRepo struct {
	mu     sync.Mutex
	intake map[string]*domain.WaterIntake
}

func newFakeWaterRepo() *fakeWaterRepo {
	return &fakeWaterRepo{intake: map[string]*domain.WaterIntake{}}
}

func waterKey(userID string, date time.Time) string { return userID + date.Format(time.DateOnly) }

func (r *fakeWaterRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*domain.WaterIntake, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.intake[waterKey(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWaterRepo) AddAmount(ctx context.Context, userID string, date time.Time, amountMl, goalMl int) (*domain.WaterIntake, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.intake[waterKey(userID, date)]
	if !ok {
		w = &domain.WaterIntake{UserID: userID, Date: date, DailyGoalMl: goalMl}
		r.intake[waterKey(userID, date)] = w
	}
	w.AmountMl += amountMl
	cp := *w
	return &cp, nil
}

type fakeNutritionGoalRepo struct {
	mu    sync.Mutex
	goals map[string]*domain.NutritionGoal
}

func newFakeNutritionGoalRepo() *fakeNutritionGoalRepo {
	return &fakeNutritionGoalRepo{goals: map[string]*domain.NutritionGoal{}}
}

func (r *fakeNutritionGoalRepo) GetByUserID(ctx context.Context, userID string) (*domain.NutritionGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[userID]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (r *fakeNutritionGoalRepo) Upsert(ctx context.Context, g *domain.NutritionGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.goals[g.UserID] = &cp
	return nil
}

type fakeGoalRepo struct {
	mu       sync.Mutex
	goals    map[string]*domain.Goal
	progress map[string]*domain.GoalProgress
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: map[string]*domain.Goal{}, progress: map[string]*domain.GoalProgress{}}
}

func (r *fakeGoalRepo) Create(ctx context.Context, g *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.ID = ids.next()
	cp := *g
	r.goals[g.ID] = &cp
	return nil
}

func (r *fakeGoalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGoalRepo) ListByUser(ctx context.Context, userID string, status domain.GoalStatus) ([]*domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Goal
	for _, g := range r.goals {
		if g.UserID == userID && (status == "" || g.Status == status) {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeGoalRepo) UpdateProgress(ctx context.Context, id string, current float64, status domain.GoalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals[id].CurrentValue = current
	r.goals[id].Status = status
	return nil
}

func (r *fakeGoalRepo) UpdateStatus(ctx context.Context, id string, status domain.GoalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals[id].Status = status
	return nil
}

func (r *fakeGoalRepo) UpsertProgressEntry(ctx context.Context, e *domain.GoalProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.progress[e.GoalID+e.Date.Format(time.DateOnly)] = &cp
	return nil
}

type fakeChallengeRepo struct {
	challenges map[string]*domain.Challenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{challenges: map[string]*domain.Challenge{}}
}

func (r *fakeChallengeRepo) Create(ctx context.Context, c *domain.Challenge) error {
	c.ID = ids.next()
	cp := *c
	r.challenges[c.ID] = &cp
	return nil
}

func (r *fakeChallengeRepo) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	c, ok := r.challenges[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeChallengeRepo) ListByStatus(ctx context.Context, statuses ...domain.ChallengeStatus) ([]*domain.Challenge, error) {
	var out []*domain.Challenge
	for _, c := range r.challenges {
		for _, s := range statuses {
			if c.Status == s {
				cp := *c
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeChallengeRepo) UpdateStatus(ctx context.Context, id string, status domain.ChallengeStatus) error {
	r.challenges[id].Status = status
	return nil
}

func (r *fakeChallengeRepo) IncrementParticipants(ctx context.Context, id string, delta int) error {
	r.challenges[id].TotalParticipants += delta
	return nil
}

type fakeParticipantRepo struct {
	participants map[string]*domain.ChallengeParticipant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: map[string]*domain.ChallengeParticipant{}}
}

func (r *fakeParticipantRepo) Create(ctx context.Context, p *domain.ChallengeParticipant) error {
	for _, existing := range r.participants {
		if existing.ChallengeID == p.ChallengeID && existing.UserID == p.UserID {
			return domain.ErrAlreadyJoined
		}
	}
	p.ID = ids.next()
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeParticipantRepo) GetByID(ctx context.Context, id string) (*domain.ChallengeParticipant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) GetByChallengeAndUser(ctx context.Context, challengeID, userID string) (*domain.ChallengeParticipant, error) {
	for _, p := range r.participants {
		if p.ChallengeID == challengeID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByChallenge(ctx context.Context, challengeID string) ([]*domain.ChallengeParticipant, error) {
	var out []*domain.ChallengeParticipant
	for _, p := range r.participants {
		if p.ChallengeID == challengeID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipantRepo) UpdateValue(ctx context.Context, id string, v float64) error {
	r.participants[id].CurrentValue = v
	return nil
}

func (r *fakeParticipantRepo) UpdateStatus(ctx context.Context, id string, s domain.ParticipantStatus) error {
	r.participants[id].Status = s
	return nil
}

func (r *fakeParticipantRepo) SaveStandings(ctx context.Context, ps []*domain.ChallengeParticipant) error {
	for _, p := range ps {
		stored := r.participants[p.ID]
		stored.CompletionPercentage = p.CompletionPercentage
		stored.TargetReached = p.TargetReached
		stored.CurrentRank = p.CurrentRank
		stored.FinalRank = p.FinalRank
		stored.Status = p.Status
	}
	return nil
}

type fakeChallengeProgressRepo struct {
	samples map[string]*domain.ChallengeProgress
}

func newFakeChallengeProgressRepo() *fakeChallengeProgressRepo {
	return &fakeChallengeProgressRepo{samples: map[string]*domain.ChallengeProgress{}}
}

func (r *fakeChallengeProgressRepo) Upsert(ctx context.Context, p *domain.ChallengeProgress) error {
	key := p.ParticipantID + p.Date.Format(time.DateOnly)
	cp := *p
	r.samples[key] = &cp
	return nil
}

func (r *fakeChallengeProgressRepo) ListByParticipant(ctx context.Context, participantID string) ([]*domain.ChallengeProgress, error) {
	var out []*domain.ChallengeProgress
	for _, p := range r.samples {
		if p.ParticipantID == participantID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type fakeSequenceRepo struct {
	mu  sync.Mutex
	seq map[string]int64
}

func (r *fakeSequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq == nil {
		r.seq = map[string]int64{}
	}
	r.seq[name]++
	return r.seq[name], nil
}

type fakeLeaderboardRepo struct {
	boards  map[string]*domain.Leaderboard
	entries map[string][]domain.LeaderboardEntry
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{boards: map[string]*domain.Leaderboard{}, entries: map[string][]domain.LeaderboardEntry{}}
}

func (r *fakeLeaderboardRepo) Create(ctx context.Context, lb *domain.Leaderboard) error {
	lb.ID = ids.next()
	cp := *lb
	r.boards[lb.ID] = &cp
	return nil
}

func (r *fakeLeaderboardRepo) GetByID(ctx context.Context, id string) (*domain.Leaderboard, error) {
	lb, ok := r.boards[id]
	if !ok {
		return nil, domain.ErrLeaderboardNotFound
	}
	cp := *lb
	return &cp, nil
}

func (r *fakeLeaderboardRepo) ListActive(ctx context.Context) ([]*domain.Leaderboard, error) {
	var out []*domain.Leaderboard
	for _, lb := range r.boards {
		if lb.IsActive {
			cp := *lb
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLeaderboardRepo) ReplaceEntries(ctx context.Context, id string, start time.Time, entries []domain.LeaderboardEntry) error {
	r.entries[id+start.Format(time.DateOnly)] = append([]domain.LeaderboardEntry(nil), entries...)
	return nil
}

func (r *fakeLeaderboardRepo) GetEntries(ctx context.Context, id string, start time.Time) ([]domain.LeaderboardEntry, error) {
	return r.entries[id+start.Format(time.DateOnly)], nil
}

type fakeArchive struct {
	keys []string
}

func (a *fakeArchive) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	a.keys = append(a.keys, key)
	return "http://archive.local/" + key, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
