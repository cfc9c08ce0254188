package service

import (
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/fitbit"
	"alcyxob/runlog/internal/repository"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr[T any](v T) *T { return &v }

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

type fakeWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]domain.Workout
	lastList domain.WorkoutFilter
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: map[primitive.ObjectID]domain.Workout{}}
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.FitbitLogID != "" {
		for _, existing := range r.workouts {
			if existing.UserID == w.UserID && existing.FitbitLogID == w.FitbitLogID {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	w.ID = primitive.NewObjectID()
	r.workouts[w.ID] = *w
	return w.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workouts[id]; ok {
		return &w, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, f domain.WorkoutFilter) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = f
	out := []domain.Workout{}
	for _, w := range r.workouts {
		if w.UserID != userID ||
			(f.Modality != "" && w.Modality != f.Modality) ||
			(f.WorkoutType != "" && w.WorkoutType != f.WorkoutType) ||
			(f.From != nil && w.StartTime.Before(*f.From)) ||
			(f.To != nil && !w.StartTime.Before(*f.To)) {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Descending {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *fakeWorkoutRepo) FitbitLogIDs(ctx context.Context, userID primitive.ObjectID, logIDs []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range logIDs {
		wanted[id] = true
	}
	found := map[string]bool{}
	for _, w := range r.workouts {
		if w.UserID == userID && wanted[w.FitbitLogID] {
			found[w.FitbitLogID] = true
		}
	}
	return found, nil
}

func (r *fakeWorkoutRepo) CountOwned(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if w, ok := r.workouts[id]; ok && w.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workouts[id]; ok && w.UserID == userID {
		delete(r.workouts, id)
		return nil
	}
	return repository.ErrNotFound
}

func (r *fakeWorkoutRepo) DeleteMany(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if w, ok := r.workouts[id]; ok && w.UserID == userID {
			delete(r.workouts, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeWorkoutRepo) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, w := range r.workouts {
		if w.UserID == userID {
			delete(r.workouts, id)
			n++
		}
	}
	return n, nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[primitive.ObjectID]domain.FitbitAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[primitive.ObjectID]domain.FitbitAccount{}}
}

func (r *fakeAccountRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.FitbitAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[userID]; ok {
		return &a, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) Upsert(ctx context.Context, account *domain.FitbitAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.UserID] = *account
	return nil
}

func (r *fakeAccountRepo) UpdateToken(ctx context.Context, userID primitive.ObjectID, token domain.FitbitToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return repository.ErrNotFound
	}
	a.Token = token
	r.accounts[userID] = a
	return nil
}

func (r *fakeAccountRepo) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.accounts, userID)
	return nil
}

type fakeExportRepo struct {
	exports []domain.Export
}

func (r *fakeExportRepo) Create(ctx context.Context, export *domain.Export) (primitive.ObjectID, error) {
	export.ID = primitive.NewObjectID()
	export.CreatedAt = time.Now().UTC()
	r.exports = append(r.exports, *export)
	return export.ID, nil
}

func (r *fakeExportRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Export, error) {
	for i := range r.exports {
		if r.exports[i].ID == id {
			e := r.exports[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeExportRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	for i, e := range r.exports {
		if e.ID == id && e.UserID == userID {
			r.exports = append(r.exports[:i], r.exports[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeExportRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Export, error) {
	out := []domain.Export{}
	for i := len(r.exports) - 1; i >= 0; i-- {
		if r.exports[i].UserID == userID {
			out = append(out, r.exports[i])
		}
	}
	return out, nil
}

type fakeStorage struct {
	objects map[string][]byte
	putErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type fakeFitbitClient struct {
	grant      *fitbit.Grant
	exchErr    error
	refreshed  domain.FitbitToken
	refreshErr error
	refreshes  int
	revokeErr  error
	revoked    []string
	activities []domain.Activity
	listErr    error
	lastToken  string
	lastParams fitbit.ListParams
}

func (c *fakeFitbitClient) AuthCodeURL(state string) string {
	return "https://www.fitbit.com/oauth2/authorize?state=" + state
}

func (c *fakeFitbitClient) Exchange(ctx context.Context, code string) (*fitbit.Grant, error) {
	return c.grant, c.exchErr
}

func (c *fakeFitbitClient) Refresh(ctx context.Context, token domain.FitbitToken) (domain.FitbitToken, error) {
	c.refreshes++
	return c.refreshed, c.refreshErr
}

func (c *fakeFitbitClient) Revoke(ctx context.Context, token domain.FitbitToken) error {
	c.revoked = append(c.revoked, token.AccessToken)
	return c.revokeErr
}

func (c *fakeFitbitClient) ListActivities(ctx context.Context, accessToken string, params fitbit.ListParams) ([]domain.Activity, error) {
	c.lastToken = accessToken
	c.lastParams = params
	return c.activities, c.listErr
}
