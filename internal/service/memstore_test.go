package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/reelscore-server/internal/model"
)

// In-memory adapters with the same atomicity guarantees as the real ones.

type memUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]model.User
	clock func() time.Time
	// cascade runs after a user is deleted.
	cascade func(userID uuid.UUID)
}

func newMemUsers(clock func() time.Time) *memUsers {
	return &memUsers{byID: make(map[uuid.UUID]model.User), clock: clock}
}

func (m *memUsers) find(pred func(model.User) bool) (model.User, bool) {
	for _, u := range m.byID {
		if pred(u) {
			return u, true
		}
	}
	return model.User{}, false
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.find(func(u model.User) bool { return u.Username == username }); ok {
		return u, nil
	}
	return model.User{}, model.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return model.User{}, model.ErrNotFound
}

func (m *memUsers) conflicts(username, email string) []string {
	var fields []string
	if _, ok := m.find(func(u model.User) bool { return u.Username == username }); ok {
		fields = append(fields, model.FieldUsername)
	}
	if _, ok := m.find(func(u model.User) bool { return u.Email == email }); ok {
		fields = append(fields, model.FieldEmail)
	}
	return fields
}

func (m *memUsers) FindConflicts(_ context.Context, username, email string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conflicts(username, email), nil
}

func (m *memUsers) Create(_ context.Context, params model.NewUser) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fields := m.conflicts(params.Username, params.Email); len(fields) > 0 {
		return model.User{}, &model.ConflictError{Fields: fields}
	}
	now := m.clock()
	u := model.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) SetVerified(_ context.Context, id uuid.UUID) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	u.Verified = true
	u.UpdatedAt = m.clock()
	m.byID[id] = u
	return u, nil
}

func (m *memUsers) UpdateFields(_ context.Context, username string, patch model.UserPatch) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.find(func(u model.User) bool { return u.Username == username })
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	if patch.Email != nil {
		if other, taken := m.find(func(o model.User) bool { return o.Email == *patch.Email }); taken && other.ID != u.ID {
			return model.User{}, &model.ConflictError{Fields: []string{model.FieldEmail}}
		}
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) DeleteUnverifiedBefore(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, u := range m.byID {
		if !u.Verified && u.CreatedAt.Before(before) {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

// DeleteByUsername also drops the user's sessions, like the foreign key cascade.
func (m *memUsers) DeleteByUsername(_ context.Context, username string) error {
	m.mu.Lock()
	u, ok := m.find(func(u model.User) bool { return u.Username == username })
	if ok {
		delete(m.byID, u.ID)
	}
	cascade := m.cascade
	m.mu.Unlock()
	if !ok {
		return model.ErrNotFound
	}
	if cascade != nil {
		cascade(u.ID)
	}
	return nil
}

type memTokens struct {
	mu      sync.Mutex
	byValue map[string]model.RefreshToken
}

func newMemTokens() *memTokens {
	return &memTokens{byValue: make(map[string]model.RefreshToken)}
}

func (m *memTokens) Create(_ context.Context, token model.RefreshToken) (model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = uuid.New()
	m.byValue[token.Token] = token
	return token, nil
}

func (m *memTokens) GetByToken(_ context.Context, token string) (model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rt, ok := m.byValue[token]; ok {
		return rt, nil
	}
	return model.RefreshToken{}, model.ErrNotFound
}

func (m *memTokens) Rotate(_ context.Context, oldToken, newToken string, newExpiresAt time.Time) (model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.byValue[oldToken]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	delete(m.byValue, oldToken)
	rt.Token = newToken
	rt.ExpiresAt = newExpiresAt
	m.byValue[newToken] = rt
	return rt, nil
}

func (m *memTokens) DeleteAllByToken(_ context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byValue[token]; !ok {
		return 0, nil
	}
	delete(m.byValue, token)
	return 1, nil
}

func (m *memTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for v, rt := range m.byValue {
		if rt.Expired(now) {
			delete(m.byValue, v)
			n++
		}
	}
	return n, nil
}

func (m *memTokens) deleteForUser(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for v, rt := range m.byValue {
		if rt.UserID == userID {
			delete(m.byValue, v)
		}
	}
}

func (m *memTokens) expire(token string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt := m.byValue[token]
	rt.ExpiresAt = at
	m.byValue[token] = rt
}

func (m *memTokens) rowsFor(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rt := range m.byValue {
		if rt.UserID == userID {
			n++
		}
	}
	return n
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (m *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", model.ErrNotFound
}

func (m *memCache) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	delete(m.data, key)
	return ok, nil
}

type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []model.ConfirmationJob
}

func (r *recordingDispatcher) Enqueue(_ context.Context, jobName string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := payload.(model.ConfirmationJob); ok && jobName == model.JobConfirmation {
		r.jobs = append(r.jobs, job)
	}
	return nil
}
