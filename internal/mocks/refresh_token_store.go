package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/reelscore-server/internal/model"
)

// RefreshTokenStore is a mock type for the model.RefreshTokenStore type.
type RefreshTokenStore struct {
	mock.Mock
}

func (_m *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) (model.RefreshToken, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(model.RefreshToken), ret.Error(1)
}

func (_m *RefreshTokenStore) GetByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(model.RefreshToken), ret.Error(1)
}

func (_m *RefreshTokenStore) Rotate(ctx context.Context, oldToken string, newToken string, newExpiresAt time.Time) (model.RefreshToken, error) {
	ret := _m.Called(ctx, oldToken, newToken, newExpiresAt)
	return ret.Get(0).(model.RefreshToken), ret.Error(1)
}

func (_m *RefreshTokenStore) DeleteAllByToken(ctx context.Context, token string) (int64, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *RefreshTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ret := _m.Called(ctx, now)
	return ret.Get(0).(int64), ret.Error(1)
}

// NewRefreshTokenStore creates a new instance of RefreshTokenStore. It also
// registers a cleanup function to assert the mocks expectations.
func NewRefreshTokenStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *RefreshTokenStore {
	m := &RefreshTokenStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
