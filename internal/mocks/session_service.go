package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/reelscore-server/internal/model"
)

// SessionService is a mock type for the handler.SessionService type.
type SessionService struct {
	mock.Mock
}

func (_m *SessionService) Register(ctx context.Context, username string, email string, password string) (model.TokenPair, error) {
	ret := _m.Called(ctx, username, email, password)
	return ret.Get(0).(model.TokenPair), ret.Error(1)
}

func (_m *SessionService) Login(ctx context.Context, username string, password string) (model.TokenPair, error) {
	ret := _m.Called(ctx, username, password)
	return ret.Get(0).(model.TokenPair), ret.Error(1)
}

func (_m *SessionService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	ret := _m.Called(ctx, refreshToken)
	return ret.Get(0).(model.TokenPair), ret.Error(1)
}

func (_m *SessionService) Logout(ctx context.Context, refreshToken string) error {
	ret := _m.Called(ctx, refreshToken)
	return ret.Error(0)
}

func (_m *SessionService) VerifyEmail(ctx context.Context, token string) error {
	ret := _m.Called(ctx, token)
	return ret.Error(0)
}

// NewSessionService creates a new instance of SessionService. It also
// registers a cleanup function to assert the mocks expectations.
func NewSessionService(t interface {
	mock.TestingT
	Cleanup(func())
}) *SessionService {
	m := &SessionService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
