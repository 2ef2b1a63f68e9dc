package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/reelscore-server/internal/model"
)

// UserStore is a mock type for the model.UserStore type.
type UserStore struct {
	mock.Mock
}

func (_m *UserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	ret := _m.Called(ctx, username)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) FindConflicts(ctx context.Context, username string, email string) ([]string, error) {
	ret := _m.Called(ctx, username, email)
	var r0 []string
	if v := ret.Get(0); v != nil {
		r0 = v.([]string)
	}
	return r0, ret.Error(1)
}

func (_m *UserStore) Create(ctx context.Context, params model.NewUser) (model.User, error) {
	ret := _m.Called(ctx, params)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) SetVerified(ctx context.Context, id uuid.UUID) (model.User, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) UpdateFields(ctx context.Context, username string, patch model.UserPatch) (model.User, error) {
	ret := _m.Called(ctx, username, patch)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error) {
	ret := _m.Called(ctx, before)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *UserStore) DeleteByUsername(ctx context.Context, username string) error {
	ret := _m.Called(ctx, username)
	return ret.Error(0)
}

// NewUserStore creates a new instance of UserStore. It also registers a cleanup
// function to assert the mocks expectations.
func NewUserStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserStore {
	m := &UserStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
