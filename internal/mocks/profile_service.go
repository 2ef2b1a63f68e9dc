package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/reelscore-server/internal/model"
)

// ProfileService is a mock type for the handler.ProfileService type.
type ProfileService struct {
	mock.Mock
}

func (_m *ProfileService) Me(ctx context.Context, username string) (model.Profile, error) {
	ret := _m.Called(ctx, username)
	return ret.Get(0).(model.Profile), ret.Error(1)
}

func (_m *ProfileService) Update(ctx context.Context, username string, update model.ProfileUpdate) (model.Profile, error) {
	ret := _m.Called(ctx, username, update)
	return ret.Get(0).(model.Profile), ret.Error(1)
}

func (_m *ProfileService) Delete(ctx context.Context, username string) error {
	ret := _m.Called(ctx, username)
	return ret.Error(0)
}

// NewProfileService creates a new instance of ProfileService. It also
// registers a cleanup function to assert the mocks expectations.
func NewProfileService(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProfileService {
	m := &ProfileService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
