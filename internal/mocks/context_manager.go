package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/reelscore-server/internal/model"
)

// ContextManager is a mock type for the model.ContextManager type.
type ContextManager struct {
	mock.Mock
}

func (_m *ContextManager) SetUsernameToContext(ctx context.Context, username string) context.Context {
	ret := _m.Called(ctx, username)
	return ret.Get(0).(context.Context)
}

func (_m *ContextManager) GetUsernameFromContext(ctx context.Context) (string, bool) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Bool(1)
}

func (_m *ContextManager) SetRoleToContext(ctx context.Context, role model.Role) context.Context {
	ret := _m.Called(ctx, role)
	return ret.Get(0).(context.Context)
}

func (_m *ContextManager) GetRoleFromContext(ctx context.Context) (model.Role, bool) {
	ret := _m.Called(ctx)
	return ret.Get(0).(model.Role), ret.Bool(1)
}

// NewContextManager creates a new instance of ContextManager. It also
// registers a cleanup function to assert the mocks expectations.
func NewContextManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *ContextManager {
	m := &ContextManager{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
