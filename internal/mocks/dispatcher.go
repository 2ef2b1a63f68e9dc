package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Dispatcher is a mock type for the model.Dispatcher type.
type Dispatcher struct {
	mock.Mock
}

func (_m *Dispatcher) Enqueue(ctx context.Context, jobName string, payload any) error {
	ret := _m.Called(ctx, jobName, payload)
	return ret.Error(0)
}

// NewDispatcher creates a new instance of Dispatcher. It also registers a
// cleanup function to assert the mocks expectations.
func NewDispatcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Dispatcher {
	m := &Dispatcher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
