package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// EphemeralCache is a mock type for the model.EphemeralCache type.
type EphemeralCache struct {
	mock.Mock
}

func (_m *EphemeralCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	ret := _m.Called(ctx, key, value, ttl)
	return ret.Error(0)
}

func (_m *EphemeralCache) Get(ctx context.Context, key string) (string, error) {
	ret := _m.Called(ctx, key)
	return ret.String(0), ret.Error(1)
}

func (_m *EphemeralCache) Delete(ctx context.Context, key string) (bool, error) {
	ret := _m.Called(ctx, key)
	return ret.Bool(0), ret.Error(1)
}

// NewEphemeralCache creates a new instance of EphemeralCache. It also registers
// a cleanup function to assert the mocks expectations.
func NewEphemeralCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *EphemeralCache {
	m := &EphemeralCache{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
