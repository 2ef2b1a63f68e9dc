package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/reelscore-server/internal/model"
)

// TokenIssuer is a mock type for the model.TokenIssuer type.
type TokenIssuer struct {
	mock.Mock
}

func (_m *TokenIssuer) IssueAccess(username string, role model.Role) (string, error) {
	ret := _m.Called(username, role)
	return ret.String(0), ret.Error(1)
}

func (_m *TokenIssuer) IssueRefresh() (string, error) {
	ret := _m.Called()
	return ret.String(0), ret.Error(1)
}

func (_m *TokenIssuer) ParseAccess(token string) (model.AccessClaims, error) {
	ret := _m.Called(token)
	return ret.Get(0).(model.AccessClaims), ret.Error(1)
}

// NewTokenIssuer creates a new instance of TokenIssuer. It also registers a
// cleanup function to assert the mocks expectations.
func NewTokenIssuer(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenIssuer {
	m := &TokenIssuer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
