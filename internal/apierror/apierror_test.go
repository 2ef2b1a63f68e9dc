package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewErrConflict_Messages(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{name: "email", fields: []string{"email"}, want: "Email already exists"},
		{name: "username", fields: []string{"username"}, want: "Username already exists"},
		{name: "both", fields: []string{"username", "email"}, want: "Username and Email already exist"},
		{name: "unknown", fields: nil, want: "Account already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewErrConflict(tt.fields...)
			assert.Equal(t, KindConflict, err.Kind)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.fields, err.Fields)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnauthorized, KindOf(NewErrWrongCredentials()))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", NewErrUserNotFound())))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInvalidArgument, KindOf(NewErrInvalidArgument("bad", "email")))
}

func TestError_Is(t *testing.T) {
	assert.ErrorIs(t, NewErrInvalidRefreshToken(), NewErrInvalidRefreshToken())
	assert.NotErrorIs(t, NewErrInvalidRefreshToken(), NewErrWrongCredentials())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "internal", Kind(42).String())
}

func TestError_GRPCStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		code    codes.Code
		message string
	}{
		{name: "conflict", err: NewErrConflict("email"), code: codes.AlreadyExists, message: "Email already exists"},
		{name: "unauthorized", err: NewErrWrongCredentials(), code: codes.Unauthenticated, message: "Wrong username or password"},
		{name: "not found", err: NewErrInvalidVerificationToken(), code: codes.NotFound, message: "Invalid token"},
		{name: "invalid argument", err: NewErrInvalidArgument("email: must be a valid address", "email"), code: codes.InvalidArgument, message: "email: must be a valid address"},
		{name: "forbidden", err: NewErrForbidden(), code: codes.PermissionDenied, message: "Forbidden resource"},
		{name: "internal", err: NewErrInternal(), code: codes.Internal, message: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(tt.err)
			assert.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.message, st.Message())
		})
	}
}
