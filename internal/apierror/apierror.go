// Package apierror defines the typed failures returned by the session core.
// Every error that leaves a service carries one Kind; callers switch on it to
// pick a transport status.
package apierror

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a failure.
type Kind int

const (
	// KindInternal hides storage, hashing and signing failures.
	KindInternal Kind = iota
	// KindConflict means a unique field is already registered.
	KindConflict
	// KindUnauthorized means credentials or a refresh token were rejected.
	KindUnauthorized
	// KindNotFound means a user or verification token does not exist.
	KindNotFound
	// KindInvalidArgument means boundary validation failed.
	KindInvalidArgument
	// KindForbidden means the caller is authenticated but lacks the role.
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a caller-safe failure. Message never contains internal detail.
type Error struct {
	Kind    Kind
	Message string
	// Fields names the conflicting or invalid fields, if any.
	Fields []string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches another *Error of the same kind and message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// Code maps k to the gRPC status code the API answers with.
func (k Kind) Code() codes.Code {
	switch k {
	case KindConflict:
		return codes.AlreadyExists
	case KindUnauthorized:
		return codes.Unauthenticated
	case KindNotFound:
		return codes.NotFound
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindForbidden:
		return codes.PermissionDenied
	default:
		return codes.Internal
	}
}

// GRPCStatus lets status.FromError and status.Code read e directly.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Kind.Code(), e.Message)
}

// KindOf returns the kind of err, or KindInternal if err is untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// NewErrConflict reports already registered fields.
func NewErrConflict(fields ...string) *Error {
	msg := "Account already exists"
	switch {
	case len(fields) == 1:
		msg = fmt.Sprintf("%s already exists", capitalize(fields[0]))
	case len(fields) > 1:
		msg = fmt.Sprintf("%s already exist", strings.Join(capitalizeAll(fields), " and "))
	}
	return &Error{Kind: KindConflict, Message: msg, Fields: fields}
}

// NewErrWrongCredentials is returned for an unknown username and a wrong
// password alike.
func NewErrWrongCredentials() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Wrong username or password"}
}

// NewErrInvalidRefreshToken is returned for unknown, rotated, revoked or
// expired refresh tokens.
func NewErrInvalidRefreshToken() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Invalid or expired token"}
}

// NewErrMissingAuthorizationToken is returned when no access token was sent.
func NewErrMissingAuthorizationToken() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Authorization token is required"}
}

// NewErrInvalidAuthorizationToken is returned for a bad access token.
func NewErrInvalidAuthorizationToken() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Invalid authorization token"}
}

// NewErrForbidden is returned when the caller's role may not use a method.
func NewErrForbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "Forbidden resource"}
}

// NewErrUserNotFound is returned when a referenced user is gone.
func NewErrUserNotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "User not found"}
}

// NewErrInvalidVerificationToken is returned for never-issued, expired and
// already redeemed verification tokens alike.
func NewErrInvalidVerificationToken() *Error {
	return &Error{Kind: KindNotFound, Message: "Invalid token"}
}

// NewErrInternal is the only internal failure callers ever see.
func NewErrInternal() *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error"}
}

// NewErrPasswordTooLong is returned when the hasher cannot accept a password
// that slipped past boundary validation.
func NewErrPasswordTooLong() *Error {
	return NewErrInvalidArgument("password: must be at most 72 bytes", "password")
}

// NewErrInvalidArgument reports fields that failed validation.
func NewErrInvalidArgument(message string, fields ...string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message, Fields: fields}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func capitalizeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = capitalize(s)
	}
	return out
}
