package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrPasswordTooLong is returned by a PasswordHasher for input it cannot hash.
var ErrPasswordTooLong = errors.New("password too long")

// Conflicting user fields.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

// ConflictError reports unique fields that are already taken.
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unique constraint violated: %s", strings.Join(e.Fields, ", "))
}
