package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role enumerates user roles carried in access tokens.
type Role string

const (
	// RoleUser is a regular reviewer.
	RoleUser Role = "USER"
	// RoleAdmin is an administrator.
	RoleAdmin Role = "ADMIN"
)

// UserStore defines persistence operations for users.
// Create returns *ConflictError when username or email is already taken.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	FindConflicts(ctx context.Context, username, email string) ([]string, error)
	Create(ctx context.Context, params NewUser) (User, error)
	SetVerified(ctx context.Context, id uuid.UUID) (User, error)
	UpdateFields(ctx context.Context, username string, patch UserPatch) (User, error)
	DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error)
	DeleteByUsername(ctx context.Context, username string) error
}

// User represents a registered user. PasswordHash is never the plaintext.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser contains parameters to create a user.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// UserPatch lists user fields to update. Nil fields are left unchanged.
type UserPatch struct {
	Email        *string
	PasswordHash *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.PasswordHash == nil
}

// Profile is the public view of a user.
type Profile struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Role      Role
	Verified  bool
	CreatedAt time.Time
}

// ProfileOf strips credentials from u.
func ProfileOf(u User) Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileUpdate is a caller request to change profile fields. Password is
// plaintext and gets hashed before it reaches the store.
type ProfileUpdate struct {
	Email    *string
	Password *string
}
