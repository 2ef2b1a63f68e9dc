package service

import (
	"context"
	"errors"

	"github.com/dtroode/reelscore-server/internal/apierror"
	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/model"
)

// Profile reads, edits and deletes user records by username. The caller
// decides whose record that is: the authenticated user or an admin target.
type Profile struct {
	users  model.UserStore
	hasher model.PasswordHasher
	logger *logger.Logger
}

func NewProfile(users model.UserStore, hasher model.PasswordHasher, logger *logger.Logger) *Profile {
	return &Profile{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

func (p *Profile) Me(ctx context.Context, username string) (model.Profile, error) {
	user, err := p.users.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, apierror.NewErrUserNotFound()
	}
	if err != nil {
		p.logger.Error("Profile service: failed to get user by username",
			"username", username,
			"error", err.Error())
		return model.Profile{}, apierror.NewErrInternal()
	}

	return model.ProfileOf(user), nil
}

// Update applies the requested changes. A new password is hashed first; an
// email already used by someone else is a conflict.
func (p *Profile) Update(ctx context.Context, username string, update model.ProfileUpdate) (model.Profile, error) {
	patch := model.UserPatch{Email: update.Email}

	if update.Password != nil {
		hashed, err := p.hasher.Hash(*update.Password)
		if errors.Is(err, model.ErrPasswordTooLong) {
			return model.Profile{}, apierror.NewErrPasswordTooLong()
		}
		if err != nil {
			p.logger.Error("Profile service: failed to hash password",
				"username", username,
				"error", err.Error())
			return model.Profile{}, apierror.NewErrInternal()
		}
		patch.PasswordHash = &hashed
	}

	if patch.Empty() {
		return p.Me(ctx, username)
	}

	user, err := p.users.UpdateFields(ctx, username, patch)
	if err != nil {
		var conflict *model.ConflictError
		switch {
		case errors.As(err, &conflict):
			return model.Profile{}, apierror.NewErrConflict(conflict.Fields...)
		case errors.Is(err, model.ErrNotFound):
			return model.Profile{}, apierror.NewErrUserNotFound()
		}
		p.logger.Error("Profile service: failed to update user",
			"username", username,
			"error", err.Error())
		return model.Profile{}, apierror.NewErrInternal()
	}

	p.logger.Info("Profile service: profile updated",
		"username", username,
		"email_changed", update.Email != nil,
		"password_changed", update.Password != nil)

	return model.ProfileOf(user), nil
}

// Delete removes the user and, through the store, every session they hold.
func (p *Profile) Delete(ctx context.Context, username string) error {
	err := p.users.DeleteByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return apierror.NewErrUserNotFound()
	}
	if err != nil {
		p.logger.Error("Profile service: failed to delete user",
			"username", username,
			"error", err.Error())
		return apierror.NewErrInternal()
	}

	p.logger.Info("Profile service: user deleted",
		"username", username)
	return nil
}
