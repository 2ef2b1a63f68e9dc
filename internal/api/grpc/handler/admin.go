package handler

import (
	"context"

	"github.com/dtroode/reelscore-server/internal/validation"
	"github.com/dtroode/reelscore-server/proto"
)

// Admin endpoints act on any account by username. The router only lets
// ADMIN callers through.

// AdminUpdateUser changes another user's email or password.
func (h *Auth) AdminUpdateUser(ctx context.Context, req *proto.AdminUpdateUserRequest) (*proto.Profile, error) {
	if errs := validation.Username(req.GetUsername()); len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	admin, _ := h.contextManager.GetUsernameFromContext(ctx)
	h.logger.Info("Auth handler: admin updating user",
		"admin", admin,
		"username", req.GetUsername())

	return h.updateProfile(ctx, req.GetUsername(), req.Email, req.Password)
}

// AdminDeleteUser deletes another user's account and sessions.
func (h *Auth) AdminDeleteUser(ctx context.Context, req *proto.UserRequest) (*proto.Ack, error) {
	if errs := validation.Username(req.GetUsername()); len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	admin, _ := h.contextManager.GetUsernameFromContext(ctx)
	h.logger.Info("Auth handler: admin deleting user",
		"admin", admin,
		"username", req.GetUsername())

	return h.deleteProfile(ctx, req.GetUsername())
}
