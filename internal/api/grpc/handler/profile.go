package handler

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dtroode/reelscore-server/internal/apierror"
	"github.com/dtroode/reelscore-server/internal/model"
	"github.com/dtroode/reelscore-server/internal/validation"
	"github.com/dtroode/reelscore-server/proto"
)

// Me returns the profile of the authenticated user.
func (h *Auth) Me(ctx context.Context, _ *emptypb.Empty) (*proto.Profile, error) {
	username, ok := h.contextManager.GetUsernameFromContext(ctx)
	if !ok {
		return nil, handleError(apierror.NewErrMissingAuthorizationToken())
	}

	profile, err := h.profiles.Me(ctx, username)
	if err != nil {
		return nil, handleError(err)
	}

	return profileResponse(profile), nil
}

// UpdateProfile changes the authenticated user's email or password.
func (h *Auth) UpdateProfile(ctx context.Context, req *proto.UpdateProfileRequest) (*proto.Profile, error) {
	username, ok := h.contextManager.GetUsernameFromContext(ctx)
	if !ok {
		return nil, handleError(apierror.NewErrMissingAuthorizationToken())
	}

	return h.updateProfile(ctx, username, req.Email, req.Password)
}

// DeleteProfile deletes the authenticated user's account and sessions.
func (h *Auth) DeleteProfile(ctx context.Context, _ *emptypb.Empty) (*proto.Ack, error) {
	username, ok := h.contextManager.GetUsernameFromContext(ctx)
	if !ok {
		return nil, handleError(apierror.NewErrMissingAuthorizationToken())
	}

	return h.deleteProfile(ctx, username)
}

func (h *Auth) updateProfile(ctx context.Context, username string, email, password *string) (*proto.Profile, error) {
	if errs := validation.ProfileUpdate(email, password); len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	profile, err := h.profiles.Update(ctx, username, model.ProfileUpdate{
		Email:    email,
		Password: password,
	})
	if err != nil {
		h.logger.Info("Auth handler: profile update rejected",
			"username", username,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: profile updated", "username", username)

	return profileResponse(profile), nil
}

func (h *Auth) deleteProfile(ctx context.Context, username string) (*proto.Ack, error) {
	if err := h.profiles.Delete(ctx, username); err != nil {
		h.logger.Info("Auth handler: profile deletion rejected",
			"username", username,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: profile deleted", "username", username)

	return &proto.Ack{Message: fmt.Sprintf("User with username %s has been deleted", username)}, nil
}

func profileResponse(p model.Profile) *proto.Profile {
	return &proto.Profile{
		Id:        p.ID.String(),
		Username:  p.Username,
		Email:     p.Email,
		Role:      string(p.Role),
		Verified:  p.Verified,
		CreatedAt: timestamppb.New(p.CreatedAt),
	}
}
