package handler

import (
	"context"

	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/model"
	"github.com/dtroode/reelscore-server/internal/validation"
	"github.com/dtroode/reelscore-server/proto"
)

// SessionService defines credential and session lifecycle operations.
type SessionService interface {
	Register(ctx context.Context, username, email, password string) (model.TokenPair, error)
	Login(ctx context.Context, username, password string) (model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, token string) error
}

// ProfileService defines operations on a user's profile by username.
type ProfileService interface {
	Me(ctx context.Context, username string) (model.Profile, error)
	Update(ctx context.Context, username string, update model.ProfileUpdate) (model.Profile, error)
	Delete(ctx context.Context, username string) error
}

var _ proto.AuthServer = (*Auth)(nil)

// Auth handles gRPC endpoints of the reelscore.Auth service.
type Auth struct {
	proto.UnimplementedAuthServer
	sessions       SessionService
	profiles       ProfileService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(sessions SessionService, profiles ProfileService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		sessions:       sessions,
		profiles:       profiles,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register creates an account and starts its first session.
func (h *Auth) Register(ctx context.Context, req *proto.RegisterRequest) (*proto.TokenPair, error) {
	h.logger.Debug("Auth handler: processing registration request",
		"username", req.GetUsername())

	if errs := validation.Register(req.GetUsername(), req.GetEmail(), req.GetPassword()); len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	pair, err := h.sessions.Register(ctx, req.GetUsername(), req.GetEmail(), req.GetPassword())
	if err != nil {
		h.logger.Info("Auth handler: registration rejected",
			"username", req.GetUsername(),
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: registration completed",
		"username", req.GetUsername())

	return tokenPairResponse(pair), nil
}

// Login exchanges credentials for a token pair.
func (h *Auth) Login(ctx context.Context, req *proto.LoginRequest) (*proto.TokenPair, error) {
	h.logger.Debug("Auth handler: processing login request",
		"username", req.GetUsername())

	if errs := validation.Login(req.GetUsername(), req.GetPassword()); len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	pair, err := h.sessions.Login(ctx, req.GetUsername(), req.GetPassword())
	if err != nil {
		h.logger.Info("Auth handler: login rejected",
			"username", req.GetUsername(),
			"error", err.Error())
		return nil, handleError(err)
	}

	return tokenPairResponse(pair), nil
}

// Refresh rotates a refresh token.
func (h *Auth) Refresh(ctx context.Context, req *proto.RefreshRequest) (*proto.TokenPair, error) {
	if errs := validation.Token("refresh_token", req.GetRefreshToken()); len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	pair, err := h.sessions.Refresh(ctx, req.GetRefreshToken())
	if err != nil {
		h.logger.Info("Auth handler: refresh rejected", "error", err.Error())
		return nil, handleError(err)
	}

	return tokenPairResponse(pair), nil
}

// Logout revokes every session sharing the refresh token.
func (h *Auth) Logout(ctx context.Context, req *proto.LogoutRequest) (*proto.Ack, error) {
	if errs := validation.Token("refresh_token", req.GetRefreshToken()); len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	if err := h.sessions.Logout(ctx, req.GetRefreshToken()); err != nil {
		return nil, handleError(err)
	}

	return &proto.Ack{Message: "Logged out successfully"}, nil
}

// VerifyEmail redeems a verification token.
func (h *Auth) VerifyEmail(ctx context.Context, req *proto.VerifyEmailRequest) (*proto.Ack, error) {
	if errs := validation.Token("token", req.GetToken()); len(errs) > 0 {
		return nil, invalidArgument(errs)
	}

	if err := h.sessions.VerifyEmail(ctx, req.GetToken()); err != nil {
		h.logger.Info("Auth handler: email verification rejected", "error", err.Error())
		return nil, handleError(err)
	}

	return &proto.Ack{Message: "Email verified successfully"}, nil
}

func tokenPairResponse(pair model.TokenPair) *proto.TokenPair {
	return &proto.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}
