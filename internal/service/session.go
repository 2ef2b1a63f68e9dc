package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/reelscore-server/internal/apierror"
	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/model"
)

// Session issues, rotates and revokes user sessions and redeems email
// verification tokens. Every error it returns is an *apierror.Error.
type Session struct {
	users      model.UserStore
	tokens     model.RefreshTokenStore
	cache      model.EphemeralCache
	dispatcher model.Dispatcher
	hasher     model.PasswordHasher
	issuer     model.TokenIssuer
	logger     *logger.Logger

	now                  func() time.Time
	newVerificationToken func() string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionClock replaces time.Now.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithVerificationTokens replaces the verification token generator.
func WithVerificationTokens(gen func() string) SessionOption {
	return func(s *Session) { s.newVerificationToken = gen }
}

func NewSession(
	users model.UserStore,
	tokens model.RefreshTokenStore,
	cache model.EphemeralCache,
	dispatcher model.Dispatcher,
	hasher model.PasswordHasher,
	issuer model.TokenIssuer,
	logger *logger.Logger,
	opts ...SessionOption,
) *Session {
	s := &Session{
		users:                users,
		tokens:               tokens,
		cache:                cache,
		dispatcher:           dispatcher,
		hasher:               hasher,
		issuer:               issuer,
		logger:               logger,
		now:                  time.Now,
		newVerificationToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an unverified user, schedules the verification email and
// logs the new user in.
func (s *Session) Register(ctx context.Context, username, email, password string) (model.TokenPair, error) {
	s.logger.Debug("Session service: registering user",
		"username", username)

	conflicts, err := s.users.FindConflicts(ctx, username, email)
	if err != nil {
		return model.TokenPair{}, s.internal("failed to check user conflicts", err, "username", username)
	}
	if len(conflicts) > 0 {
		s.logger.Info("Session service: registration conflict",
			"username", username,
			"fields", conflicts)
		return model.TokenPair{}, apierror.NewErrConflict(conflicts...)
	}

	hashed, err := s.hasher.Hash(password)
	if errors.Is(err, model.ErrPasswordTooLong) {
		return model.TokenPair{}, apierror.NewErrPasswordTooLong()
	}
	if err != nil {
		return model.TokenPair{}, s.internal("failed to hash password", err, "username", username)
	}

	user, err := s.users.Create(ctx, model.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	})
	if err != nil {
		var conflict *model.ConflictError
		if errors.As(err, &conflict) {
			s.logger.Info("Session service: registration conflict",
				"username", username,
				"fields", conflict.Fields)
			return model.TokenPair{}, apierror.NewErrConflict(conflict.Fields...)
		}
		return model.TokenPair{}, s.internal("failed to create user", err, "username", username)
	}

	verification := s.newVerificationToken()
	if err := s.cache.Set(ctx, verification, user.ID.String(), model.VerificationTokenTTL); err != nil {
		return model.TokenPair{}, s.internal("failed to store verification token", err, "user_id", user.ID)
	}

	err = s.dispatcher.Enqueue(ctx, model.JobConfirmation, model.ConfirmationJob{
		Email: user.Email,
		Name:  user.Username,
		Token: verification,
	})
	if err != nil {
		s.logger.Warn("Session service: failed to enqueue confirmation email",
			"user_id", user.ID,
			"error", err.Error())
	}

	s.logger.Info("Session service: user registered",
		"username", username,
		"user_id", user.ID)

	return s.startSession(ctx, user)
}

// Login checks credentials and opens a new session. Unknown usernames and
// wrong passwords produce the same error.
func (s *Session) Login(ctx context.Context, username, password string) (model.TokenPair, error) {
	s.logger.Debug("Session service: login attempt",
		"username", username)

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Session service: login rejected",
			"username", username)
		return model.TokenPair{}, apierror.NewErrWrongCredentials()
	}
	if err != nil {
		return model.TokenPair{}, s.internal("failed to get user by username", err, "username", username)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("Session service: login rejected",
			"username", username)
		return model.TokenPair{}, apierror.NewErrWrongCredentials()
	}

	return s.startSession(ctx, user)
}

// Refresh exchanges a live refresh token for a new pair. The presented value
// is overwritten in place and never validates again.
func (s *Session) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	now := s.now()

	row, err := s.tokens.GetByToken(ctx, refreshToken)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Session service: refresh with unknown token")
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken()
	}
	if err != nil {
		return model.TokenPair{}, s.internal("failed to get refresh token", err)
	}
	if row.Expired(now) {
		s.logger.Info("Session service: refresh with expired token",
			"session_id", row.ID)
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken()
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Session service: session owner no longer exists",
			"session_id", row.ID,
			"user_id", row.UserID)
		return model.TokenPair{}, apierror.NewErrUserNotFound()
	}
	if err != nil {
		return model.TokenPair{}, s.internal("failed to get user by id", err, "user_id", row.UserID)
	}

	access, err := s.issuer.IssueAccess(user.Username, user.Role)
	if err != nil {
		return model.TokenPair{}, s.internal("failed to issue access token", err, "user_id", user.ID)
	}

	next, err := s.issuer.IssueRefresh()
	if err != nil {
		return model.TokenPair{}, s.internal("failed to issue refresh token", err, "user_id", user.ID)
	}

	_, err = s.tokens.Rotate(ctx, refreshToken, next, now.Add(model.RefreshTokenTTL))
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Session service: refresh token rotated concurrently",
			"session_id", row.ID)
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken()
	}
	if err != nil {
		return model.TokenPair{}, s.internal("failed to rotate refresh token", err, "session_id", row.ID)
	}

	s.logger.Debug("Session service: session refreshed",
		"session_id", row.ID,
		"user_id", user.ID)

	return model.TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// Logout deletes the session holding refreshToken. An already dead token is
// an error so callers can detect stale credentials.
func (s *Session) Logout(ctx context.Context, refreshToken string) error {
	deleted, err := s.tokens.DeleteAllByToken(ctx, refreshToken)
	if err != nil {
		return s.internal("failed to delete refresh token", err)
	}
	if deleted == 0 {
		s.logger.Info("Session service: logout with unknown token")
		return apierror.NewErrInvalidRefreshToken()
	}

	s.logger.Debug("Session service: session closed",
		"deleted", deleted)
	return nil
}

// VerifyEmail redeems a verification token once and marks its user verified.
func (s *Session) VerifyEmail(ctx context.Context, token string) error {
	value, err := s.cache.Get(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Session service: unknown verification token")
		return apierror.NewErrInvalidVerificationToken()
	}
	if err != nil {
		return s.internal("failed to get verification token", err)
	}

	// Whoever deletes the entry owns the redemption.
	existed, err := s.cache.Delete(ctx, token)
	if err != nil {
		return s.internal("failed to delete verification token", err)
	}
	if !existed {
		s.logger.Info("Session service: verification token redeemed concurrently")
		return apierror.NewErrInvalidVerificationToken()
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return s.internal("malformed verification entry", err)
	}

	if _, err := s.users.SetVerified(ctx, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Info("Session service: verified user no longer exists",
				"user_id", userID)
			return apierror.NewErrUserNotFound()
		}
		return s.internal("failed to set user verified", err, "user_id", userID)
	}

	s.logger.Info("Session service: email verified",
		"user_id", userID)
	return nil
}

// startSession issues an access token and persists a new refresh token row.
func (s *Session) startSession(ctx context.Context, user model.User) (model.TokenPair, error) {
	access, err := s.issuer.IssueAccess(user.Username, user.Role)
	if err != nil {
		return model.TokenPair{}, s.internal("failed to issue access token", err, "user_id", user.ID)
	}

	refresh, err := s.issuer.IssueRefresh()
	if err != nil {
		return model.TokenPair{}, s.internal("failed to issue refresh token", err, "user_id", user.ID)
	}

	row, err := s.tokens.Create(ctx, model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: s.now().Add(model.RefreshTokenTTL),
	})
	if err != nil {
		return model.TokenPair{}, s.internal("failed to persist refresh token", err, "user_id", user.ID)
	}

	s.logger.Info("Session service: session started",
		"username", user.Username,
		"session_id", row.ID)

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// internal logs the cause and returns the generic internal error.
func (s *Session) internal(msg string, err error, args ...any) error {
	s.logger.Error("Session service: "+msg, append(args, "error", err.Error())...)
	return apierror.NewErrInternal()
}
