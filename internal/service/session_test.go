package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/reelscore-server/internal/apierror"
	"github.com/dtroode/reelscore-server/internal/mocks"
	"github.com/dtroode/reelscore-server/internal/model"
	"github.com/dtroode/reelscore-server/internal/testutil"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type sessionDeps struct {
	users      *mocks.UserStore
	tokens     *mocks.RefreshTokenStore
	cache      *mocks.EphemeralCache
	dispatcher *mocks.Dispatcher
	hasher     *mocks.PasswordHasher
	issuer     *mocks.TokenIssuer
}

func newSessionUnderTest(t *testing.T) (*Session, sessionDeps) {
	t.Helper()
	d := sessionDeps{
		users:      mocks.NewUserStore(t),
		tokens:     mocks.NewRefreshTokenStore(t),
		cache:      mocks.NewEphemeralCache(t),
		dispatcher: mocks.NewDispatcher(t),
		hasher:     mocks.NewPasswordHasher(t),
		issuer:     mocks.NewTokenIssuer(t),
	}
	s := NewSession(d.users, d.tokens, d.cache, d.dispatcher, d.hasher, d.issuer, testutil.MakeNoopLogger(),
		WithSessionClock(func() time.Time { return fixedNow }),
		WithVerificationTokens(func() string { return "verify-tok" }),
	)
	return s, d
}

func requireKind(t *testing.T, err error, kind apierror.Kind) {
	t.Helper()
	require.Error(t, err)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, kind, apiErr.Kind)
}

func alice() model.User {
	return model.User{
		ID:           uuid.MustParse("6f1c2b8e-5a77-4d2c-9a3e-0c8f4d1e2b3a"),
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "hashed",
		Role:         model.RoleUser,
	}
}

func expectSessionStart(d sessionDeps, user model.User) {
	d.issuer.On("IssueAccess", user.Username, user.Role).Return("access", nil).Once()
	d.issuer.On("IssueRefresh").Return("refresh", nil).Once()
	d.tokens.On("Create", mock.Anything, mock.MatchedBy(func(rt model.RefreshToken) bool {
		return rt.UserID == user.ID && rt.Token == "refresh" && rt.ExpiresAt.Equal(fixedNow.Add(model.RefreshTokenTTL))
	})).Return(model.RefreshToken{ID: uuid.New(), UserID: user.ID}, nil).Once()
}

func TestSession_Register(t *testing.T) {
	t.Parallel()

	s, d := newSessionUnderTest(t)
	user := alice()

	d.users.On("FindConflicts", mock.Anything, "alice", "alice@x.com").Return(nil, nil).Once()
	d.hasher.On("Hash", "Password123!").Return("hashed", nil).Once()
	d.users.On("Create", mock.Anything, model.NewUser{Username: "alice", Email: "alice@x.com", PasswordHash: "hashed"}).
		Return(user, nil).Once()
	d.cache.On("Set", mock.Anything, "verify-tok", user.ID.String(), 24*time.Hour).Return(nil).Once()
	d.dispatcher.On("Enqueue", mock.Anything, model.JobConfirmation, model.ConfirmationJob{
		Email: "alice@x.com",
		Name:  "alice",
		Token: "verify-tok",
	}).Return(nil).Once()
	expectSessionStart(d, user)

	pair, err := s.Register(context.Background(), "alice", "alice@x.com", "Password123!")

	require.NoError(t, err)
	assert.Equal(t, model.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, pair)
}

func TestSession_Register_ConflictBeforeHashing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fields  []string
		message string
	}{
		{"username", []string{model.FieldUsername}, "Username already exists"},
		{"email", []string{model.FieldEmail}, "Email already exists"},
		{"both", []string{model.FieldUsername, model.FieldEmail}, "Username and Email already exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newSessionUnderTest(t)
			d.users.On("FindConflicts", mock.Anything, "alice", "alice@x.com").Return(tt.fields, nil).Once()

			_, err := s.Register(context.Background(), "alice", "alice@x.com", "Password123!")

			requireKind(t, err, apierror.KindConflict)
			var apiErr *apierror.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.fields, apiErr.Fields)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestSession_Register_ConflictOnCreate(t *testing.T) {
	t.Parallel()

	s, d := newSessionUnderTest(t)
	d.users.On("FindConflicts", mock.Anything, "alice", "alice@x.com").Return(nil, nil).Once()
	d.hasher.On("Hash", "Password123!").Return("hashed", nil).Once()
	d.users.On("Create", mock.Anything, mock.Anything).
		Return(model.User{}, &model.ConflictError{Fields: []string{model.FieldEmail}}).Once()

	_, err := s.Register(context.Background(), "alice", "alice@x.com", "Password123!")

	requireKind(t, err, apierror.KindConflict)
}

func TestSession_Register_InternalFailures(t *testing.T) {
	t.Parallel()

	t.Run("conflict check", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.users.On("FindConflicts", mock.Anything, "alice", "alice@x.com").Return(nil, errors.New("db down")).Once()

		_, err := s.Register(context.Background(), "alice", "alice@x.com", "Password123!")

		requireKind(t, err, apierror.KindInternal)
		assert.NotContains(t, err.Error(), "db down")
	})

	t.Run("hashing", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.users.On("FindConflicts", mock.Anything, "alice", "alice@x.com").Return(nil, nil).Once()
		d.hasher.On("Hash", "Password123!").Return("", errors.New("bcrypt failed")).Once()

		_, err := s.Register(context.Background(), "alice", "alice@x.com", "Password123!")

		requireKind(t, err, apierror.KindInternal)
	})

	t.Run("verification cache", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.users.On("FindConflicts", mock.Anything, "alice", "alice@x.com").Return(nil, nil).Once()
		d.hasher.On("Hash", "Password123!").Return("hashed", nil).Once()
		d.users.On("Create", mock.Anything, mock.Anything).Return(alice(), nil).Once()
		d.cache.On("Set", mock.Anything, "verify-tok", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

		_, err := s.Register(context.Background(), "alice", "alice@x.com", "Password123!")

		requireKind(t, err, apierror.KindInternal)
	})
}

func TestSession_Register_DispatchFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	s, d := newSessionUnderTest(t)
	user := alice()

	d.users.On("FindConflicts", mock.Anything, "alice", "alice@x.com").Return(nil, nil).Once()
	d.hasher.On("Hash", "Password123!").Return("hashed", nil).Once()
	d.users.On("Create", mock.Anything, mock.Anything).Return(user, nil).Once()
	d.cache.On("Set", mock.Anything, "verify-tok", user.ID.String(), model.VerificationTokenTTL).Return(nil).Once()
	d.dispatcher.On("Enqueue", mock.Anything, model.JobConfirmation, mock.Anything).Return(errors.New("no responders")).Once()
	expectSessionStart(d, user)

	pair, err := s.Register(context.Background(), "alice", "alice@x.com", "Password123!")

	require.NoError(t, err)
	assert.Equal(t, "refresh", pair.RefreshToken)
}

func TestSession_Login(t *testing.T) {
	t.Parallel()

	s, d := newSessionUnderTest(t)
	user := alice()

	d.users.On("GetByUsername", mock.Anything, "alice").Return(user, nil).Once()
	d.hasher.On("Verify", "Password123!", "hashed").Return(true).Once()
	expectSessionStart(d, user)

	pair, err := s.Login(context.Background(), "alice", "Password123!")

	require.NoError(t, err)
	assert.Equal(t, "access", pair.AccessToken)
	assert.Equal(t, "refresh", pair.RefreshToken)
}

func TestSession_Login_SameErrorForUnknownUserAndWrongPassword(t *testing.T) {
	t.Parallel()

	s, d := newSessionUnderTest(t)

	d.users.On("GetByUsername", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound).Once()
	d.users.On("GetByUsername", mock.Anything, "alice").Return(alice(), nil).Once()
	d.hasher.On("Verify", "wrong", "hashed").Return(false).Once()

	_, errUnknown := s.Login(context.Background(), "ghost", "whatever")
	_, errWrong := s.Login(context.Background(), "alice", "wrong")

	requireKind(t, errUnknown, apierror.KindUnauthorized)
	requireKind(t, errWrong, apierror.KindUnauthorized)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Equal(t, "Wrong username or password", errWrong.Error())
}

func TestSession_Login_StoreFailure(t *testing.T) {
	t.Parallel()

	s, d := newSessionUnderTest(t)
	d.users.On("GetByUsername", mock.Anything, "alice").Return(model.User{}, errors.New("timeout")).Once()

	_, err := s.Login(context.Background(), "alice", "Password123!")

	requireKind(t, err, apierror.KindInternal)
}

func TestSession_Login_IssuerFailure(t *testing.T) {
	t.Parallel()

	s, d := newSessionUnderTest(t)
	user := alice()
	d.users.On("GetByUsername", mock.Anything, "alice").Return(user, nil).Once()
	d.hasher.On("Verify", "Password123!", "hashed").Return(true).Once()
	d.issuer.On("IssueAccess", "alice", model.RoleUser).Return("access", nil).Once()
	d.issuer.On("IssueRefresh").Return("", errors.New("entropy source failed")).Once()

	_, err := s.Login(context.Background(), "alice", "Password123!")

	requireKind(t, err, apierror.KindInternal)
}

func TestSession_Refresh(t *testing.T) {
	t.Parallel()

	user := alice()
	row := model.RefreshToken{ID: uuid.New(), UserID: user.ID, Token: "old", ExpiresAt: fixedNow.Add(time.Hour)}

	t.Run("rotates in place", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.tokens.On("GetByToken", mock.Anything, "old").Return(row, nil).Once()
		d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
		d.issuer.On("IssueAccess", "alice", model.RoleUser).Return("access-2", nil).Once()
		d.issuer.On("IssueRefresh").Return("new", nil).Once()
		d.tokens.On("Rotate", mock.Anything, "old", "new", fixedNow.Add(model.RefreshTokenTTL)).
			Return(model.RefreshToken{ID: row.ID, UserID: user.ID, Token: "new"}, nil).Once()

		pair, err := s.Refresh(context.Background(), "old")

		require.NoError(t, err)
		assert.Equal(t, model.TokenPair{AccessToken: "access-2", RefreshToken: "new"}, pair)
	})

	t.Run("unknown token", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.tokens.On("GetByToken", mock.Anything, "old").Return(model.RefreshToken{}, model.ErrNotFound).Once()

		_, err := s.Refresh(context.Background(), "old")

		requireKind(t, err, apierror.KindUnauthorized)
		assert.Equal(t, "Invalid or expired token", err.Error())
	})

	t.Run("expired one second ago", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		expired := row
		expired.ExpiresAt = fixedNow.Add(-time.Second)
		d.tokens.On("GetByToken", mock.Anything, "old").Return(expired, nil).Once()

		_, err := s.Refresh(context.Background(), "old")

		requireKind(t, err, apierror.KindUnauthorized)
	})

	t.Run("expiring exactly now is still valid", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		edge := row
		edge.ExpiresAt = fixedNow
		d.tokens.On("GetByToken", mock.Anything, "old").Return(edge, nil).Once()
		d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
		d.issuer.On("IssueAccess", "alice", model.RoleUser).Return("a", nil).Once()
		d.issuer.On("IssueRefresh").Return("new", nil).Once()
		d.tokens.On("Rotate", mock.Anything, "old", "new", mock.Anything).Return(model.RefreshToken{}, nil).Once()

		_, err := s.Refresh(context.Background(), "old")

		require.NoError(t, err)
	})

	t.Run("owner deleted", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.tokens.On("GetByToken", mock.Anything, "old").Return(row, nil).Once()
		d.users.On("GetByID", mock.Anything, user.ID).Return(model.User{}, model.ErrNotFound).Once()

		_, err := s.Refresh(context.Background(), "old")

		requireKind(t, err, apierror.KindNotFound)
	})

	t.Run("lost rotation race", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.tokens.On("GetByToken", mock.Anything, "old").Return(row, nil).Once()
		d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
		d.issuer.On("IssueAccess", "alice", model.RoleUser).Return("a", nil).Once()
		d.issuer.On("IssueRefresh").Return("new", nil).Once()
		d.tokens.On("Rotate", mock.Anything, "old", "new", mock.Anything).Return(model.RefreshToken{}, model.ErrNotFound).Once()

		_, err := s.Refresh(context.Background(), "old")

		requireKind(t, err, apierror.KindUnauthorized)
	})

	t.Run("store failure", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.tokens.On("GetByToken", mock.Anything, "old").Return(model.RefreshToken{}, errors.New("conn reset")).Once()

		_, err := s.Refresh(context.Background(), "old")

		requireKind(t, err, apierror.KindInternal)
	})
}

func TestSession_Logout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		deleted  int64
		storeErr error
		wantKind *apierror.Kind
	}{
		{name: "deletes session", deleted: 1},
		{name: "unknown token", deleted: 0, wantKind: ptr(apierror.KindUnauthorized)},
		{name: "store failure", storeErr: errors.New("db down"), wantKind: ptr(apierror.KindInternal)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newSessionUnderTest(t)
			d.tokens.On("DeleteAllByToken", mock.Anything, "tok").Return(tt.deleted, tt.storeErr).Once()

			err := s.Logout(context.Background(), "tok")

			if tt.wantKind == nil {
				require.NoError(t, err)
				return
			}
			requireKind(t, err, *tt.wantKind)
		})
	}
}

func TestSession_VerifyEmail(t *testing.T) {
	t.Parallel()

	user := alice()

	t.Run("success", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.cache.On("Get", mock.Anything, "tok").Return(user.ID.String(), nil).Once()
		d.cache.On("Delete", mock.Anything, "tok").Return(true, nil).Once()
		d.users.On("SetVerified", mock.Anything, user.ID).Return(user, nil).Once()

		require.NoError(t, s.VerifyEmail(context.Background(), "tok"))
	})

	t.Run("unknown token", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.cache.On("Get", mock.Anything, "tok").Return("", model.ErrNotFound).Once()

		err := s.VerifyEmail(context.Background(), "tok")

		requireKind(t, err, apierror.KindNotFound)
		assert.Equal(t, "Invalid token", err.Error())
	})

	t.Run("redeemed concurrently", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.cache.On("Get", mock.Anything, "tok").Return(user.ID.String(), nil).Once()
		d.cache.On("Delete", mock.Anything, "tok").Return(false, nil).Once()

		err := s.VerifyEmail(context.Background(), "tok")

		requireKind(t, err, apierror.KindNotFound)
	})

	t.Run("user gone", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.cache.On("Get", mock.Anything, "tok").Return(user.ID.String(), nil).Once()
		d.cache.On("Delete", mock.Anything, "tok").Return(true, nil).Once()
		d.users.On("SetVerified", mock.Anything, user.ID).Return(model.User{}, model.ErrNotFound).Once()

		err := s.VerifyEmail(context.Background(), "tok")

		requireKind(t, err, apierror.KindNotFound)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.cache.On("Get", mock.Anything, "tok").Return("not-a-uuid", nil).Once()
		d.cache.On("Delete", mock.Anything, "tok").Return(true, nil).Once()

		err := s.VerifyEmail(context.Background(), "tok")

		requireKind(t, err, apierror.KindInternal)
	})

	t.Run("cache failure", func(t *testing.T) {
		s, d := newSessionUnderTest(t)
		d.cache.On("Get", mock.Anything, "tok").Return("", errors.New("redis down")).Once()

		err := s.VerifyEmail(context.Background(), "tok")

		requireKind(t, err, apierror.KindInternal)
	})
}

func ptr[T any](v T) *T { return &v }
