package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/dtroode/reelscore-server/internal/apierror"
	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/model"
)

const bearerPrefix = "Bearer "

// AccessTokenParser verifies access tokens.
type AccessTokenParser interface {
	ParseAccess(token string) (model.AccessClaims, error)
}

// Authenticate validates bearer access tokens and injects the caller's
// username and role into context.
type Authenticate struct {
	parser         AccessTokenParser
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(parser AccessTokenParser, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{parser: parser, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the authorization header, verifies the token and returns a
// context carrying the token's username and role. Errors are *apierror.Error values,
// which gRPC reports as Unauthenticated.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	var tokenString string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if authHeaders := md.Get("authorization"); len(authHeaders) > 0 {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeaders[0], bearerPrefix))
		}
	}

	if tokenString == "" {
		return nil, apierror.NewErrMissingAuthorizationToken()
	}

	claims, err := m.parser.ParseAccess(tokenString)
	if err != nil {
		m.logger.Debug("Authenticate: access token rejected", "error", err.Error())
		return nil, apierror.NewErrInvalidAuthorizationToken()
	}

	if claims.Username == "" {
		return nil, apierror.NewErrInvalidAuthorizationToken()
	}

	ctx = m.contextManager.SetUsernameToContext(ctx, claims.Username)
	return m.contextManager.SetRoleToContext(ctx, claims.Role), nil
}
