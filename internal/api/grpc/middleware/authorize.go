package middleware

import (
	"context"

	"google.golang.org/grpc"

	"github.com/dtroode/reelscore-server/internal/apierror"
	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/model"
)

// Authorize gates methods on the role that Authenticate stored in context.
// It must run after Authenticate.
type Authorize struct {
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthorize creates a new Authorize middleware instance.
func NewAuthorize(contextManager model.ContextManager, logger *logger.Logger) *Authorize {
	return &Authorize{contextManager: contextManager, logger: logger}
}

// RequireRole returns an interceptor that rejects callers without role with
// PermissionDenied.
func (m *Authorize) RequireRole(role model.Role) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		got, ok := m.contextManager.GetRoleFromContext(ctx)
		if !ok || got != role {
			username, _ := m.contextManager.GetUsernameFromContext(ctx)
			m.logger.Warn("Authorize: role rejected",
				"method", info.FullMethod,
				"username", username,
				"role", string(got),
				"required", string(role))
			return nil, apierror.NewErrForbidden()
		}
		return handler(ctx, req)
	}
}
