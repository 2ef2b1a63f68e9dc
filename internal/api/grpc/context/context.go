package context

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/dtroode/reelscore-server/internal/model"
)

// usernameKey and roleKey are the incoming metadata keys that carry the
// authenticated caller.
const (
	usernameKey string = "x-reelscore-username"
	roleKey     string = "x-reelscore-role"
)

var _ model.ContextManager = (*Manager)(nil)

// Manager represents a gRPC context manager for the authenticated caller.
// It provides methods to set and retrieve the username and role from gRPC metadata.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
//
// Returns a pointer to the newly created Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetUsernameToContext sets the username in the gRPC context metadata.
// Any username sent by the client under the same key is overwritten.
//
// Parameters:
//   - ctx: The gRPC context
//   - username: The authenticated username
//
// Returns a new context whose incoming metadata carries the username.
func (m *Manager) SetUsernameToContext(ctx context.Context, username string) context.Context {
	return setIncoming(ctx, usernameKey, username)
}

// GetUsernameFromContext retrieves the username from gRPC context metadata.
//
// Parameters:
//   - ctx: The gRPC context
//
// Returns the username and a boolean indicating if the username was found.
func (m *Manager) GetUsernameFromContext(ctx context.Context) (string, bool) {
	return getIncoming(ctx, usernameKey)
}

// SetRoleToContext sets the caller's role in the gRPC context metadata.
// Any role sent by the client under the same key is overwritten.
//
// Parameters:
//   - ctx: The gRPC context
//   - role: The role taken from the verified access token
//
// Returns a new context whose incoming metadata carries the role.
func (m *Manager) SetRoleToContext(ctx context.Context, role model.Role) context.Context {
	return setIncoming(ctx, roleKey, string(role))
}

// GetRoleFromContext retrieves the caller's role from gRPC context metadata.
//
// Parameters:
//   - ctx: The gRPC context
//
// Returns the role and a boolean indicating if the role was found.
func (m *Manager) GetRoleFromContext(ctx context.Context) (model.Role, bool) {
	role, ok := getIncoming(ctx, roleKey)
	return model.Role(role), ok
}

// setIncoming copies the incoming metadata so the parent context is never mutated.
func setIncoming(ctx context.Context, key, value string) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(map[string]string{key: value})
	} else {
		md = md.Copy()
		md.Set(key, value)
	}

	return metadata.NewIncomingContext(ctx, md)
}

func getIncoming(ctx context.Context, key string) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	values := md.Get(key)
	if len(values) == 0 || values[0] == "" {
		return "", false
	}

	return values[0], true
}
