package model

import "context"

// ContextManager stores the authenticated caller in a request context.
type ContextManager interface {
	SetUsernameToContext(ctx context.Context, username string) context.Context
	GetUsernameFromContext(ctx context.Context) (string, bool)
	SetRoleToContext(ctx context.Context, role Role) context.Context
	GetRoleFromContext(ctx context.Context) (Role, bool)
}
