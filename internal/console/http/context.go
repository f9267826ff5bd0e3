package http

import (
	"context"

	"github.com/chatforge/console/internal/console/domain"
)

type ctxKey string

const (
	ctxKeyResolvedRole     ctxKey = "resolved_role"
	ctxKeyResolvedClientID ctxKey = "resolved_client_id"
)

// withResolvedRole stores the outcome of the role-resolution chain, which
// may differ from the raw token claims for legacy accounts.
func withResolvedRole(ctx context.Context, role domain.Role, clientID string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyResolvedRole, role)
	return context.WithValue(ctx, ctxKeyResolvedClientID, clientID)
}

func callerRole(ctx context.Context) domain.Role {
	if r, ok := ctx.Value(ctxKeyResolvedRole).(domain.Role); ok {
		return r
	}
	return domain.RoleNone
}

func callerClientID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyResolvedClientID).(string); ok {
		return id
	}
	return ""
}

// canAccessClient reports whether the caller may act on clientID:
// administrators may act on any account, client principals only on their own.
func canAccessClient(ctx context.Context, clientID string) bool {
	switch callerRole(ctx) {
	case domain.RoleAdmin:
		return true
	case domain.RoleClient:
		return clientID != "" && callerClientID(ctx) == clientID
	default:
		return false
	}
}
