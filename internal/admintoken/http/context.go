package http

import (
	"context"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
)

// adminTokenKey is a context key type for storing validated admin tokens.
type adminTokenKey struct{}

// WithAdminToken stores a validated admin token in the context.
// This is typically called by the admin guard middleware after the token
// signature and expiry have been checked.
func WithAdminToken(ctx context.Context, token *adminDomain.AdminToken) context.Context {
	return context.WithValue(ctx, adminTokenKey{}, token)
}

// GetAdminToken retrieves the validated admin token from the context.
// Returns (token, true) if one is present, or (nil, false) if no token was
// set. Handlers that enforce scope coverage against request bodies call this.
func GetAdminToken(ctx context.Context) (*adminDomain.AdminToken, bool) {
	token, ok := ctx.Value(adminTokenKey{}).(*adminDomain.AdminToken)
	return token, ok
}
