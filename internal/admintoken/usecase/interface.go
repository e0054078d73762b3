// Package usecase defines business logic interfaces for admin token operations.
package usecase

import (
	"context"
	"time"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
)

// TokenRepository defines persistence for the machine's single admin token.
type TokenRepository interface {
	// Save writes the token, replacing any previous one.
	Save(ctx context.Context, token *adminDomain.AdminToken) error

	// Load reads the persisted token. Missing or corrupt files return
	// ErrTokenNotFound.
	Load(ctx context.Context) (*adminDomain.AdminToken, error)

	// Delete removes the token file. Idempotent.
	Delete(ctx context.Context) error
}

// CapabilityCounter is the slice of the capability store diagnostics needs.
type CapabilityCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// AuditTrail is the audit surface admin operations touch: break-glass
// attempts append entries, diagnostics counts them.
type AuditTrail interface {
	Append(ctx context.Context, entry *entitlementDomain.AuditEntry) error
	Count(ctx context.Context) (int64, error)
}

// StorePinger answers whether the capability store is reachable. Satisfied
// by *sql.DB.
type StorePinger interface {
	PingContext(ctx context.Context) error
}

// AdminTokenUseCase defines the administrative token surface used by the
// HTTP admin guard, the admin handlers, and the CLI.
type AdminTokenUseCase interface {
	// GenerateToken mints a signed token without persisting it. Lifetime
	// must be positive.
	GenerateToken(ctx context.Context, scope string, lifetime time.Duration, method adminDomain.Method) (*adminDomain.AdminToken, error)

	// ValidateToken checks a token's signature, expiry, and method.
	ValidateToken(ctx context.Context, token *adminDomain.AdminToken) error

	// SaveToken validates the token and persists it as this machine's admin
	// token. A token that fails validation is never written.
	SaveToken(ctx context.Context, token *adminDomain.AdminToken) error

	// LoadAndValidateToken reads the persisted token and validates it.
	// Returns ErrTokenNotFound when no usable token file exists, or the
	// validation error when the stored token is expired or tampered with.
	LoadAndValidateToken(ctx context.Context) (*adminDomain.AdminToken, error)

	// RevokeToken deletes the persisted token. Revoking when no token
	// exists succeeds.
	RevokeToken(ctx context.Context) error

	// ActivateDebug verifies the debug password against the configured hash
	// and, on success, persists and returns a short-lived debug-env token.
	// Returns ErrDebugActivationDisabled when no hash is configured and
	// ErrInvalidDebugPassword on mismatch.
	ActivateDebug(ctx context.Context, password, scope string) (*adminDomain.AdminToken, error)

	// GenerateBreakGlassChallenge returns today's challenge for this
	// machine. Deterministic within a UTC day, so repeated calls show the
	// user the same value.
	GenerateBreakGlassChallenge(ctx context.Context) (string, error)

	// ValidateBreakGlassResponse checks a challenge/response pair. The
	// submitted challenge must be today's challenge for this machine and
	// the response must answer it; both checks always run and a failure of
	// either returns the uniform ErrBreakGlassRejected with a denied audit
	// entry. Success persists and returns a short-lived break-glass token
	// and appends a success audit entry.
	ValidateBreakGlassResponse(ctx context.Context, challenge, response, scope string) (*adminDomain.AdminToken, error)

	// GetDiagnostics assembles the support snapshot: token state, active
	// capability and audit counts, and store health. Store failures are
	// reported inside the snapshot instead of failing the call.
	GetDiagnostics(ctx context.Context) (*adminDomain.Diagnostics, error)
}
