package domain

import (
	"github.com/savegatehq/savegate/internal/errors"
)

// Admin token errors. Messages are stable, human-readable phrases so a
// front end can surface them directly.
var (
	// ErrInvalidSignature indicates the token payload does not match its signature.
	ErrInvalidSignature = errors.Wrap(errors.ErrUnauthorized, "invalid admin token signature")

	// ErrExpired indicates the token's expiry timestamp has passed.
	ErrExpired = errors.Wrap(errors.ErrUnauthorized, "admin token expired")

	// ErrTokenNotFound indicates no admin token is persisted on this machine,
	// or the persisted file could not be read back as a token.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "admin token not found")

	// ErrScopeNotCovered indicates the token's scope does not extend to the
	// requested game scope.
	ErrScopeNotCovered = errors.Wrap(errors.ErrForbidden, "admin token does not cover requested game")

	// ErrMalformedToken indicates a presented credential that could not be
	// parsed back into a token at all.
	ErrMalformedToken = errors.Wrap(errors.ErrUnauthorized, "malformed admin token")

	// ErrUnknownMethod indicates the issuance method is outside the closed set.
	ErrUnknownMethod = errors.Wrap(errors.ErrInvalidInput, "unknown admin token method")

	// ErrLifetimeRequired indicates an issuance request without a positive
	// lifetime. Admin tokens never live forever.
	ErrLifetimeRequired = errors.Wrap(errors.ErrInvalidInput, "admin token lifetime must be positive")

	// ErrBreakGlassRejected indicates a break-glass attempt that failed.
	// The message is deliberately uniform: it never says whether the
	// challenge was stale, the response wrong, or the path unconfigured.
	ErrBreakGlassRejected = errors.Wrap(errors.ErrUnauthorized, "break-glass response rejected")

	// ErrDebugActivationDisabled indicates the debug password path is not
	// configured on this machine.
	ErrDebugActivationDisabled = errors.Wrap(errors.ErrForbidden, "debug activation not configured")

	// ErrInvalidDebugPassword indicates the supplied debug password did not
	// match the configured hash.
	ErrInvalidDebugPassword = errors.Wrap(errors.ErrUnauthorized, "invalid debug password")
)
