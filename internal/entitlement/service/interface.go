// Package service provides the cryptographic engines for capability
// issuance and validation.
//
// Both engines are stateless apart from the signing key, perform no I/O,
// and are safe for concurrent use. Revocation and persistence live in the
// usecase layer; this package only answers "is this payload authentic and
// does it cover the request".
package service

import (
	"time"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
)

// CapabilityValidator verifies capability payloads against the capability
// signing key.
type CapabilityValidator interface {
	// ComputeSignature signs the capability's canonical string with
	// HMAC-SHA256 and returns the base64-encoded tag. Deterministic: the
	// same fields and key always produce the same signature.
	ComputeSignature(capability *entitlementDomain.Capability) string

	// Validate checks a capability against a required action and game scope.
	// Checks run in a fixed order so the reported reason is deterministic:
	//
	//	1. signature (constant-time compare) -> ErrInvalidSignature
	//	2. expiry                            -> ErrExpired
	//	3. action (case-sensitive equality)  -> ErrActionMismatch
	//	4. scope (wildcard or case-insensitive equality) -> ErrScopeMismatch
	//
	// A tampered capability always reports ErrInvalidSignature, never a
	// later reason, regardless of which field was altered.
	Validate(capability *entitlementDomain.Capability, requiredAction entitlementDomain.Action, gameScope string) error
}

// CapabilityIssuer mints signed capabilities.
type CapabilityIssuer interface {
	// Issue creates a capability for the action and game scope, signed and
	// ready to store. A nil lifetime means the capability never expires;
	// otherwise ExpiresAt is IssuedAt plus the lifetime. Timestamps are UTC
	// truncated to milliseconds so the canonical string survives storage
	// round trips.
	Issue(action entitlementDomain.Action, gameScope string, lifetime *time.Duration) (*entitlementDomain.Capability, error)
}
