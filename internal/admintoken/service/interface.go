// Package service provides the cryptographic engines behind admin tokens:
// the token signer and the break-glass challenge/response scheme.
//
// Both engines are stateless apart from their key material, perform no I/O,
// and are safe for concurrent use. Persistence and auditing live in the
// usecase layer.
package service

import (
	"time"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
)

// TokenService mints and verifies admin tokens against the admin token
// signing key.
type TokenService interface {
	// ComputeSignature signs the token's canonical string with HMAC-SHA256
	// and returns the base64-encoded tag. Deterministic: the same fields and
	// key always produce the same signature.
	ComputeSignature(token *adminDomain.AdminToken) string

	// Issue creates a signed token for the scope. The lifetime must be
	// positive; admin tokens never live forever, so a zero or negative
	// lifetime returns ErrLifetimeRequired. Timestamps are UTC truncated to
	// milliseconds so the canonical string survives storage round trips.
	Issue(scope string, lifetime time.Duration, method adminDomain.Method) (*adminDomain.AdminToken, error)

	// Validate checks a token's authenticity. Checks run in a fixed order so
	// the reported reason is deterministic:
	//
	//	1. signature (constant-time compare) -> ErrInvalidSignature
	//	2. expiry                            -> ErrExpired
	//	3. method (closed set)               -> ErrUnknownMethod
	//
	// Scope coverage is the caller's concern; Validate only answers "is this
	// token authentic and still live".
	Validate(token *adminDomain.AdminToken) error
}

// BreakGlassService implements the offline recovery scheme: the machine
// shows a challenge, support staff who hold the passphrase compute the
// matching response, and a correct response earns a short-lived token.
//
// The scheme is deliberately phone-friendly. Challenge and response are
// both sixteen base32 characters shown in hyphenated groups of four, and
// verification tolerates lowercase and missing separators.
type BreakGlassService interface {
	// Challenge derives the challenge for a machine and a UTC day. The
	// derivation is deterministic, so the machine can re-display the same
	// challenge all day and verification can recompute it instead of
	// storing it.
	Challenge(machineID string, day time.Time) string

	// ExpectedResponse computes the response a correct responder would give
	// for the challenge. Exposed so offline tooling holding the verifier can
	// print the response for support staff.
	ExpectedResponse(challenge string) string

	// VerifyResponse reports whether the response answers the challenge.
	// Comparison is constant time, and an unconfigured verifier never
	// verifies anything.
	VerifyResponse(challenge, response string) bool
}
