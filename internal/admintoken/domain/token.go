// Package domain defines the admin token model.
//
// Admin tokens gate the administrative surface of the tool: issuing and
// revoking capabilities, generating activation codes, and reading
// diagnostics. A machine holds at most one token, persisted as a local file;
// deleting the file is the revocation mechanism. Tokens always carry a
// finite expiry so a forgotten debug session cannot leave a machine
// administrable forever.
package domain

import (
	"encoding/hex"
	"strings"
	"time"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
)

// NonceSize is the number of random bytes in a token nonce. The nonce makes
// two tokens issued in the same millisecond with identical fields sign
// differently.
const NonceSize = 8

// Method records how an admin token was obtained. The method is covered by
// the signature, so a break-glass token cannot be rewritten into a
// longer-trusted one.
type Method string

const (
	// MethodDebugEnv marks tokens issued by verifying the debug password
	// from the environment.
	MethodDebugEnv Method = "debug-env"

	// MethodTokenFile marks tokens issued directly for the token file,
	// typically by local tooling.
	MethodTokenFile Method = "token-file"

	// MethodBreakGlass marks tokens issued through the offline
	// challenge/response recovery path.
	MethodBreakGlass Method = "break-glass"
)

// ParseMethod maps a stored method string back to a Method. Returns
// ErrUnknownMethod for anything outside the closed set.
func ParseMethod(value string) (Method, error) {
	switch Method(value) {
	case MethodDebugEnv, MethodTokenFile, MethodBreakGlass:
		return Method(value), nil
	default:
		return "", ErrUnknownMethod
	}
}

// AdminToken authorizes administrative operations on one machine. Scope is
// either a single game scope or the wildcard; the signature covers every
// other field.
type AdminToken struct {
	ID        string
	Scope     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Nonce     [NonceSize]byte
	Signature string
	Method    Method
}

// CanonicalString builds the exact byte sequence covered by the signature:
//
//	{id}|{scope}|{issued_at}|{expires_at}|{nonce}|{method}
//
// Timestamps use the same layout as capability canonical strings, and the
// nonce is hex encoded. Field order and separator are frozen; changing
// either invalidates every previously issued token.
func (t *AdminToken) CanonicalString() string {
	return strings.Join([]string{
		t.ID,
		t.Scope,
		t.IssuedAt.UTC().Format(entitlementDomain.TimeLayout),
		t.ExpiresAt.UTC().Format(entitlementDomain.TimeLayout),
		hex.EncodeToString(t.Nonce[:]),
		string(t.Method),
	}, "|")
}

// IsExpired reports whether the token's expiry has passed at the given
// instant. Unlike capabilities, admin tokens always expire.
func (t *AdminToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// CoversScope reports whether the token authorizes administration of the
// requested game scope. A wildcard token covers everything; otherwise
// scopes compare case-insensitively, matching capability scope semantics.
func (t *AdminToken) CoversScope(gameScope string) bool {
	return t.Scope == entitlementDomain.WildcardScope || strings.EqualFold(t.Scope, gameScope)
}
