package domain

import "time"

// Diagnostics is a read-only snapshot of the machine's administrative and
// store state, assembled for support bundles. It never includes token
// signatures or key material.
type Diagnostics struct {
	// TokenPresent reports whether a token file exists and parses.
	TokenPresent bool

	// TokenValid reports whether the present token passes signature and
	// expiry checks. Always false when no token is present.
	TokenValid bool

	// TokenScope is the present token's scope, valid or not. Empty when no
	// token is present.
	TokenScope string

	// TokenExpiresAt is the present token's expiry. Nil when no token is
	// present; an expired timestamp here with TokenValid false tells support
	// the token aged out rather than being tampered with.
	TokenExpiresAt *time.Time

	// ActiveCapabilities counts stored capabilities that are neither revoked
	// nor expired.
	ActiveCapabilities int64

	// AuditEntries counts all audit log entries.
	AuditEntries int64

	// StoreHealthy reports whether the capability store answered a ping and
	// the count queries during this snapshot.
	StoreHealthy bool
}
