// Package usecase defines business logic interfaces for entitlement operations.
package usecase

import (
	"context"
	"time"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
)

// CapabilityRepository defines persistence operations for capabilities.
// Implementations must support transaction-aware operations via context
// propagation and keep revocation state server side of the payload: a
// capability row carries its own revoked_at marker.
type CapabilityRepository interface {
	// Store persists a capability. Storing the same ID again overwrites the
	// previous row, so retried grants are idempotent.
	Store(ctx context.Context, capability *entitlementDomain.Capability) error

	// GetCapabilities returns every stored capability that plausibly matches
	// the action and game scope: action equal, scope equal case-insensitively
	// or stored as the wildcard. Rows come back in insertion order. The
	// result may over-match; the validator makes the final call.
	GetCapabilities(
		ctx context.Context,
		action entitlementDomain.Action,
		gameScope string,
	) ([]*entitlementDomain.Capability, error)

	// Revoke marks a capability revoked. Idempotent: revoking a revoked or
	// unknown ID is a no-op.
	Revoke(ctx context.Context, capabilityID string) error

	// IsRevoked reports whether the capability has been revoked.
	// Unknown IDs report false.
	IsRevoked(ctx context.Context, capabilityID string) (bool, error)

	// PurgeExpired deletes expired and revoked capabilities and returns the
	// number of rows removed.
	PurgeExpired(ctx context.Context) (int64, error)

	// CountActive counts capabilities that are neither revoked nor expired.
	CountActive(ctx context.Context) (int64, error)
}

// AuditRepository defines persistence operations for the append-only audit trail.
type AuditRepository interface {
	// Append stores one audit entry. Entries are never updated or rewritten.
	Append(ctx context.Context, entry *entitlementDomain.AuditEntry) error

	// List returns audit entries ordered newest first.
	List(ctx context.Context, offset, limit int) ([]*entitlementDomain.AuditEntry, error)

	// Count returns the total number of audit entries.
	Count(ctx context.Context) (int64, error)

	// CountByOutcome returns the number of audit entries with the given outcome.
	CountByOutcome(ctx context.Context, outcome entitlementDomain.Outcome) (int64, error)

	// DeleteOlderThan removes entries with a timestamp before the cutoff and
	// returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// ConsentRepository defines persistence operations for consent records.
// One record is kept per game scope; re-recording replaces it.
type ConsentRepository interface {
	// Record upserts the consent record for its game scope.
	Record(ctx context.Context, record *entitlementDomain.ConsentRecord) error

	// Get returns the consent record for the game scope.
	// Returns ErrConsentNotFound if none exists.
	Get(ctx context.Context, gameScope string) (*entitlementDomain.ConsentRecord, error)

	// HasConsent reports whether consent is recorded for the game scope at
	// the given version or newer. Scope comparison is case-insensitive.
	HasConsent(ctx context.Context, gameScope string, version int) (bool, error)
}

// EntitlementUseCase defines the entitlement decision surface used by the
// HTTP handlers and the CLI.
type EntitlementUseCase interface {
	// CheckEntitlement decides whether the requested action is allowed for
	// the game scope and returns the capability that allowed it.
	//
	// This method:
	//  1. Denies modifying actions with ErrConsentRequired before any
	//     candidate scan when consent is missing for the scope
	//  2. Loads candidate capabilities for the action and scope
	//  3. Walks candidates in stored order, skipping revoked ones, and
	//     returns on the first that validates
	//  4. When nothing validates, returns the most specific failure seen,
	//     ranked revoked > expired > scope mismatch > action mismatch >
	//     invalid signature
	//  5. Returns ErrCapabilityNotFound when there were no candidates at all
	//
	// Every decision is recorded in the audit trail: one entry per failed
	// candidate (tampered payloads as tamper_detected) plus one for the
	// final success or the empty-candidate denial. Audit write failures are
	// logged and never change the decision; a cancelled context suppresses
	// audit writes entirely.
	CheckEntitlement(
		ctx context.Context,
		action entitlementDomain.Action,
		gameScope string,
	) (*entitlementDomain.Capability, error)

	// GrantCapability issues a signed capability, persists it, and audits the
	// grant. A nil lifetime grants a capability that never expires. The grant
	// is not effective unless the store write succeeded.
	GrantCapability(
		ctx context.Context,
		action entitlementDomain.Action,
		gameScope string,
		lifetime *time.Duration,
	) (*entitlementDomain.Capability, error)

	// RevokeCapability revokes a capability by ID and audits the revocation.
	// Idempotent, like the repository operation underneath.
	RevokeCapability(ctx context.Context, capabilityID string) error

	// PurgeExpired removes expired and revoked capabilities from the store.
	PurgeExpired(ctx context.Context) (int64, error)

	// ListAuditEntries returns audit entries ordered newest first.
	ListAuditEntries(ctx context.Context, offset, limit int) ([]*entitlementDomain.AuditEntry, error)

	// CountAuditEntries returns the total number of audit entries.
	CountAuditEntries(ctx context.Context) (int64, error)

	// PruneAuditEntries deletes audit entries older than the given number of
	// days and returns the number of rows removed.
	PruneAuditEntries(ctx context.Context, days int) (int64, error)

	// RecordConsent records that the user accepted the consent text for a
	// game scope at the given version.
	RecordConsent(ctx context.Context, gameScope string, version int, textHash string) error

	// GetConsent returns the consent record for a game scope.
	GetConsent(ctx context.Context, gameScope string) (*entitlementDomain.ConsentRecord, error)

	// HasConsent reports whether the scope has consent at the configured
	// version or newer.
	HasConsent(ctx context.Context, gameScope string) (bool, error)
}
