package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies the result of an entitlement decision for auditing.
type Outcome string

const (
	// OutcomeSuccess records a check, grant, revocation, or redemption that succeeded.
	OutcomeSuccess Outcome = "success"

	// OutcomeDenied records a denial with no stronger classification
	// (scope or action mismatch, missing consent, rejected break-glass).
	OutcomeDenied Outcome = "denied"

	// OutcomeRevoked records a denial caused by a revoked capability.
	OutcomeRevoked Outcome = "revoked"

	// OutcomeExpired records a denial caused by an expired capability.
	OutcomeExpired Outcome = "expired"

	// OutcomeTamperDetected records a signature that failed verification,
	// which on a single-user machine points at a modified payload.
	OutcomeTamperDetected Outcome = "tamper_detected"
)

// AuditEntry is an append-only record of one entitlement decision.
// Entries are written for every check, grant, revocation, code redemption,
// and break-glass attempt, and are queryable for local diagnostics.
// Action is a free string rather than an Action so that non-capability
// operations (break-glass, redemption) can be recorded too.
type AuditEntry struct {
	ID           uuid.UUID
	Timestamp    time.Time
	Action       string
	CapabilityID string
	GameScope    string
	Outcome      Outcome
	Detail       string
}
