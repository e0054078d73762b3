// Package usecase defines business logic interfaces for activation operations.
package usecase

import (
	"context"
	"time"

	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
)

// RedemptionRepository defines persistence operations for per-machine code
// redemptions.
type RedemptionRepository interface {
	// IsRedeemed reports whether the code hash has been redeemed on the machine.
	IsRedeemed(ctx context.Context, codeHash, machineID string) (bool, error)

	// MarkRedeemed records one redemption. The store enforces uniqueness of
	// (code_hash, machine_id); a duplicate pair returns ErrAlreadyRedeemed,
	// which closes the check-then-act window in Redeem.
	MarkRedeemed(ctx context.Context, record *activationDomain.RedemptionRecord) error

	// CountByMachine returns how many codes have been redeemed on the machine.
	CountByMachine(ctx context.Context, machineID string) (int64, error)
}

// CapabilityGranter is the slice of the entitlement surface redemption
// needs: minting one capability per bundle action through the audited,
// persisted grant path.
type CapabilityGranter interface {
	GrantCapability(
		ctx context.Context,
		action entitlementDomain.Action,
		gameScope string,
		lifetime *time.Duration,
	) (*entitlementDomain.Capability, error)
}

// AuditRecorder appends redemption attempts to the shared audit trail.
type AuditRecorder interface {
	Append(ctx context.Context, entry *entitlementDomain.AuditEntry) error
}

// ActivationUseCase defines the activation surface used by the HTTP
// handlers and the CLI.
type ActivationUseCase interface {
	// GenerateCode mints a signed activation code for the bundle. Admin and
	// tooling path; the end-user runtime never generates codes.
	GenerateCode(ctx context.Context, bundle activationDomain.Bundle) (*activationDomain.ActivationCode, error)

	// ValidateCode parses and authenticates a code without consuming it.
	// Redemption state is not consulted, so a front end can verify a code
	// while the user is still typing it.
	ValidateCode(ctx context.Context, code string) (*activationDomain.ActivationCode, error)

	// IsRedeemed reports whether the code has already been redeemed on this
	// machine. The code is keyed by its normalized hash; it does not need to
	// be authentic for the lookup.
	IsRedeemed(ctx context.Context, code string) (bool, error)

	// Redeem converts a code into capability grants for the game scope.
	//
	// This method:
	//  1. Validates the code; malformed or forged codes propagate their
	//     validation error
	//  2. Rejects codes already redeemed on this machine with
	//     ErrAlreadyRedeemed
	//  3. Grants one capability per bundle action, trial bundles with the
	//     configured trial lifetime, and marks the code redeemed in the
	//     same transaction, so a failure at any point leaves no grants
	//     behind and the code stays retryable
	//
	// Returns the granted action names in grant order. A concurrent
	// redemption of the same code on this machine loses the race inside
	// the store and also reports ErrAlreadyRedeemed.
	Redeem(ctx context.Context, code, gameScope string) ([]string, error)
}
