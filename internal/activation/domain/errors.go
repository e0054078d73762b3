package domain

import (
	"github.com/savegatehq/savegate/internal/errors"
)

// Activation errors. Messages are stable, human-readable phrases so a
// front end can surface them directly. Tag mismatches on a well-formed
// code reuse the entitlement signature error, keeping one tamper signal
// across both credential kinds.
var (
	// ErrUnknownCode indicates the code is malformed or names an unknown bundle.
	ErrUnknownCode = errors.Wrap(errors.ErrInvalidInput, "unknown activation code")

	// ErrUnknownBundle indicates a bundle name outside the known set was
	// given at the generation boundary.
	ErrUnknownBundle = errors.Wrap(errors.ErrInvalidInput, "unknown bundle")

	// ErrAlreadyRedeemed indicates the code was already redeemed on this machine.
	ErrAlreadyRedeemed = errors.Wrap(errors.ErrConflict, "activation code already redeemed on this machine")

	// ErrStoreFailure indicates the redemption store failed; the redemption
	// may be retried once the store recovers.
	ErrStoreFailure = errors.Wrap(errors.ErrUnavailable, "redemption store failure")
)
