package domain

import (
	"github.com/savegatehq/savegate/internal/errors"
)

// Entitlement decision errors. Messages are stable, human-readable phrases
// so a front end can surface them directly.
var (
	// ErrInvalidSignature indicates the capability payload does not match its signature.
	ErrInvalidSignature = errors.Wrap(errors.ErrUnauthorized, "invalid capability signature")

	// ErrExpired indicates the capability's expiry timestamp has passed.
	ErrExpired = errors.Wrap(errors.ErrUnauthorized, "capability expired")

	// ErrActionMismatch indicates the capability grants a different action.
	ErrActionMismatch = errors.Wrap(errors.ErrForbidden, "capability does not cover requested action")

	// ErrScopeMismatch indicates the capability covers a different game scope.
	ErrScopeMismatch = errors.Wrap(errors.ErrForbidden, "capability does not cover requested game")

	// ErrRevoked indicates the capability was revoked in the store.
	ErrRevoked = errors.Wrap(errors.ErrForbidden, "capability revoked")

	// ErrCapabilityNotFound indicates no stored capability matched the request.
	ErrCapabilityNotFound = errors.Wrap(errors.ErrNotFound, "capability not found")

	// ErrConsentRequired indicates a modifying action was checked before the
	// user accepted the current consent text for that game scope.
	ErrConsentRequired = errors.Wrap(errors.ErrForbidden, "consent required for modifying actions")

	// ErrConsentNotFound indicates no consent record exists for the game scope.
	ErrConsentNotFound = errors.Wrap(errors.ErrNotFound, "consent record not found")

	// ErrUnknownAction indicates the action is outside the closed set.
	ErrUnknownAction = errors.Wrap(errors.ErrInvalidInput, "unknown action")

	// ErrStoreFailure indicates the capability store itself failed; the
	// operation may be retried once the store recovers.
	ErrStoreFailure = errors.Wrap(errors.ErrUnavailable, "capability store failure")
)
