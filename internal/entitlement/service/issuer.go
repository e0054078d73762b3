package service

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// capabilityIDSize is the number of random bytes in a capability ID, hex
// encoded to 32 characters. 128 bits of entropy keeps IDs unguessable and
// collision-free without any coordination.
const capabilityIDSize = 16

// capabilityIssuer implements CapabilityIssuer. It delegates signing to the
// validator so issuance and verification can never drift apart.
type capabilityIssuer struct {
	validator CapabilityValidator
}

// NewCapabilityIssuer creates a capability issuer that signs with the given
// validator's key.
func NewCapabilityIssuer(validator CapabilityValidator) CapabilityIssuer {
	return &capabilityIssuer{validator: validator}
}

// Issue mints a signed capability. Timestamps are UTC truncated to
// milliseconds so the canonical string is identical before and after a
// round trip through millisecond-precision storage.
func (c *capabilityIssuer) Issue(
	action entitlementDomain.Action,
	gameScope string,
	lifetime *time.Duration,
) (*entitlementDomain.Capability, error) {
	id, err := newCapabilityID()
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().UTC().Truncate(time.Millisecond)

	var expiresAt *time.Time
	if lifetime != nil {
		t := issuedAt.Add(*lifetime).Truncate(time.Millisecond)
		expiresAt = &t
	}

	capability := &entitlementDomain.Capability{
		ID:        id,
		Action:    action,
		GameScope: gameScope,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	capability.Signature = c.validator.ComputeSignature(capability)

	return capability, nil
}

// newCapabilityID generates a random hex capability ID.
func newCapabilityID() (string, error) {
	randomBytes := make([]byte, capabilityIDSize)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate capability id")
	}
	return hex.EncodeToString(randomBytes), nil
}
