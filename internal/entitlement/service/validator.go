package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	"github.com/savegatehq/savegate/internal/signing"
)

// capabilityValidator implements CapabilityValidator using HMAC-SHA256 over
// the capability's canonical string.
type capabilityValidator struct {
	signingKey []byte
}

// NewCapabilityValidator creates an HMAC-SHA256 capability validator.
// Returns ErrKeyTooShort for keys under 32 bytes so a misconfigured key
// fails at startup, not at the first entitlement check.
//
// The validator keeps a reference to signingKey rather than a copy; the
// caller (the key ring) owns the material and zeroes it on shutdown.
func NewCapabilityValidator(signingKey []byte) (CapabilityValidator, error) {
	if len(signingKey) < signing.MinKeySize {
		return nil, signing.ErrKeyTooShort
	}
	return &capabilityValidator{signingKey: signingKey}, nil
}

// ComputeSignature signs the capability's canonical string and returns the
// base64-encoded HMAC-SHA256 tag.
func (c *capabilityValidator) ComputeSignature(capability *entitlementDomain.Capability) string {
	mac := hmac.New(sha256.New, c.signingKey)
	mac.Write([]byte(capability.CanonicalString()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Validate checks the capability in the fixed order documented on the
// interface: signature, expiry, action, scope. The signature compare uses
// hmac.Equal; everything after it operates on authenticated fields only.
func (c *capabilityValidator) Validate(
	capability *entitlementDomain.Capability,
	requiredAction entitlementDomain.Action,
	gameScope string,
) error {
	expected := c.ComputeSignature(capability)
	if !hmac.Equal([]byte(capability.Signature), []byte(expected)) {
		return entitlementDomain.ErrInvalidSignature
	}

	if capability.IsExpired(time.Now().UTC()) {
		return entitlementDomain.ErrExpired
	}

	if capability.Action != requiredAction {
		return entitlementDomain.ErrActionMismatch
	}

	if !capability.MatchesScope(gameScope) {
		return entitlementDomain.ErrScopeMismatch
	}

	return nil
}
