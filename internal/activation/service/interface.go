// Package service provides the activation-code codec.
//
// Codes authenticate with a truncated HMAC so they stay short enough to
// read over the phone, and carry no redemption state; replay protection
// lives in the usecase layer against the redemption store. The code
// signing key is its own HKDF domain: leaking it cannot forge
// capabilities, and leaking the capability key cannot forge codes.
package service

import (
	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
)

// CodeService mints and verifies activation codes.
type CodeService interface {
	// GenerateCode mints a signed code for the bundle with a fresh random
	// nonce, so two codes for the same bundle never collide.
	GenerateCode(bundle activationDomain.Bundle) (*activationDomain.ActivationCode, error)

	// Validate parses a display-form code and authenticates its tag.
	// Malformed input and unknown bundle bytes return ErrUnknownCode; a
	// well-formed code whose tag does not verify (constant-time compare)
	// returns ErrInvalidSignature. Pure: redemption state is never
	// consulted.
	Validate(code string) (*activationDomain.ActivationCode, error)
}
