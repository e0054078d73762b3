// Package signing provides the signing key material for the entitlement core.
//
// A single 32-byte master key is loaded at startup (directly from the
// environment, or unwrapped through a KMS) and expanded with HKDF-SHA256 into
// three independent signing domains: capabilities, activation codes and admin
// tokens. Compromise of one derived key never reveals the others or the
// master key.
package signing

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// MinKeySize is the minimum accepted key length in bytes (256 bits).
const MinKeySize = 32

// Options selects the master key source.
//
// Exactly one source must be configured:
//   - MasterKey: base64-encoded raw key (SIGNING_MASTER_KEY), for
//     development and single-machine deployments.
//   - MasterKeyWrapped + KMSKeyURI: base64-encoded KMS-wrapped key
//     (SIGNING_MASTER_KEY_WRAPPED) unwrapped through a gocloud.dev keeper
//     (SIGNING_KMS_KEY_URI).
type Options struct {
	MasterKey        string
	MasterKeyWrapped string
	KMSKeyURI        string
}

// LoadMasterKey loads and validates the raw master key from the configured
// source. A missing source, undecodable material or a key shorter than
// MinKeySize is a fatal configuration error. The caller owns the returned
// bytes and should Zero them after deriving working keys.
func LoadMasterKey(ctx context.Context, opts Options) ([]byte, error) {
	switch {
	case opts.MasterKeyWrapped != "" && opts.KMSKeyURI != "":
		return unwrapMasterKey(ctx, opts.KMSKeyURI, opts.MasterKeyWrapped)
	case opts.MasterKeyWrapped != "":
		return nil, fmt.Errorf("%w: SIGNING_MASTER_KEY_WRAPPED requires SIGNING_KMS_KEY_URI", ErrMasterKeyNotSet)
	case opts.MasterKey != "":
		key, err := base64.StdEncoding.DecodeString(opts.MasterKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyBase64, err)
		}
		if len(key) < MinKeySize {
			Zero(key)
			return nil, fmt.Errorf("%w: got %d bytes", ErrKeyTooShort, len(key))
		}
		return key, nil
	default:
		return nil, ErrMasterKeyNotSet
	}
}

// GenerateMasterKey returns a fresh random 32-byte master key, base64-encoded
// for direct use as SIGNING_MASTER_KEY.
func GenerateMasterKey() (string, error) {
	key := make([]byte, MinKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate master key: %w", err)
	}
	defer Zero(key)
	return base64.StdEncoding.EncodeToString(key), nil
}
