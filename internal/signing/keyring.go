package signing

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF info strings, versioned for future algorithm changes. Each signing
// domain gets its own derived key so leaking one cannot forge the others.
const (
	capabilityKeyInfo     = "capability-signing-v1"
	activationCodeKeyInfo = "activation-code-signing-v1"
	adminTokenKeyInfo     = "admin-token-signing-v1"
)

// KeyRing holds the derived signing keys for the three signing domains.
// It is immutable after construction and safe for concurrent use.
type KeyRing struct {
	capabilityKey     []byte
	activationCodeKey []byte
	adminTokenKey     []byte
}

// NewKeyRing derives the per-domain signing keys from the master key.
// The master key itself is not retained; the caller remains responsible
// for zeroing it.
func NewKeyRing(masterKey []byte) (*KeyRing, error) {
	if len(masterKey) < MinKeySize {
		return nil, fmt.Errorf("%w: master key is %d bytes", ErrKeyTooShort, len(masterKey))
	}

	capabilityKey, err := deriveKey(masterKey, capabilityKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to derive capability key: %w", err)
	}

	activationCodeKey, err := deriveKey(masterKey, activationCodeKeyInfo)
	if err != nil {
		Zero(capabilityKey)
		return nil, fmt.Errorf("failed to derive activation code key: %w", err)
	}

	adminTokenKey, err := deriveKey(masterKey, adminTokenKeyInfo)
	if err != nil {
		Zero(capabilityKey)
		Zero(activationCodeKey)
		return nil, fmt.Errorf("failed to derive admin token key: %w", err)
	}

	return &KeyRing{
		capabilityKey:     capabilityKey,
		activationCodeKey: activationCodeKey,
		adminTokenKey:     adminTokenKey,
	}, nil
}

// LoadKeyRing loads the master key from the configured source, derives the
// key ring and zeroes the master key material.
func LoadKeyRing(ctx context.Context, opts Options) (*KeyRing, error) {
	masterKey, err := LoadMasterKey(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer Zero(masterKey)

	return NewKeyRing(masterKey)
}

// CapabilityKey returns the signing key for the capability domain.
func (k *KeyRing) CapabilityKey() []byte {
	return k.capabilityKey
}

// ActivationCodeKey returns the signing key for the activation code domain.
func (k *KeyRing) ActivationCodeKey() []byte {
	return k.activationCodeKey
}

// AdminTokenKey returns the signing key for the admin token domain.
func (k *KeyRing) AdminTokenKey() []byte {
	return k.adminTokenKey
}

// Close zeroes all derived key material. The key ring must not be used after
// Close.
func (k *KeyRing) Close() {
	Zero(k.capabilityKey)
	Zero(k.activationCodeKey)
	Zero(k.adminTokenKey)
}

// deriveKey uses HKDF-SHA256 to derive a 32-byte key from the master key for
// the given domain info string.
func deriveKey(masterKey []byte, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(info))

	key := make([]byte, MinKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}

	return key, nil
}
