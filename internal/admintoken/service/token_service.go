package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/signing"
)

// tokenIDSize is the number of random bytes in a token ID, hex encoded to
// 32 characters.
const tokenIDSize = 16

// tokenService implements TokenService using HMAC-SHA256 over the token's
// canonical string.
type tokenService struct {
	signingKey []byte
}

// NewTokenService creates an HMAC-SHA256 admin token signer.
// Returns ErrKeyTooShort for keys under 32 bytes so a misconfigured key
// fails at startup, not at the first admin operation.
//
// The signer keeps a reference to signingKey rather than a copy; the
// caller (the key ring) owns the material and zeroes it on shutdown.
func NewTokenService(signingKey []byte) (TokenService, error) {
	if len(signingKey) < signing.MinKeySize {
		return nil, signing.ErrKeyTooShort
	}
	return &tokenService{signingKey: signingKey}, nil
}

// ComputeSignature signs the token's canonical string and returns the
// base64-encoded HMAC-SHA256 tag.
func (s *tokenService) ComputeSignature(token *adminDomain.AdminToken) string {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(token.CanonicalString()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Issue mints a signed admin token. Timestamps are UTC truncated to
// milliseconds so the canonical string is identical before and after a
// round trip through the token file.
func (s *tokenService) Issue(
	scope string,
	lifetime time.Duration,
	method adminDomain.Method,
) (*adminDomain.AdminToken, error) {
	if lifetime <= 0 {
		return nil, adminDomain.ErrLifetimeRequired
	}
	if _, err := adminDomain.ParseMethod(string(method)); err != nil {
		return nil, err
	}

	id, err := newTokenID()
	if err != nil {
		return nil, err
	}

	var nonce [adminDomain.NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate admin token nonce")
	}

	issuedAt := time.Now().UTC().Truncate(time.Millisecond)

	token := &adminDomain.AdminToken{
		ID:        id,
		Scope:     scope,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(lifetime).Truncate(time.Millisecond),
		Nonce:     nonce,
		Method:    method,
	}
	token.Signature = s.ComputeSignature(token)

	return token, nil
}

// Validate checks the token in the fixed order documented on the interface:
// signature, expiry, method. The signature compare uses hmac.Equal;
// everything after it operates on authenticated fields only.
func (s *tokenService) Validate(token *adminDomain.AdminToken) error {
	expected := s.ComputeSignature(token)
	if !hmac.Equal([]byte(token.Signature), []byte(expected)) {
		return adminDomain.ErrInvalidSignature
	}

	if token.IsExpired(time.Now().UTC()) {
		return adminDomain.ErrExpired
	}

	if _, err := adminDomain.ParseMethod(string(token.Method)); err != nil {
		return err
	}

	return nil
}

// newTokenID generates a random hex token ID.
func newTokenID() (string, error) {
	randomBytes := make([]byte, tokenIDSize)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate admin token id")
	}
	return hex.EncodeToString(randomBytes), nil
}
