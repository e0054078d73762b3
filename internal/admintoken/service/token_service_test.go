package service

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	"github.com/savegatehq/savegate/internal/signing"
)

func newSigningKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewTokenService_KeyTooShort(t *testing.T) {
	_, err := NewTokenService(make([]byte, 31))
	assert.ErrorIs(t, err, signing.ErrKeyTooShort)

	_, err = NewTokenService(nil)
	assert.ErrorIs(t, err, signing.ErrKeyTooShort)

	_, err = NewTokenService(make([]byte, 32))
	assert.NoError(t, err)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	service, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)

	token, err := service.Issue("skyrim", 12*time.Hour, adminDomain.MethodDebugEnv)
	require.NoError(t, err)

	assert.Len(t, token.ID, 32, "token id should be 16 bytes hex encoded")
	assert.Equal(t, "skyrim", token.Scope)
	assert.Equal(t, adminDomain.MethodDebugEnv, token.Method)
	assert.NotEmpty(t, token.Signature)
	assert.Equal(t, token.IssuedAt.Add(12*time.Hour), token.ExpiresAt)
	assert.Equal(t, time.UTC, token.IssuedAt.Location())

	assert.NoError(t, service.Validate(token))
}

func TestTokenService_Issue_UniqueTokens(t *testing.T) {
	service, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)

	first, err := service.Issue("skyrim", time.Hour, adminDomain.MethodTokenFile)
	require.NoError(t, err)
	second, err := service.Issue("skyrim", time.Hour, adminDomain.MethodTokenFile)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Nonce, second.Nonce)
	assert.NotEqual(t, first.Signature, second.Signature)
}

func TestTokenService_Issue_LifetimeRequired(t *testing.T) {
	service, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)

	_, err = service.Issue("skyrim", 0, adminDomain.MethodDebugEnv)
	assert.ErrorIs(t, err, adminDomain.ErrLifetimeRequired)

	_, err = service.Issue("skyrim", -time.Hour, adminDomain.MethodDebugEnv)
	assert.ErrorIs(t, err, adminDomain.ErrLifetimeRequired)
}

func TestTokenService_Issue_UnknownMethod(t *testing.T) {
	service, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)

	_, err = service.Issue("skyrim", time.Hour, adminDomain.Method("oauth"))
	assert.ErrorIs(t, err, adminDomain.ErrUnknownMethod)
}

func TestTokenService_Validate_TamperedFieldsDetected(t *testing.T) {
	service, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(token *adminDomain.AdminToken)
	}{
		{
			name:   "ID",
			mutate: func(token *adminDomain.AdminToken) { token.ID = "ffffffffffffffffffffffffffffffff" },
		},
		{
			name:   "Scope",
			mutate: func(token *adminDomain.AdminToken) { token.Scope = "*" },
		},
		{
			name:   "ExpiresAt",
			mutate: func(token *adminDomain.AdminToken) { token.ExpiresAt = token.ExpiresAt.Add(24 * time.Hour) },
		},
		{
			name:   "Nonce",
			mutate: func(token *adminDomain.AdminToken) { token.Nonce[0] ^= 0x01 },
		},
		{
			name:   "Method",
			mutate: func(token *adminDomain.AdminToken) { token.Method = adminDomain.MethodTokenFile },
		},
		{
			name:   "Signature",
			mutate: func(token *adminDomain.AdminToken) { token.Signature = "AAAA" + token.Signature[4:] },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.Issue("skyrim", time.Hour, adminDomain.MethodBreakGlass)
			require.NoError(t, err)
			tt.mutate(token)

			assert.ErrorIs(t, service.Validate(token), adminDomain.ErrInvalidSignature)
		})
	}
}

func TestTokenService_Validate_Expired(t *testing.T) {
	service, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)

	// Build an already-expired token by hand; Issue refuses non-positive
	// lifetimes, and the signature must still be authentic.
	issuedAt := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Millisecond)
	token := &adminDomain.AdminToken{
		ID:        "a1b2c3d4e5f60718293a4b5c6d7e8f90",
		Scope:     "skyrim",
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(time.Hour),
		Method:    adminDomain.MethodDebugEnv,
	}
	token.Signature = service.ComputeSignature(token)

	assert.ErrorIs(t, service.Validate(token), adminDomain.ErrExpired)
}

func TestTokenService_Validate_CheckOrder(t *testing.T) {
	service, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)

	// Tampered and expired: the signature failure must win.
	issuedAt := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Millisecond)
	token := &adminDomain.AdminToken{
		ID:        "a1b2c3d4e5f60718293a4b5c6d7e8f90",
		Scope:     "skyrim",
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(time.Hour),
		Method:    adminDomain.MethodDebugEnv,
	}
	token.Signature = service.ComputeSignature(token)
	token.Scope = "*"

	assert.ErrorIs(t, service.Validate(token), adminDomain.ErrInvalidSignature)

	// Expired with a bad stored method: expiry is checked before the method.
	token = &adminDomain.AdminToken{
		ID:        "a1b2c3d4e5f60718293a4b5c6d7e8f90",
		Scope:     "skyrim",
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(time.Hour),
		Method:    adminDomain.Method("oauth"),
	}
	token.Signature = service.ComputeSignature(token)

	assert.ErrorIs(t, service.Validate(token), adminDomain.ErrExpired)
}

func TestTokenService_Validate_WrongKey(t *testing.T) {
	service1, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)
	service2, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)

	token, err := service1.Issue("skyrim", time.Hour, adminDomain.MethodDebugEnv)
	require.NoError(t, err)

	assert.ErrorIs(t, service2.Validate(token), adminDomain.ErrInvalidSignature,
		"validation with a different key should fail")
}

func TestTokenService_DeterministicSignatures(t *testing.T) {
	service, err := NewTokenService(newSigningKey(t))
	require.NoError(t, err)

	token, err := service.Issue("skyrim", time.Hour, adminDomain.MethodDebugEnv)
	require.NoError(t, err)

	sig1 := service.ComputeSignature(token)
	sig2 := service.ComputeSignature(token)

	assert.Equal(t, sig1, sig2, "signatures should be deterministic")
	assert.Equal(t, token.Signature, sig1)
}
