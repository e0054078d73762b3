package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
)

func TestCapabilityIssuer_IssueWithLifetime(t *testing.T) {
	validator, err := NewCapabilityValidator(newSigningKey(t))
	require.NoError(t, err)
	issuer := NewCapabilityIssuer(validator)

	lifetime := 24 * time.Hour
	capability, err := issuer.Issue(entitlementDomain.ActionSaveInspect, "skyrim", &lifetime)
	require.NoError(t, err)

	assert.Len(t, capability.ID, 32, "capability ID should be 16 random bytes hex encoded")
	assert.Equal(t, entitlementDomain.ActionSaveInspect, capability.Action)
	assert.Equal(t, "skyrim", capability.GameScope)
	require.NotNil(t, capability.ExpiresAt)
	assert.Equal(t, capability.IssuedAt.Add(lifetime), *capability.ExpiresAt)

	// A freshly issued capability validates for its own action and scope.
	err = validator.Validate(capability, entitlementDomain.ActionSaveInspect, "skyrim")
	assert.NoError(t, err)
}

func TestCapabilityIssuer_IssueWithoutLifetime(t *testing.T) {
	validator, err := NewCapabilityValidator(newSigningKey(t))
	require.NoError(t, err)
	issuer := NewCapabilityIssuer(validator)

	capability, err := issuer.Issue(entitlementDomain.ActionUIThemes, entitlementDomain.WildcardScope, nil)
	require.NoError(t, err)

	assert.Nil(t, capability.ExpiresAt, "nil lifetime should issue a capability that never expires")

	err = validator.Validate(capability, entitlementDomain.ActionUIThemes, "anygame")
	assert.NoError(t, err)
}

func TestCapabilityIssuer_UniqueIDs(t *testing.T) {
	validator, err := NewCapabilityValidator(newSigningKey(t))
	require.NoError(t, err)
	issuer := NewCapabilityIssuer(validator)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		capability, err := issuer.Issue(entitlementDomain.ActionSaveInspect, "skyrim", nil)
		require.NoError(t, err)
		assert.False(t, seen[capability.ID], "capability IDs should never repeat")
		seen[capability.ID] = true
	}
}

func TestCapabilityIssuer_TimestampPrecision(t *testing.T) {
	validator, err := NewCapabilityValidator(newSigningKey(t))
	require.NoError(t, err)
	issuer := NewCapabilityIssuer(validator)

	lifetime := time.Hour
	capability, err := issuer.Issue(entitlementDomain.ActionSaveModify, "skyrim", &lifetime)
	require.NoError(t, err)

	// Timestamps are UTC and truncated to whole milliseconds so the
	// canonical string survives storage round trips.
	assert.Equal(t, time.UTC, capability.IssuedAt.Location())
	assert.Zero(t, capability.IssuedAt.Nanosecond()%int(time.Millisecond))
	assert.Zero(t, capability.ExpiresAt.Nanosecond()%int(time.Millisecond))
}
