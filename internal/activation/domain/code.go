// Package domain defines the activation domain models.
// Activation codes are short, human-enterable credentials that unlock a
// fixed bundle of capabilities once per machine.
package domain

import (
	"strings"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
)

// CodePrefix is the display prefix of every activation code.
const CodePrefix = "SG"

const (
	// NonceSize is the number of random bytes in a code. Four bytes keep
	// codes of the same bundle distinct without making them longer to type.
	NonceSize = 4

	// TagSize is the number of HMAC-SHA256 bytes kept in a code. Forty bits
	// is plenty against online guessing: validation is local and redemption
	// is once per machine, so there is no oracle to brute-force against.
	TagSize = 5

	// EncodedSize is the length of the base32 payload: bundle byte, nonce,
	// and tag encode to exactly sixteen characters without padding.
	EncodedSize = 16
)

// Bundle names the fixed set of actions an activation code unlocks.
// The byte value is part of the code wire format and must never be reused.
type Bundle byte

const (
	// BundlePro unlocks the full editing feature set with no expiry.
	BundlePro Bundle = 1

	// BundleTrial unlocks read-only features for a limited time.
	BundleTrial Bundle = 2

	// BundleSupporter unlocks cosmetic features with no expiry.
	BundleSupporter Bundle = 3
)

// ParseBundle converts a wire byte into a Bundle.
// Returns ErrUnknownCode for bytes outside the known set, because an
// unknown bundle byte can only come from a malformed or foreign code.
func ParseBundle(value byte) (Bundle, error) {
	switch Bundle(value) {
	case BundlePro, BundleTrial, BundleSupporter:
		return Bundle(value), nil
	}
	return 0, ErrUnknownCode
}

// ParseBundleName converts a human-facing bundle name into a Bundle.
// Used at the generation boundary (CLI and admin API), never when parsing
// codes.
func ParseBundleName(name string) (Bundle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pro":
		return BundlePro, nil
	case "trial":
		return BundleTrial, nil
	case "supporter":
		return BundleSupporter, nil
	}
	return 0, ErrUnknownBundle
}

// String returns the human-facing bundle name.
func (b Bundle) String() string {
	switch b {
	case BundlePro:
		return "pro"
	case BundleTrial:
		return "trial"
	case BundleSupporter:
		return "supporter"
	}
	return "unknown"
}

// Actions returns the capability actions the bundle grants. The sets are
// fixed per bundle; changing them only affects codes redeemed afterwards.
func (b Bundle) Actions() []entitlementDomain.Action {
	switch b {
	case BundlePro:
		return []entitlementDomain.Action{
			entitlementDomain.ActionSaveModify,
			entitlementDomain.ActionSaveInspect,
			entitlementDomain.ActionBackupManage,
			entitlementDomain.ActionUIThemes,
		}
	case BundleTrial:
		return []entitlementDomain.Action{
			entitlementDomain.ActionSaveInspect,
			entitlementDomain.ActionUIThemes,
		}
	case BundleSupporter:
		return []entitlementDomain.Action{
			entitlementDomain.ActionUIThemes,
		}
	}
	return nil
}

// IsTrial reports whether capabilities granted by this bundle carry the
// configured trial lifetime instead of being perpetual.
func (b Bundle) IsTrial() bool {
	return b == BundleTrial
}

// ActivationCode is a parsed, authenticated activation code. The tag binds
// bundle and nonce to the code signing key; codes are immutable once
// generated and carry no redemption state.
type ActivationCode struct {
	Code   string
	Bundle Bundle
	Nonce  [NonceSize]byte
	Tag    [TagSize]byte
}

// NormalizeCode reduces user input to the bare base32 payload: upper case,
// hyphens and spaces stripped, display prefix removed. Retyping a code in
// lower case or with different grouping yields the same normalized form,
// and therefore the same redemption-store key.
func NormalizeCode(code string) string {
	normalized := strings.ToUpper(code)
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	// Only strip the prefix when the remainder has payload length; a bare
	// payload that happens to start with the prefix letters stays intact.
	if len(normalized) == len(CodePrefix)+EncodedSize && strings.HasPrefix(normalized, CodePrefix) {
		normalized = normalized[len(CodePrefix):]
	}
	return normalized
}
