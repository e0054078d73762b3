package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/signing"
)

// challengeContext is the domain separator mixed into every challenge.
// Versioned so a future scheme change cannot collide with old challenges.
const challengeContext = "savegate-break-glass-v1"

// verifierSalt is the fixed salt for deriving the verifier from the support
// passphrase. Fixed rather than random because the derivation must produce
// the same verifier on the support machine and in the deployed config.
const verifierSalt = "savegate-break-glass-verifier-v1"

// dayLayout keys challenges to a UTC calendar day. A challenge read out on
// Monday stops working at midnight UTC without any state to expire.
const dayLayout = "2006-01-02"

// digestSize is the number of digest bytes kept in challenges and
// responses. Ten bytes encode to exactly sixteen base32 characters.
const digestSize = 10

// groupSize is the number of characters per display group.
const groupSize = 4

// breakGlassEncoding is base32 without padding, the same alphabet used for
// activation codes, chosen to survive being read over the phone.
var breakGlassEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Argon2id parameters for verifier derivation. Heavier than interactive
// login hashing; derivation happens once per passphrase, offline.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// breakGlassService implements BreakGlassService. An empty verifier leaves
// the service in a disabled state where VerifyResponse always fails.
type breakGlassService struct {
	verifier []byte
}

// NewBreakGlassService creates a break-glass engine for the given verifier.
// A nil or empty verifier disables verification entirely; a present but
// short verifier returns ErrKeyTooShort so misconfiguration fails at
// startup instead of silently never verifying.
func NewBreakGlassService(verifier []byte) (BreakGlassService, error) {
	if len(verifier) > 0 && len(verifier) < signing.MinKeySize {
		return nil, signing.ErrKeyTooShort
	}
	return &breakGlassService{verifier: verifier}, nil
}

// Challenge derives the challenge for a machine and UTC day: the truncated
// SHA-256 of the context string, machine ID, and day, in display form.
func (b *breakGlassService) Challenge(machineID string, day time.Time) string {
	material := strings.Join([]string{
		challengeContext,
		machineID,
		day.UTC().Format(dayLayout),
	}, "|")

	sum := sha256.Sum256([]byte(material))
	return formatGroups(breakGlassEncoding.EncodeToString(sum[:digestSize]))
}

// ExpectedResponse computes the correct response for a challenge: the
// truncated HMAC-SHA256 of the normalized challenge under the verifier, in
// display form.
func (b *breakGlassService) ExpectedResponse(challenge string) string {
	mac := hmac.New(sha256.New, b.verifier)
	mac.Write([]byte(NormalizeInput(challenge)))
	sum := mac.Sum(nil)
	return formatGroups(breakGlassEncoding.EncodeToString(sum[:digestSize]))
}

// VerifyResponse reports whether the response answers the challenge. The
// expected response is always computed, even when the verifier is absent,
// so verification cost does not reveal whether break-glass is configured.
func (b *breakGlassService) VerifyResponse(challenge, response string) bool {
	expected := NormalizeInput(b.ExpectedResponse(challenge))
	match := hmac.Equal([]byte(NormalizeInput(response)), []byte(expected))
	return match && len(b.verifier) > 0
}

// DeriveVerifier derives the 32-byte break-glass verifier from the support
// passphrase with Argon2id. Run offline by tooling; the passphrase itself
// never reaches a deployed machine.
func DeriveVerifier(passphrase string) []byte {
	return argon2.IDKey(
		[]byte(passphrase),
		[]byte(verifierSalt),
		argonTime,
		argonMemory,
		argonThreads,
		signing.MinKeySize,
	)
}

// ParseVerifier decodes a configured base64 verifier. An empty value means
// break-glass is not configured and yields a nil verifier, not an error.
func ParseVerifier(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}

	verifier, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "break-glass verifier is not valid base64")
	}
	if len(verifier) < signing.MinKeySize {
		return nil, signing.ErrKeyTooShort
	}

	return verifier, nil
}

// NormalizeInput maps a typed challenge or response to comparison form:
// uppercase with separators stripped. Accepts the display form, lowercase,
// and input with spaces instead of hyphens.
func NormalizeInput(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "-", "")
	value = strings.ReplaceAll(value, " ", "")
	return value
}

// formatGroups renders a bare base32 string in hyphenated groups of four.
func formatGroups(encoded string) string {
	groups := make([]string, 0, len(encoded)/groupSize)
	for i := 0; i < len(encoded); i += groupSize {
		end := i + groupSize
		if end > len(encoded) {
			end = len(encoded)
		}
		groups = append(groups, encoded[i:end])
	}
	return strings.Join(groups, "-")
}
