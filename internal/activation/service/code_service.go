package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"strings"

	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/signing"
)

// payloadSize is the wire size of a code: bundle byte, nonce, tag.
const payloadSize = 1 + activationDomain.NonceSize + activationDomain.TagSize

// groupSize is the number of characters per display group.
const groupSize = 4

// codeEncoding is base32 without padding. Ten payload bytes encode to
// exactly sixteen characters, and the alphabet avoids the 0/1 digits that
// are easy to misread as letters.
var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// codeService implements CodeService using HMAC-SHA256 truncated to the
// domain tag size.
type codeService struct {
	signingKey []byte
}

// NewCodeService creates an HMAC-SHA256 activation-code codec.
// Returns ErrKeyTooShort for keys under 32 bytes so a misconfigured key
// fails at startup, not at the first code validation.
//
// The codec keeps a reference to signingKey rather than a copy; the
// caller (the key ring) owns the material and zeroes it on shutdown.
func NewCodeService(signingKey []byte) (CodeService, error) {
	if len(signingKey) < signing.MinKeySize {
		return nil, signing.ErrKeyTooShort
	}
	return &codeService{signingKey: signingKey}, nil
}

// GenerateCode mints a signed activation code for the bundle.
func (c *codeService) GenerateCode(bundle activationDomain.Bundle) (*activationDomain.ActivationCode, error) {
	if _, err := activationDomain.ParseBundle(byte(bundle)); err != nil {
		return nil, activationDomain.ErrUnknownBundle
	}

	var nonce [activationDomain.NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate code nonce")
	}

	code := &activationDomain.ActivationCode{
		Bundle: bundle,
		Nonce:  nonce,
		Tag:    c.computeTag(byte(bundle), nonce),
	}
	code.Code = formatCode(encodePayload(code))

	return code, nil
}

// Validate parses and authenticates a code. The order is fixed: format,
// bundle byte, tag. A forged tag is only reported on an otherwise
// well-formed code, so the caller can distinguish typos from tampering.
func (c *codeService) Validate(code string) (*activationDomain.ActivationCode, error) {
	normalized := activationDomain.NormalizeCode(code)
	if len(normalized) != activationDomain.EncodedSize {
		return nil, activationDomain.ErrUnknownCode
	}

	payload, err := codeEncoding.DecodeString(normalized)
	if err != nil || len(payload) != payloadSize {
		return nil, activationDomain.ErrUnknownCode
	}

	bundle, err := activationDomain.ParseBundle(payload[0])
	if err != nil {
		return nil, err
	}

	parsed := &activationDomain.ActivationCode{
		Code:   formatCode(normalized),
		Bundle: bundle,
	}
	copy(parsed.Nonce[:], payload[1:1+activationDomain.NonceSize])
	copy(parsed.Tag[:], payload[1+activationDomain.NonceSize:])

	expected := c.computeTag(payload[0], parsed.Nonce)
	if !hmac.Equal(parsed.Tag[:], expected[:]) {
		return nil, entitlementDomain.ErrInvalidSignature
	}

	return parsed, nil
}

// computeTag derives the truncated authentication tag over bundle and nonce.
func (c *codeService) computeTag(
	bundle byte,
	nonce [activationDomain.NonceSize]byte,
) [activationDomain.TagSize]byte {
	mac := hmac.New(sha256.New, c.signingKey)
	mac.Write([]byte{bundle})
	mac.Write(nonce[:])

	var tag [activationDomain.TagSize]byte
	copy(tag[:], mac.Sum(nil))
	return tag
}

// encodePayload renders a code's wire bytes as the bare base32 payload.
func encodePayload(code *activationDomain.ActivationCode) string {
	payload := make([]byte, 0, payloadSize)
	payload = append(payload, byte(code.Bundle))
	payload = append(payload, code.Nonce[:]...)
	payload = append(payload, code.Tag[:]...)
	return codeEncoding.EncodeToString(payload)
}

// formatCode renders a bare payload as the display form: the prefix plus
// four groups of four characters, hyphen separated.
func formatCode(encoded string) string {
	groups := make([]string, 0, 1+len(encoded)/groupSize)
	groups = append(groups, activationDomain.CodePrefix)
	for i := 0; i < len(encoded); i += groupSize {
		groups = append(groups, encoded[i:i+groupSize])
	}
	return strings.Join(groups, "-")
}
