package signing

import (
	"github.com/savegatehq/savegate/internal/errors"
)

// Key construction errors. All of them are startup-time misconfigurations:
// the application refuses to start rather than serving requests with a weak
// or missing signing key.
var (
	// ErrMasterKeyNotSet indicates no master key source is configured.
	ErrMasterKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "signing master key not set")

	// ErrInvalidMasterKeyBase64 indicates the configured key material is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "signing master key is not valid base64")

	// ErrKeyTooShort indicates key material below the 256-bit minimum.
	ErrKeyTooShort = errors.Wrap(errors.ErrInvalidInput, "signing key shorter than 32 bytes")

	// ErrKMSUnwrapFailed indicates the wrapped master key could not be unwrapped.
	ErrKMSUnwrapFailed = errors.Wrap(errors.ErrUnavailable, "failed to unwrap signing master key")
)
