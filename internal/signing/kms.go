package signing

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// unwrapMasterKey decrypts a KMS-wrapped master key using the keeper
// identified by keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func unwrapMasterKey(ctx context.Context, keyURI, wrapped string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyBase64, err)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open KMS keeper: %v", ErrKMSUnwrapFailed, err)
	}
	defer func() { _ = keeper.Close() }()

	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKMSUnwrapFailed, err)
	}
	if len(key) < MinKeySize {
		Zero(key)
		return nil, fmt.Errorf("%w: unwrapped key is %d bytes", ErrKeyTooShort, len(key))
	}

	return key, nil
}
