package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/savegatehq/savegate/internal/signing"
)

// RunGenerateKey generates a fresh random 32-byte signing master key and prints
// it in environment-variable form. The master key is the single secret the
// entitlement core needs; the capability, activation-code, and admin-token
// signing keys are all derived from it at startup.
//
// Output format:
//   - SIGNING_MASTER_KEY="<base64-encoded-key>"
//
// For deployments that keep the key wrapped, encrypt the decoded key with a KMS
// and configure SIGNING_MASTER_KEY_WRAPPED plus SIGNING_KMS_KEY_URI instead.
func RunGenerateKey(logger *slog.Logger, writer io.Writer) error {
	key, err := signing.GenerateMasterKey()
	if err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "# Signing master key configuration")
	_, _ = fmt.Fprintln(writer, "# Copy this line into your .env file or secrets manager.")
	_, _ = fmt.Fprintln(writer, "# Anyone holding this key can mint capabilities, codes, and admin tokens.")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "SIGNING_MASTER_KEY=\"%s\"\n", key)

	logger.Info("master key generated")
	return nil
}
