package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	adminService "github.com/savegatehq/savegate/internal/admintoken/service"
	adminUseCase "github.com/savegatehq/savegate/internal/admintoken/usecase"
)

// RunBreakGlassChallenge prints today's break-glass challenge for this
// machine. The user reads it to support over the phone; it stops working at
// midnight UTC without any state to expire.
func RunBreakGlassChallenge(
	ctx context.Context,
	adminTokenUseCase adminUseCase.AdminTokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("generating break-glass challenge")

	challenge, err := adminTokenUseCase.GenerateBreakGlassChallenge(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate break-glass challenge: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"challenge": challenge,
		})
	}

	_, _ = fmt.Fprintf(writer, "Read this challenge to support:\n\n")
	_, _ = fmt.Fprintf(writer, "  %s\n\n", challenge)
	_, _ = fmt.Fprintf(writer, "The challenge is valid until midnight UTC.\n")
	return nil
}

// RunBreakGlassRespond submits a support-provided response for today's
// challenge. On success a short-lived break-glass admin token is persisted
// on this machine. The failure message is deliberately uniform.
func RunBreakGlassRespond(
	ctx context.Context,
	adminTokenUseCase adminUseCase.AdminTokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	challenge, response, scope string,
	format string,
) error {
	if scope == "" {
		return fmt.Errorf("scope must not be empty")
	}

	logger.Info("validating break-glass response", slog.String("scope", scope))

	token, err := adminTokenUseCase.ValidateBreakGlassResponse(ctx, challenge, response, scope)
	if err != nil {
		if format == "json" {
			_ = outputJSON(writer, map[string]interface{}{
				"accepted": false,
				"reason":   err.Error(),
			})
		} else {
			_, _ = fmt.Fprintf(writer, "Rejected: %v\n", err)
		}
		return fmt.Errorf("break-glass response rejected: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"accepted":   true,
			"id":         token.ID,
			"scope":      token.Scope,
			"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}

	_, _ = fmt.Fprintf(writer, "Break-glass token issued\n")
	_, _ = fmt.Fprintf(writer, "  ID:      %s\n", token.ID)
	_, _ = fmt.Fprintf(writer, "  Scope:   %s\n", token.Scope)
	_, _ = fmt.Fprintf(writer, "  Expires: %s\n", token.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}

// RunDeriveBreakGlassVerifier derives the break-glass verifier from the
// support passphrase and prints it in environment-variable form. Run on the
// support machine; deployed machines only ever see the verifier, never the
// passphrase.
func RunDeriveBreakGlassVerifier(writer io.Writer, passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}

	verifier := adminService.DeriveVerifier(passphrase)
	encoded := base64.StdEncoding.EncodeToString(verifier)

	_, _ = fmt.Fprintln(writer, "# Break-glass verifier configuration")
	_, _ = fmt.Fprintln(writer, "# Configure this on user machines; keep the passphrase on the support side only.")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "BREAK_GLASS_VERIFIER=\"%s\"\n", encoded)
	return nil
}
