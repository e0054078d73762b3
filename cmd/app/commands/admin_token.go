package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	adminUseCase "github.com/savegatehq/savegate/internal/admintoken/usecase"
)

// RunIssueAdminToken mints a signed admin token and persists it as this
// machine's token file, replacing any previous token. Scope is a single game
// scope or the wildcard.
func RunIssueAdminToken(
	ctx context.Context,
	adminTokenUseCase adminUseCase.AdminTokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	scope string,
	lifetime time.Duration,
	tokenFile string,
	format string,
) error {
	if scope == "" {
		return fmt.Errorf("scope must not be empty")
	}

	logger.Info("issuing admin token",
		slog.String("scope", scope),
		slog.Duration("lifetime", lifetime),
	)

	token, err := adminTokenUseCase.GenerateToken(ctx, scope, lifetime, adminDomain.MethodTokenFile)
	if err != nil {
		return fmt.Errorf("failed to issue admin token: %w", err)
	}

	if err := adminTokenUseCase.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to save admin token: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"id":         token.ID,
			"scope":      token.Scope,
			"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
			"token_file": tokenFile,
		})
	}

	_, _ = fmt.Fprintf(writer, "Admin token issued\n")
	_, _ = fmt.Fprintf(writer, "  ID:      %s\n", token.ID)
	_, _ = fmt.Fprintf(writer, "  Scope:   %s\n", token.Scope)
	_, _ = fmt.Fprintf(writer, "  Expires: %s\n", token.ExpiresAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "  Saved:   %s\n", tokenFile)
	return nil
}

// RunValidateAdminToken loads this machine's admin token and validates its
// signature, expiry, and method. The verdict is printed either way; an
// invalid or missing token also returns an error for the exit code.
func RunValidateAdminToken(
	ctx context.Context,
	adminTokenUseCase adminUseCase.AdminTokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("validating admin token")

	token, err := adminTokenUseCase.LoadAndValidateToken(ctx)
	if err != nil {
		if format == "json" {
			_ = outputJSON(writer, map[string]interface{}{
				"valid":  false,
				"reason": err.Error(),
			})
		} else {
			_, _ = fmt.Fprintf(writer, "Invalid admin token: %v\n", err)
		}
		return fmt.Errorf("admin token validation failed: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"valid":      true,
			"id":         token.ID,
			"scope":      token.Scope,
			"method":     string(token.Method),
			"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}

	_, _ = fmt.Fprintf(writer, "Admin token is valid\n")
	_, _ = fmt.Fprintf(writer, "  ID:      %s\n", token.ID)
	_, _ = fmt.Fprintf(writer, "  Scope:   %s\n", token.Scope)
	_, _ = fmt.Fprintf(writer, "  Method:  %s\n", token.Method)
	_, _ = fmt.Fprintf(writer, "  Expires: %s\n", token.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}

// RunRevokeAdminToken deletes this machine's admin token. Revoking when no
// token exists succeeds.
func RunRevokeAdminToken(
	ctx context.Context,
	adminTokenUseCase adminUseCase.AdminTokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("revoking admin token")

	if err := adminTokenUseCase.RevokeToken(ctx); err != nil {
		return fmt.Errorf("failed to revoke admin token: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"revoked": true,
		})
	}

	_, _ = fmt.Fprintf(writer, "Admin token revoked\n")
	return nil
}
