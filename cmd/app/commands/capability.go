package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	entitlementUseCase "github.com/savegatehq/savegate/internal/entitlement/usecase"
)

// RunIssueCapability issues a signed capability for an action and game scope.
// A zero lifetime issues a capability that never expires. The grant is signed,
// persisted, and audited through the same path the API uses.
func RunIssueCapability(
	ctx context.Context,
	entitlementUseCase entitlementUseCase.EntitlementUseCase,
	logger *slog.Logger,
	writer io.Writer,
	action, gameScope string,
	lifetime time.Duration,
	format string,
) error {
	parsedAction, err := entitlementDomain.ParseAction(action)
	if err != nil {
		return fmt.Errorf("invalid action %q: %w", action, err)
	}

	if gameScope == "" {
		return fmt.Errorf("scope must not be empty")
	}

	var lifetimePtr *time.Duration
	if lifetime > 0 {
		lifetimePtr = &lifetime
	}

	logger.Info("issuing capability",
		slog.String("action", action),
		slog.String("game_scope", gameScope),
		slog.Duration("lifetime", lifetime),
	)

	capability, err := entitlementUseCase.GrantCapability(ctx, parsedAction, gameScope, lifetimePtr)
	if err != nil {
		return fmt.Errorf("failed to issue capability: %w", err)
	}

	if format == "json" {
		return outputCapabilityJSON(writer, capability)
	}
	outputCapabilityText(writer, capability)
	return nil
}

// RunRevokeCapability revokes a capability by ID. Revoking an unknown or
// already revoked ID succeeds, matching the store semantics underneath.
func RunRevokeCapability(
	ctx context.Context,
	entitlementUseCase entitlementUseCase.EntitlementUseCase,
	logger *slog.Logger,
	writer io.Writer,
	capabilityID string,
	format string,
) error {
	if capabilityID == "" {
		return fmt.Errorf("capability ID must not be empty")
	}

	logger.Info("revoking capability", slog.String("capability_id", capabilityID))

	if err := entitlementUseCase.RevokeCapability(ctx, capabilityID); err != nil {
		return fmt.Errorf("failed to revoke capability: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"capability_id": capabilityID,
			"revoked":       true,
		})
	}

	_, _ = fmt.Fprintf(writer, "Capability %s revoked\n", capabilityID)
	return nil
}

// RunCheckCapability runs an entitlement check for an action and game scope.
// The decision is printed either way; a denial also returns an error so the
// process exit code reflects the outcome.
func RunCheckCapability(
	ctx context.Context,
	entitlementUseCase entitlementUseCase.EntitlementUseCase,
	logger *slog.Logger,
	writer io.Writer,
	action, gameScope string,
	format string,
) error {
	parsedAction, err := entitlementDomain.ParseAction(action)
	if err != nil {
		return fmt.Errorf("invalid action %q: %w", action, err)
	}

	if gameScope == "" {
		return fmt.Errorf("scope must not be empty")
	}

	logger.Info("checking entitlement",
		slog.String("action", action),
		slog.String("game_scope", gameScope),
	)

	capability, err := entitlementUseCase.CheckEntitlement(ctx, parsedAction, gameScope)
	if err != nil {
		if format == "json" {
			_ = outputJSON(writer, map[string]interface{}{
				"action":     action,
				"game_scope": gameScope,
				"allowed":    false,
				"reason":     err.Error(),
			})
		} else {
			_, _ = fmt.Fprintf(writer, "Denied: %v\n", err)
		}
		return fmt.Errorf("entitlement denied: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"action":        action,
			"game_scope":    gameScope,
			"allowed":       true,
			"capability_id": capability.ID,
		})
	}

	_, _ = fmt.Fprintf(writer, "Allowed by capability %s\n", capability.ID)
	return nil
}

// RunPurgeCapabilities removes expired and revoked capabilities from the store.
func RunPurgeCapabilities(
	ctx context.Context,
	entitlementUseCase entitlementUseCase.EntitlementUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("purging capabilities")

	count, err := entitlementUseCase.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge capabilities: %w", err)
	}

	logger.Info("purge completed", slog.Int64("count", count))

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"count": count,
		})
	}

	_, _ = fmt.Fprintf(writer, "Purged %d expired or revoked capability(ies)\n", count)
	return nil
}

// outputCapabilityText outputs a capability in human-readable text format.
func outputCapabilityText(writer io.Writer, capability *entitlementDomain.Capability) {
	expiresAt := "never"
	if capability.ExpiresAt != nil {
		expiresAt = capability.ExpiresAt.UTC().Format(time.RFC3339)
	}

	_, _ = fmt.Fprintf(writer, "Capability issued\n")
	_, _ = fmt.Fprintf(writer, "  ID:         %s\n", capability.ID)
	_, _ = fmt.Fprintf(writer, "  Action:     %s\n", capability.Action)
	_, _ = fmt.Fprintf(writer, "  Game scope: %s\n", capability.GameScope)
	_, _ = fmt.Fprintf(writer, "  Issued at:  %s\n", capability.IssuedAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "  Expires:    %s\n", expiresAt)
}

// outputCapabilityJSON outputs a capability in JSON format for machine consumption.
func outputCapabilityJSON(writer io.Writer, capability *entitlementDomain.Capability) error {
	result := map[string]interface{}{
		"id":         capability.ID,
		"action":     capability.Action,
		"game_scope": capability.GameScope,
		"issued_at":  capability.IssuedAt.UTC().Format(time.RFC3339),
	}
	if capability.ExpiresAt != nil {
		result["expires_at"] = capability.ExpiresAt.UTC().Format(time.RFC3339)
	}

	return outputJSON(writer, result)
}

// outputJSON writes a result map as indented JSON.
func outputJSON(writer io.Writer, result map[string]interface{}) error {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
