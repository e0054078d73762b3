package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	entitlementUseCase "github.com/savegatehq/savegate/internal/entitlement/usecase"
)

// RunPruneAuditEntries deletes audit entries older than the specified number
// of days. The audit trail is append-only in operation; pruning is the one
// sanctioned removal path and exists to keep the local store small.
func RunPruneAuditEntries(
	ctx context.Context,
	entitlementUseCase entitlementUseCase.EntitlementUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	// Validate days parameter
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("pruning audit entries", slog.Int("days", days))

	count, err := entitlementUseCase.PruneAuditEntries(ctx, days)
	if err != nil {
		return fmt.Errorf("failed to prune audit entries: %w", err)
	}

	logger.Info("prune completed",
		slog.Int64("count", count),
		slog.Int("days", days),
	)

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"count": count,
			"days":  days,
		})
	}

	_, _ = fmt.Fprintf(writer, "Deleted %d audit entry(ies) older than %d day(s)\n", count, days)
	return nil
}
