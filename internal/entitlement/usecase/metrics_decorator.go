package usecase

import (
	"context"
	"time"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/metrics"
)

// entitlementUseCaseWithMetrics decorates EntitlementUseCase with metrics instrumentation.
type entitlementUseCaseWithMetrics struct {
	next    EntitlementUseCase
	metrics metrics.BusinessMetrics
}

// NewEntitlementUseCaseWithMetrics wraps an EntitlementUseCase with metrics recording.
func NewEntitlementUseCaseWithMetrics(useCase EntitlementUseCase, m metrics.BusinessMetrics) EntitlementUseCase {
	return &entitlementUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// CheckEntitlement records metrics for entitlement checks. Unlike the other
// operations, the status label carries the check outcome (denied, revoked,
// expired, tamper_detected) rather than a flat success/error, because denials
// are ordinary results here, not operational failures.
func (e *entitlementUseCaseWithMetrics) CheckEntitlement(
	ctx context.Context,
	action entitlementDomain.Action,
	gameScope string,
) (*entitlementDomain.Capability, error) {
	start := time.Now()
	capability, err := e.next.CheckEntitlement(ctx, action, gameScope)

	status := checkStatus(err)

	e.metrics.RecordOperation(ctx, "entitlement", "check", status)
	e.metrics.RecordDuration(ctx, "entitlement", "check", time.Since(start), status)

	return capability, err
}

// GrantCapability records metrics for capability grants.
func (e *entitlementUseCaseWithMetrics) GrantCapability(
	ctx context.Context,
	action entitlementDomain.Action,
	gameScope string,
	lifetime *time.Duration,
) (*entitlementDomain.Capability, error) {
	start := time.Now()
	capability, err := e.next.GrantCapability(ctx, action, gameScope, lifetime)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "entitlement", "grant", status)
	e.metrics.RecordDuration(ctx, "entitlement", "grant", time.Since(start), status)

	return capability, err
}

// RevokeCapability records metrics for capability revocations.
func (e *entitlementUseCaseWithMetrics) RevokeCapability(ctx context.Context, capabilityID string) error {
	start := time.Now()
	err := e.next.RevokeCapability(ctx, capabilityID)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "entitlement", "revoke", status)
	e.metrics.RecordDuration(ctx, "entitlement", "revoke", time.Since(start), status)

	return err
}

// PurgeExpired records metrics for capability purges.
func (e *entitlementUseCaseWithMetrics) PurgeExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := e.next.PurgeExpired(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "entitlement", "purge", status)
	e.metrics.RecordDuration(ctx, "entitlement", "purge", time.Since(start), status)

	return count, err
}

// ListAuditEntries records metrics for audit list operations.
func (e *entitlementUseCaseWithMetrics) ListAuditEntries(
	ctx context.Context,
	offset, limit int,
) ([]*entitlementDomain.AuditEntry, error) {
	start := time.Now()
	entries, err := e.next.ListAuditEntries(ctx, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "entitlement", "audit_list", status)
	e.metrics.RecordDuration(ctx, "entitlement", "audit_list", time.Since(start), status)

	return entries, err
}

// CountAuditEntries records metrics for audit count operations.
func (e *entitlementUseCaseWithMetrics) CountAuditEntries(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := e.next.CountAuditEntries(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "entitlement", "audit_count", status)
	e.metrics.RecordDuration(ctx, "entitlement", "audit_count", time.Since(start), status)

	return count, err
}

// PruneAuditEntries records metrics for audit prune operations.
func (e *entitlementUseCaseWithMetrics) PruneAuditEntries(ctx context.Context, days int) (int64, error) {
	start := time.Now()
	count, err := e.next.PruneAuditEntries(ctx, days)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "entitlement", "audit_prune", status)
	e.metrics.RecordDuration(ctx, "entitlement", "audit_prune", time.Since(start), status)

	return count, err
}

// RecordConsent records metrics for consent recording operations.
func (e *entitlementUseCaseWithMetrics) RecordConsent(
	ctx context.Context,
	gameScope string,
	version int,
	textHash string,
) error {
	start := time.Now()
	err := e.next.RecordConsent(ctx, gameScope, version, textHash)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "entitlement", "consent_record", status)
	e.metrics.RecordDuration(ctx, "entitlement", "consent_record", time.Since(start), status)

	return err
}

// GetConsent records metrics for consent retrieval operations.
func (e *entitlementUseCaseWithMetrics) GetConsent(
	ctx context.Context,
	gameScope string,
) (*entitlementDomain.ConsentRecord, error) {
	start := time.Now()
	record, err := e.next.GetConsent(ctx, gameScope)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "entitlement", "consent_get", status)
	e.metrics.RecordDuration(ctx, "entitlement", "consent_get", time.Since(start), status)

	return record, err
}

// HasConsent records metrics for consent check operations.
func (e *entitlementUseCaseWithMetrics) HasConsent(ctx context.Context, gameScope string) (bool, error) {
	start := time.Now()
	hasConsent, err := e.next.HasConsent(ctx, gameScope)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "entitlement", "consent_has", status)
	e.metrics.RecordDuration(ctx, "entitlement", "consent_has", time.Since(start), status)

	return hasConsent, err
}

// checkStatus maps a check result to its metrics status label, mirroring the
// audit outcome vocabulary.
func checkStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.Is(err, entitlementDomain.ErrRevoked):
		return "revoked"
	case apperrors.Is(err, entitlementDomain.ErrExpired):
		return "expired"
	case apperrors.Is(err, entitlementDomain.ErrInvalidSignature):
		return "tamper_detected"
	case apperrors.Is(err, entitlementDomain.ErrConsentRequired),
		apperrors.Is(err, entitlementDomain.ErrScopeMismatch),
		apperrors.Is(err, entitlementDomain.ErrActionMismatch),
		apperrors.Is(err, entitlementDomain.ErrCapabilityNotFound):
		return "denied"
	}
	return "error"
}
