package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/savegatehq/savegate/internal/config"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	entitlementService "github.com/savegatehq/savegate/internal/entitlement/service"
	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// Audit action names for operations that are not themselves capability actions.
const (
	auditActionGrant  = "capability.grant"
	auditActionRevoke = "capability.revoke"
)

// entitlementUseCase implements EntitlementUseCase.
type entitlementUseCase struct {
	config         *config.Config
	capabilityRepo CapabilityRepository
	auditRepo      AuditRepository
	consentRepo    ConsentRepository
	validator      entitlementService.CapabilityValidator
	issuer         entitlementService.CapabilityIssuer
}

// CheckEntitlement decides whether the action is allowed for the game scope.
// See the interface documentation for the full decision order; the short
// version is consent gate, candidate scan in stored order, first valid
// capability wins, ranked most-specific failure otherwise.
func (e *entitlementUseCase) CheckEntitlement(
	ctx context.Context,
	action entitlementDomain.Action,
	gameScope string,
) (*entitlementDomain.Capability, error) {
	// Consent gates modifying actions before any capability is considered.
	if action.IsModifying() {
		hasConsent, err := e.consentRepo.HasConsent(ctx, gameScope, e.config.ConsentVersion)
		if err != nil {
			return nil, storeFailure(ctx, "check consent", err)
		}
		if !hasConsent {
			e.appendAudit(ctx, string(action), "", gameScope, entitlementDomain.OutcomeDenied, "consent not recorded")
			return nil, entitlementDomain.ErrConsentRequired
		}
	}

	candidates, err := e.capabilityRepo.GetCapabilities(ctx, action, gameScope)
	if err != nil {
		return nil, storeFailure(ctx, "get capabilities", err)
	}

	if len(candidates) == 0 {
		e.appendAudit(ctx, string(action), "", gameScope, entitlementDomain.OutcomeDenied, "no matching capability")
		return nil, entitlementDomain.ErrCapabilityNotFound
	}

	// Walk candidates in stored order, keeping the most specific failure so
	// the caller learns "revoked" rather than "not found" when both apply.
	var denial error
	for _, candidate := range candidates {
		revoked, err := e.capabilityRepo.IsRevoked(ctx, candidate.ID)
		if err != nil {
			return nil, storeFailure(ctx, "check revocation", err)
		}
		if revoked {
			e.appendAudit(
				ctx, string(action), candidate.ID, gameScope,
				entitlementDomain.OutcomeRevoked, "capability revoked",
			)
			denial = mostSpecific(denial, entitlementDomain.ErrRevoked)
			continue
		}

		if err := e.validator.Validate(candidate, action, gameScope); err != nil {
			outcome, detail := classifyValidationError(err)
			e.appendAudit(ctx, string(action), candidate.ID, gameScope, outcome, detail)
			denial = mostSpecific(denial, err)
			continue
		}

		e.appendAudit(ctx, string(action), candidate.ID, gameScope, entitlementDomain.OutcomeSuccess, "")
		return candidate, nil
	}

	return nil, denial
}

// GrantCapability issues, persists, and audits a new capability.
func (e *entitlementUseCase) GrantCapability(
	ctx context.Context,
	action entitlementDomain.Action,
	gameScope string,
	lifetime *time.Duration,
) (*entitlementDomain.Capability, error) {
	capability, err := e.issuer.Issue(action, gameScope, lifetime)
	if err != nil {
		return nil, err
	}

	// A grant that did not reach the store never happened.
	if err := e.capabilityRepo.Store(ctx, capability); err != nil {
		return nil, storeFailure(ctx, "store capability", err)
	}

	e.appendAudit(
		ctx, auditActionGrant, capability.ID, gameScope,
		entitlementDomain.OutcomeSuccess, "granted "+string(action),
	)
	return capability, nil
}

// RevokeCapability revokes the capability and audits the revocation.
func (e *entitlementUseCase) RevokeCapability(ctx context.Context, capabilityID string) error {
	if err := e.capabilityRepo.Revoke(ctx, capabilityID); err != nil {
		return storeFailure(ctx, "revoke capability", err)
	}

	e.appendAudit(ctx, auditActionRevoke, capabilityID, "", entitlementDomain.OutcomeRevoked, "")
	return nil
}

// PurgeExpired removes expired and revoked capabilities.
func (e *entitlementUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	count, err := e.capabilityRepo.PurgeExpired(ctx)
	if err != nil {
		return 0, storeFailure(ctx, "purge capabilities", err)
	}
	return count, nil
}

// ListAuditEntries returns audit entries ordered newest first.
func (e *entitlementUseCase) ListAuditEntries(
	ctx context.Context,
	offset, limit int,
) ([]*entitlementDomain.AuditEntry, error) {
	entries, err := e.auditRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, storeFailure(ctx, "list audit entries", err)
	}
	return entries, nil
}

// CountAuditEntries returns the total number of audit entries.
func (e *entitlementUseCase) CountAuditEntries(ctx context.Context) (int64, error) {
	count, err := e.auditRepo.Count(ctx)
	if err != nil {
		return 0, storeFailure(ctx, "count audit entries", err)
	}
	return count, nil
}

// PruneAuditEntries deletes audit entries older than the given number of days.
func (e *entitlementUseCase) PruneAuditEntries(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be at least 1")
	}

	before := time.Now().UTC().AddDate(0, 0, -days)
	count, err := e.auditRepo.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, storeFailure(ctx, "prune audit entries", err)
	}
	return count, nil
}

// RecordConsent upserts the consent record for the game scope.
func (e *entitlementUseCase) RecordConsent(
	ctx context.Context,
	gameScope string,
	version int,
	textHash string,
) error {
	record := &entitlementDomain.ConsentRecord{
		GameScope:       gameScope,
		ConsentVersion:  version,
		ConsentTextHash: textHash,
		AcceptedAt:      time.Now().UTC(),
	}

	if err := e.consentRepo.Record(ctx, record); err != nil {
		return storeFailure(ctx, "record consent", err)
	}
	return nil
}

// GetConsent returns the consent record for the game scope.
func (e *entitlementUseCase) GetConsent(
	ctx context.Context,
	gameScope string,
) (*entitlementDomain.ConsentRecord, error) {
	record, err := e.consentRepo.Get(ctx, gameScope)
	if err != nil {
		if apperrors.Is(err, entitlementDomain.ErrConsentNotFound) {
			return nil, err
		}
		return nil, storeFailure(ctx, "get consent", err)
	}
	return record, nil
}

// HasConsent reports whether the scope has consent at the configured version.
func (e *entitlementUseCase) HasConsent(ctx context.Context, gameScope string) (bool, error) {
	hasConsent, err := e.consentRepo.HasConsent(ctx, gameScope, e.config.ConsentVersion)
	if err != nil {
		return false, storeFailure(ctx, "check consent", err)
	}
	return hasConsent, nil
}

// appendAudit writes one audit entry, best effort. A cancelled context
// suppresses the write so an abandoned check does not record a misleading
// outcome; any other failure is logged and swallowed because the audit trail
// must never change an entitlement decision.
func (e *entitlementUseCase) appendAudit(
	ctx context.Context,
	action, capabilityID, gameScope string,
	outcome entitlementDomain.Outcome,
	detail string,
) {
	if ctx.Err() != nil {
		return
	}

	entry := &entitlementDomain.AuditEntry{
		ID:           uuid.Must(uuid.NewV7()),
		Timestamp:    time.Now().UTC(),
		Action:       action,
		CapabilityID: capabilityID,
		GameScope:    gameScope,
		Outcome:      outcome,
		Detail:       detail,
	}

	if err := e.auditRepo.Append(ctx, entry); err != nil {
		slog.Warn("failed to append audit entry",
			slog.String("action", action),
			slog.String("capability_id", capabilityID),
			slog.String("game_scope", gameScope),
			slog.String("outcome", string(outcome)),
			slog.Any("error", err),
		)
	}
}

// classifyValidationError maps a validator failure to its audit outcome.
// A signature mismatch is the only tamper signal; everything the validator
// rejects on authenticated fields is a plain denial or its specific outcome.
func classifyValidationError(err error) (entitlementDomain.Outcome, string) {
	switch {
	case apperrors.Is(err, entitlementDomain.ErrInvalidSignature):
		return entitlementDomain.OutcomeTamperDetected, "signature mismatch"
	case apperrors.Is(err, entitlementDomain.ErrExpired):
		return entitlementDomain.OutcomeExpired, "capability expired"
	case apperrors.Is(err, entitlementDomain.ErrActionMismatch):
		return entitlementDomain.OutcomeDenied, "action mismatch"
	case apperrors.Is(err, entitlementDomain.ErrScopeMismatch):
		return entitlementDomain.OutcomeDenied, "scope mismatch"
	}
	return entitlementDomain.OutcomeDenied, err.Error()
}

// denialRank orders check failures from least to most specific. A capability
// that existed but was revoked tells the user more than one that never
// matched, so revocation outranks everything.
func denialRank(err error) int {
	switch {
	case apperrors.Is(err, entitlementDomain.ErrRevoked):
		return 5
	case apperrors.Is(err, entitlementDomain.ErrExpired):
		return 4
	case apperrors.Is(err, entitlementDomain.ErrScopeMismatch):
		return 3
	case apperrors.Is(err, entitlementDomain.ErrActionMismatch):
		return 2
	case apperrors.Is(err, entitlementDomain.ErrInvalidSignature):
		return 1
	}
	return 0
}

// mostSpecific keeps the higher-ranked of two denial reasons.
func mostSpecific(current, candidate error) error {
	if denialRank(candidate) > denialRank(current) {
		return candidate
	}
	return current
}

// storeFailure maps a repository error to ErrStoreFailure. Context
// cancellation passes through untouched so a cancelled request is not
// reported as a store outage.
func storeFailure(ctx context.Context, operation string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	return apperrors.Wrapf(entitlementDomain.ErrStoreFailure, "%s: %v", operation, err)
}

// NewEntitlementUseCase creates an EntitlementUseCase with the provided dependencies.
func NewEntitlementUseCase(
	cfg *config.Config,
	capabilityRepo CapabilityRepository,
	auditRepo AuditRepository,
	consentRepo ConsentRepository,
	validator entitlementService.CapabilityValidator,
	issuer entitlementService.CapabilityIssuer,
) EntitlementUseCase {
	return &entitlementUseCase{
		config:         cfg,
		capabilityRepo: capabilityRepo,
		auditRepo:      auditRepo,
		consentRepo:    consentRepo,
		validator:      validator,
		issuer:         issuer,
	}
}
