package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
	activationService "github.com/savegatehq/savegate/internal/activation/service"
	"github.com/savegatehq/savegate/internal/config"
	"github.com/savegatehq/savegate/internal/database"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/machineid"
)

// auditActionRedeem names redemption attempts in the audit trail.
const auditActionRedeem = "code.redeem"

// activationUseCase implements ActivationUseCase.
type activationUseCase struct {
	config         *config.Config
	codeService    activationService.CodeService
	txManager      database.TxManager
	redemptionRepo RedemptionRepository
	granter        CapabilityGranter
	auditRecorder  AuditRecorder
	machine        machineid.Provider
}

// GenerateCode mints a signed activation code for the bundle.
func (a *activationUseCase) GenerateCode(
	ctx context.Context,
	bundle activationDomain.Bundle,
) (*activationDomain.ActivationCode, error) {
	return a.codeService.GenerateCode(bundle)
}

// ValidateCode parses and authenticates a code without consuming it.
func (a *activationUseCase) ValidateCode(
	ctx context.Context,
	code string,
) (*activationDomain.ActivationCode, error) {
	return a.codeService.Validate(code)
}

// IsRedeemed reports whether the code has been redeemed on this machine.
func (a *activationUseCase) IsRedeemed(ctx context.Context, code string) (bool, error) {
	redeemed, err := a.redemptionRepo.IsRedeemed(ctx, activationDomain.HashCode(code), a.machine.MachineID())
	if err != nil {
		return false, storeFailure(ctx, "check redemption", err)
	}
	return redeemed, nil
}

// Redeem converts an activation code into capability grants. See the
// interface documentation for the full order; the short version is
// validate, replay check, then grants and the redemption mark in one
// transaction.
func (a *activationUseCase) Redeem(ctx context.Context, code, gameScope string) ([]string, error) {
	parsed, err := a.codeService.Validate(code)
	if err != nil {
		outcome, detail := classifyCodeError(err)
		a.appendAudit(ctx, gameScope, outcome, detail)
		return nil, err
	}

	machineID := a.machine.MachineID()
	codeHash := activationDomain.HashCode(code)

	redeemed, err := a.redemptionRepo.IsRedeemed(ctx, codeHash, machineID)
	if err != nil {
		return nil, storeFailure(ctx, "check redemption", err)
	}
	if redeemed {
		a.appendAudit(ctx, gameScope, entitlementDomain.OutcomeDenied, "code already redeemed")
		return nil, activationDomain.ErrAlreadyRedeemed
	}

	var lifetime *time.Duration
	if parsed.Bundle.IsTrial() {
		trial := a.config.TrialLifetime
		lifetime = &trial
	}

	record := &activationDomain.RedemptionRecord{
		CodeHash:   codeHash,
		MachineID:  machineID,
		GameScope:  gameScope,
		RedeemedAt: time.Now().UTC(),
	}

	// Grants and the redemption mark land or fail together. A code must
	// never be consumed with half its bundle missing, and a failed mark
	// must not leave grants behind for a code that can be redeemed again.
	actions := parsed.Bundle.Actions()
	granted := make([]string, 0, len(actions))
	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, action := range actions {
			if _, err := a.granter.GrantCapability(ctx, action, gameScope, lifetime); err != nil {
				return err
			}
			granted = append(granted, string(action))
		}

		if err := a.redemptionRepo.MarkRedeemed(ctx, record); err != nil {
			if apperrors.Is(err, activationDomain.ErrAlreadyRedeemed) {
				// Lost the race against a concurrent redemption of the same code.
				return activationDomain.ErrAlreadyRedeemed
			}
			return storeFailure(ctx, "mark redemption", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, activationDomain.ErrAlreadyRedeemed) {
			a.appendAudit(ctx, gameScope, entitlementDomain.OutcomeDenied, "code already redeemed")
			return nil, activationDomain.ErrAlreadyRedeemed
		}
		return nil, err
	}

	a.appendAudit(
		ctx, gameScope, entitlementDomain.OutcomeSuccess,
		"redeemed "+parsed.Bundle.String()+" bundle",
	)
	return granted, nil
}

// appendAudit writes one redemption audit entry, best effort. A cancelled
// context suppresses the write; any other failure is logged and swallowed
// because the audit trail must never change a redemption result.
func (a *activationUseCase) appendAudit(
	ctx context.Context,
	gameScope string,
	outcome entitlementDomain.Outcome,
	detail string,
) {
	if ctx.Err() != nil {
		return
	}

	entry := &entitlementDomain.AuditEntry{
		ID:        uuid.Must(uuid.NewV7()),
		Timestamp: time.Now().UTC(),
		Action:    auditActionRedeem,
		GameScope: gameScope,
		Outcome:   outcome,
		Detail:    detail,
	}

	if err := a.auditRecorder.Append(ctx, entry); err != nil {
		slog.Warn("failed to append audit entry",
			slog.String("action", auditActionRedeem),
			slog.String("game_scope", gameScope),
			slog.String("outcome", string(outcome)),
			slog.Any("error", err),
		)
	}
}

// classifyCodeError maps a code validation failure to its audit outcome.
// A forged tag on a well-formed code is the tamper signal; a malformed
// code is an ordinary denial, most likely a typo.
func classifyCodeError(err error) (entitlementDomain.Outcome, string) {
	if apperrors.Is(err, entitlementDomain.ErrInvalidSignature) {
		return entitlementDomain.OutcomeTamperDetected, "code tag mismatch"
	}
	return entitlementDomain.OutcomeDenied, "unknown activation code"
}

// storeFailure maps a repository error to ErrStoreFailure. Context
// cancellation passes through untouched so a cancelled request is not
// reported as a store outage.
func storeFailure(ctx context.Context, operation string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	return apperrors.Wrapf(activationDomain.ErrStoreFailure, "%s: %v", operation, err)
}

// NewActivationUseCase creates an ActivationUseCase with the provided dependencies.
func NewActivationUseCase(
	cfg *config.Config,
	codeService activationService.CodeService,
	txManager database.TxManager,
	redemptionRepo RedemptionRepository,
	granter CapabilityGranter,
	auditRecorder AuditRecorder,
	machine machineid.Provider,
) ActivationUseCase {
	return &activationUseCase{
		config:         cfg,
		codeService:    codeService,
		txManager:      txManager,
		redemptionRepo: redemptionRepo,
		granter:        granter,
		auditRecorder:  auditRecorder,
		machine:        machine,
	}
}
