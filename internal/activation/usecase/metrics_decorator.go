package usecase

import (
	"context"
	"time"

	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/metrics"
)

// activationUseCaseWithMetrics decorates ActivationUseCase with metrics instrumentation.
type activationUseCaseWithMetrics struct {
	next    ActivationUseCase
	metrics metrics.BusinessMetrics
}

// NewActivationUseCaseWithMetrics wraps an ActivationUseCase with metrics recording.
func NewActivationUseCaseWithMetrics(useCase ActivationUseCase, m metrics.BusinessMetrics) ActivationUseCase {
	return &activationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// GenerateCode records metrics for code generation.
func (a *activationUseCaseWithMetrics) GenerateCode(
	ctx context.Context,
	bundle activationDomain.Bundle,
) (*activationDomain.ActivationCode, error) {
	start := time.Now()
	code, err := a.next.GenerateCode(ctx, bundle)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "activation", "generate", status)
	a.metrics.RecordDuration(ctx, "activation", "generate", time.Since(start), status)

	return code, err
}

// ValidateCode records metrics for code validation. The status label
// carries the denial vocabulary because a rejected code is an ordinary
// result here, not an operational failure.
func (a *activationUseCaseWithMetrics) ValidateCode(
	ctx context.Context,
	code string,
) (*activationDomain.ActivationCode, error) {
	start := time.Now()
	parsed, err := a.next.ValidateCode(ctx, code)

	status := codeStatus(err)

	a.metrics.RecordOperation(ctx, "activation", "validate", status)
	a.metrics.RecordDuration(ctx, "activation", "validate", time.Since(start), status)

	return parsed, err
}

// IsRedeemed records metrics for redemption lookups.
func (a *activationUseCaseWithMetrics) IsRedeemed(ctx context.Context, code string) (bool, error) {
	start := time.Now()
	redeemed, err := a.next.IsRedeemed(ctx, code)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "activation", "is_redeemed", status)
	a.metrics.RecordDuration(ctx, "activation", "is_redeemed", time.Since(start), status)

	return redeemed, err
}

// Redeem records metrics for code redemptions, with denial outcomes as the
// status label.
func (a *activationUseCaseWithMetrics) Redeem(
	ctx context.Context,
	code, gameScope string,
) ([]string, error) {
	start := time.Now()
	granted, err := a.next.Redeem(ctx, code, gameScope)

	status := codeStatus(err)

	a.metrics.RecordOperation(ctx, "activation", "redeem", status)
	a.metrics.RecordDuration(ctx, "activation", "redeem", time.Since(start), status)

	return granted, err
}

// codeStatus maps a validation or redemption result to its metrics status
// label, mirroring the audit outcome vocabulary.
func codeStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.Is(err, activationDomain.ErrAlreadyRedeemed):
		return "already_redeemed"
	case apperrors.Is(err, entitlementDomain.ErrInvalidSignature):
		return "tamper_detected"
	case apperrors.Is(err, activationDomain.ErrUnknownCode):
		return "unknown_code"
	}
	return "error"
}
