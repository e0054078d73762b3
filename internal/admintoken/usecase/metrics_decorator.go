package usecase

import (
	"context"
	"time"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/metrics"
)

// adminTokenUseCaseWithMetrics decorates AdminTokenUseCase with metrics instrumentation.
type adminTokenUseCaseWithMetrics struct {
	next    AdminTokenUseCase
	metrics metrics.BusinessMetrics
}

// NewAdminTokenUseCaseWithMetrics wraps an AdminTokenUseCase with metrics recording.
func NewAdminTokenUseCaseWithMetrics(useCase AdminTokenUseCase, m metrics.BusinessMetrics) AdminTokenUseCase {
	return &adminTokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// GenerateToken records metrics for token issuance.
func (a *adminTokenUseCaseWithMetrics) GenerateToken(
	ctx context.Context,
	scope string,
	lifetime time.Duration,
	method adminDomain.Method,
) (*adminDomain.AdminToken, error) {
	start := time.Now()
	token, err := a.next.GenerateToken(ctx, scope, lifetime, method)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "admintoken", "generate", status)
	a.metrics.RecordDuration(ctx, "admintoken", "generate", time.Since(start), status)

	return token, err
}

// ValidateToken records metrics for token validation, with the denial
// vocabulary as the status label.
func (a *adminTokenUseCaseWithMetrics) ValidateToken(
	ctx context.Context,
	token *adminDomain.AdminToken,
) error {
	start := time.Now()
	err := a.next.ValidateToken(ctx, token)

	status := tokenStatus(err)

	a.metrics.RecordOperation(ctx, "admintoken", "validate", status)
	a.metrics.RecordDuration(ctx, "admintoken", "validate", time.Since(start), status)

	return err
}

// SaveToken records metrics for token persistence.
func (a *adminTokenUseCaseWithMetrics) SaveToken(
	ctx context.Context,
	token *adminDomain.AdminToken,
) error {
	start := time.Now()
	err := a.next.SaveToken(ctx, token)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "admintoken", "save", status)
	a.metrics.RecordDuration(ctx, "admintoken", "save", time.Since(start), status)

	return err
}

// LoadAndValidateToken records metrics for token loads. A missing token is
// its own status; most machines never hold an admin token, and counting
// that as an error would drown real failures.
func (a *adminTokenUseCaseWithMetrics) LoadAndValidateToken(
	ctx context.Context,
) (*adminDomain.AdminToken, error) {
	start := time.Now()
	token, err := a.next.LoadAndValidateToken(ctx)

	status := tokenStatus(err)

	a.metrics.RecordOperation(ctx, "admintoken", "load", status)
	a.metrics.RecordDuration(ctx, "admintoken", "load", time.Since(start), status)

	return token, err
}

// RevokeToken records metrics for token revocations.
func (a *adminTokenUseCaseWithMetrics) RevokeToken(ctx context.Context) error {
	start := time.Now()
	err := a.next.RevokeToken(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "admintoken", "revoke", status)
	a.metrics.RecordDuration(ctx, "admintoken", "revoke", time.Since(start), status)

	return err
}

// ActivateDebug records metrics for debug activations, with password
// rejections as a denied status rather than an error.
func (a *adminTokenUseCaseWithMetrics) ActivateDebug(
	ctx context.Context,
	password, scope string,
) (*adminDomain.AdminToken, error) {
	start := time.Now()
	token, err := a.next.ActivateDebug(ctx, password, scope)

	status := "success"
	switch {
	case apperrors.Is(err, adminDomain.ErrInvalidDebugPassword),
		apperrors.Is(err, adminDomain.ErrDebugActivationDisabled):
		status = "denied"
	case err != nil:
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "admintoken", "activate_debug", status)
	a.metrics.RecordDuration(ctx, "admintoken", "activate_debug", time.Since(start), status)

	return token, err
}

// GenerateBreakGlassChallenge records metrics for challenge generation.
func (a *adminTokenUseCaseWithMetrics) GenerateBreakGlassChallenge(ctx context.Context) (string, error) {
	start := time.Now()
	challenge, err := a.next.GenerateBreakGlassChallenge(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "admintoken", "break_glass_challenge", status)
	a.metrics.RecordDuration(ctx, "admintoken", "break_glass_challenge", time.Since(start), status)

	return challenge, err
}

// ValidateBreakGlassResponse records metrics for break-glass attempts. A
// rejected attempt is a denied status; a spike of those on one machine is
// the signal worth alerting on.
func (a *adminTokenUseCaseWithMetrics) ValidateBreakGlassResponse(
	ctx context.Context,
	challenge, response, scope string,
) (*adminDomain.AdminToken, error) {
	start := time.Now()
	token, err := a.next.ValidateBreakGlassResponse(ctx, challenge, response, scope)

	status := "success"
	switch {
	case apperrors.Is(err, adminDomain.ErrBreakGlassRejected):
		status = "denied"
	case err != nil:
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "admintoken", "break_glass_respond", status)
	a.metrics.RecordDuration(ctx, "admintoken", "break_glass_respond", time.Since(start), status)

	return token, err
}

// GetDiagnostics records metrics for diagnostics snapshots.
func (a *adminTokenUseCaseWithMetrics) GetDiagnostics(ctx context.Context) (*adminDomain.Diagnostics, error) {
	start := time.Now()
	diagnostics, err := a.next.GetDiagnostics(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "admintoken", "diagnostics", status)
	a.metrics.RecordDuration(ctx, "admintoken", "diagnostics", time.Since(start), status)

	return diagnostics, err
}

// tokenStatus maps a token validation result to its metrics status label.
func tokenStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.Is(err, adminDomain.ErrInvalidSignature):
		return "tamper_detected"
	case apperrors.Is(err, adminDomain.ErrExpired):
		return "expired"
	case apperrors.Is(err, adminDomain.ErrTokenNotFound):
		return "not_found"
	}
	return "error"
}
