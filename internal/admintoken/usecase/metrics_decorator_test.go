package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	"github.com/savegatehq/savegate/internal/admintoken/usecase"
	usecaseMocks "github.com/savegatehq/savegate/internal/admintoken/usecase/mocks"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics to avoid dependency issues.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func TestAdminTokenUseCaseWithMetrics(t *testing.T) {
	mockNext := &usecaseMocks.MockAdminTokenUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewAdminTokenUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()

	token := &adminDomain.AdminToken{
		ID:     "a1b2c3d4e5f60718293a4b5c6d7e8f90",
		Scope:  "skyrim",
		Method: adminDomain.MethodDebugEnv,
	}

	t.Run("Generate success", func(t *testing.T) {
		mockNext.On("GenerateToken", ctx, "skyrim", time.Hour, adminDomain.MethodTokenFile).
			Return(token, nil).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "generate", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "admintoken", "generate", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		res, err := uc.GenerateToken(ctx, "skyrim", time.Hour, adminDomain.MethodTokenFile)
		assert.NoError(t, err)
		assert.Equal(t, token, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Validate tamper records outcome status", func(t *testing.T) {
		mockNext.On("ValidateToken", ctx, token).
			Return(adminDomain.ErrInvalidSignature).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "validate", "tamper_detected").Return().Once()
		mockMetrics.On(
			"RecordDuration", ctx, "admintoken", "validate", mock.AnythingOfType("time.Duration"), "tamper_detected",
		).
			Return().
			Once()

		err := uc.ValidateToken(ctx, token)
		assert.Error(t, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Validate expired records outcome status", func(t *testing.T) {
		mockNext.On("ValidateToken", ctx, token).
			Return(adminDomain.ErrExpired).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "validate", "expired").Return().Once()
		mockMetrics.On(
			"RecordDuration", ctx, "admintoken", "validate", mock.AnythingOfType("time.Duration"), "expired",
		).
			Return().
			Once()

		err := uc.ValidateToken(ctx, token)
		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Load missing token records not found status", func(t *testing.T) {
		mockNext.On("LoadAndValidateToken", ctx).
			Return(nil, adminDomain.ErrTokenNotFound).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "load", "not_found").Return().Once()
		mockMetrics.On(
			"RecordDuration", ctx, "admintoken", "load", mock.AnythingOfType("time.Duration"), "not_found",
		).
			Return().
			Once()

		_, err := uc.LoadAndValidateToken(ctx)
		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Save success", func(t *testing.T) {
		mockNext.On("SaveToken", ctx, token).
			Return(nil).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "save", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "admintoken", "save", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		err := uc.SaveToken(ctx, token)
		assert.NoError(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Revoke error", func(t *testing.T) {
		mockNext.On("RevokeToken", ctx).
			Return(errors.New("error")).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "revoke", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "admintoken", "revoke", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		err := uc.RevokeToken(ctx)
		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("ActivateDebug wrong password records denied status", func(t *testing.T) {
		mockNext.On("ActivateDebug", ctx, "wrong", "skyrim").
			Return(nil, adminDomain.ErrInvalidDebugPassword).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "activate_debug", "denied").Return().Once()
		mockMetrics.On(
			"RecordDuration", ctx, "admintoken", "activate_debug", mock.AnythingOfType("time.Duration"), "denied",
		).
			Return().
			Once()

		_, err := uc.ActivateDebug(ctx, "wrong", "skyrim")
		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Break-glass challenge success", func(t *testing.T) {
		mockNext.On("GenerateBreakGlassChallenge", ctx).
			Return("MFRG-GZDF-MZTW-Q2LK", nil).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "break_glass_challenge", "success").Return().Once()
		mockMetrics.On(
			"RecordDuration", ctx, "admintoken", "break_glass_challenge", mock.AnythingOfType("time.Duration"), "success",
		).
			Return().
			Once()

		challenge, err := uc.GenerateBreakGlassChallenge(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "MFRG-GZDF-MZTW-Q2LK", challenge)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Break-glass rejection records denied status", func(t *testing.T) {
		mockNext.On("ValidateBreakGlassResponse", ctx, "MFRG-GZDF-MZTW-Q2LK", "AAAA-AAAA-AAAA-AAAA", "skyrim").
			Return(nil, adminDomain.ErrBreakGlassRejected).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "break_glass_respond", "denied").Return().Once()
		mockMetrics.On(
			"RecordDuration", ctx, "admintoken", "break_glass_respond", mock.AnythingOfType("time.Duration"), "denied",
		).
			Return().
			Once()

		_, err := uc.ValidateBreakGlassResponse(ctx, "MFRG-GZDF-MZTW-Q2LK", "AAAA-AAAA-AAAA-AAAA", "skyrim")
		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Break-glass success", func(t *testing.T) {
		breakGlassToken := &adminDomain.AdminToken{
			ID:     "ffffffffffffffffffffffffffffffff",
			Scope:  "skyrim",
			Method: adminDomain.MethodBreakGlass,
		}

		mockNext.On("ValidateBreakGlassResponse", ctx, "MFRG-GZDF-MZTW-Q2LK", "GOOD-GOOD-GOOD-GOOD", "skyrim").
			Return(breakGlassToken, nil).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "break_glass_respond", "success").Return().Once()
		mockMetrics.On(
			"RecordDuration", ctx, "admintoken", "break_glass_respond", mock.AnythingOfType("time.Duration"), "success",
		).
			Return().
			Once()

		res, err := uc.ValidateBreakGlassResponse(ctx, "MFRG-GZDF-MZTW-Q2LK", "GOOD-GOOD-GOOD-GOOD", "skyrim")
		assert.NoError(t, err)
		assert.Equal(t, breakGlassToken, res)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Diagnostics success", func(t *testing.T) {
		diagnostics := &adminDomain.Diagnostics{StoreHealthy: true}

		mockNext.On("GetDiagnostics", ctx).
			Return(diagnostics, nil).
			Once()
		mockMetrics.On("RecordOperation", ctx, "admintoken", "diagnostics", "success").Return().Once()
		mockMetrics.On(
			"RecordDuration", ctx, "admintoken", "diagnostics", mock.AnythingOfType("time.Duration"), "success",
		).
			Return().
			Once()

		res, err := uc.GetDiagnostics(ctx)
		assert.NoError(t, err)
		assert.Equal(t, diagnostics, res)
		mockMetrics.AssertExpectations(t)
	})
}
