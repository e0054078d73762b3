// Package mocks provides mock implementations for testing admin token consumers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
)

// MockAdminTokenUseCase is a mock implementation of AdminTokenUseCase for testing.
type MockAdminTokenUseCase struct {
	mock.Mock
}

// GenerateToken mocks the GenerateToken method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) GenerateToken(
	ctx context.Context,
	scope string,
	lifetime time.Duration,
	method adminDomain.Method,
) (*adminDomain.AdminToken, error) {
	args := m.Called(ctx, scope, lifetime, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminDomain.AdminToken), args.Error(1)
}

// ValidateToken mocks the ValidateToken method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) ValidateToken(ctx context.Context, token *adminDomain.AdminToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// SaveToken mocks the SaveToken method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) SaveToken(ctx context.Context, token *adminDomain.AdminToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// LoadAndValidateToken mocks the LoadAndValidateToken method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) LoadAndValidateToken(ctx context.Context) (*adminDomain.AdminToken, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminDomain.AdminToken), args.Error(1)
}

// RevokeToken mocks the RevokeToken method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) RevokeToken(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ActivateDebug mocks the ActivateDebug method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) ActivateDebug(
	ctx context.Context,
	password, scope string,
) (*adminDomain.AdminToken, error) {
	args := m.Called(ctx, password, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminDomain.AdminToken), args.Error(1)
}

// GenerateBreakGlassChallenge mocks the GenerateBreakGlassChallenge method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) GenerateBreakGlassChallenge(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// ValidateBreakGlassResponse mocks the ValidateBreakGlassResponse method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) ValidateBreakGlassResponse(
	ctx context.Context,
	challenge, response, scope string,
) (*adminDomain.AdminToken, error) {
	args := m.Called(ctx, challenge, response, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminDomain.AdminToken), args.Error(1)
}

// GetDiagnostics mocks the GetDiagnostics method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) GetDiagnostics(ctx context.Context) (*adminDomain.Diagnostics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adminDomain.Diagnostics), args.Error(1)
}
