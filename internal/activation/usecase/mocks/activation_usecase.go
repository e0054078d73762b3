// Package mocks provides mock implementations for testing activation consumers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
)

// MockActivationUseCase is a mock implementation of ActivationUseCase for testing.
type MockActivationUseCase struct {
	mock.Mock
}

// GenerateCode mocks the GenerateCode method of ActivationUseCase.
func (m *MockActivationUseCase) GenerateCode(
	ctx context.Context,
	bundle activationDomain.Bundle,
) (*activationDomain.ActivationCode, error) {
	args := m.Called(ctx, bundle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activationDomain.ActivationCode), args.Error(1)
}

// ValidateCode mocks the ValidateCode method of ActivationUseCase.
func (m *MockActivationUseCase) ValidateCode(
	ctx context.Context,
	code string,
) (*activationDomain.ActivationCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activationDomain.ActivationCode), args.Error(1)
}

// IsRedeemed mocks the IsRedeemed method of ActivationUseCase.
func (m *MockActivationUseCase) IsRedeemed(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// Redeem mocks the Redeem method of ActivationUseCase.
func (m *MockActivationUseCase) Redeem(ctx context.Context, code, gameScope string) ([]string, error) {
	args := m.Called(ctx, code, gameScope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
