// Package mocks provides mock implementations for testing entitlement consumers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
)

// MockEntitlementUseCase is a mock implementation of EntitlementUseCase for testing.
type MockEntitlementUseCase struct {
	mock.Mock
}

// CheckEntitlement mocks the CheckEntitlement method of EntitlementUseCase.
func (m *MockEntitlementUseCase) CheckEntitlement(
	ctx context.Context,
	action entitlementDomain.Action,
	gameScope string,
) (*entitlementDomain.Capability, error) {
	args := m.Called(ctx, action, gameScope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entitlementDomain.Capability), args.Error(1)
}

// GrantCapability mocks the GrantCapability method of EntitlementUseCase.
func (m *MockEntitlementUseCase) GrantCapability(
	ctx context.Context,
	action entitlementDomain.Action,
	gameScope string,
	lifetime *time.Duration,
) (*entitlementDomain.Capability, error) {
	args := m.Called(ctx, action, gameScope, lifetime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entitlementDomain.Capability), args.Error(1)
}

// RevokeCapability mocks the RevokeCapability method of EntitlementUseCase.
func (m *MockEntitlementUseCase) RevokeCapability(ctx context.Context, capabilityID string) error {
	args := m.Called(ctx, capabilityID)
	return args.Error(0)
}

// PurgeExpired mocks the PurgeExpired method of EntitlementUseCase.
func (m *MockEntitlementUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// ListAuditEntries mocks the ListAuditEntries method of EntitlementUseCase.
func (m *MockEntitlementUseCase) ListAuditEntries(
	ctx context.Context,
	offset, limit int,
) ([]*entitlementDomain.AuditEntry, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entitlementDomain.AuditEntry), args.Error(1)
}

// CountAuditEntries mocks the CountAuditEntries method of EntitlementUseCase.
func (m *MockEntitlementUseCase) CountAuditEntries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// PruneAuditEntries mocks the PruneAuditEntries method of EntitlementUseCase.
func (m *MockEntitlementUseCase) PruneAuditEntries(ctx context.Context, days int) (int64, error) {
	args := m.Called(ctx, days)
	return args.Get(0).(int64), args.Error(1)
}

// RecordConsent mocks the RecordConsent method of EntitlementUseCase.
func (m *MockEntitlementUseCase) RecordConsent(
	ctx context.Context,
	gameScope string,
	version int,
	textHash string,
) error {
	args := m.Called(ctx, gameScope, version, textHash)
	return args.Error(0)
}

// GetConsent mocks the GetConsent method of EntitlementUseCase.
func (m *MockEntitlementUseCase) GetConsent(
	ctx context.Context,
	gameScope string,
) (*entitlementDomain.ConsentRecord, error) {
	args := m.Called(ctx, gameScope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entitlementDomain.ConsentRecord), args.Error(1)
}

// HasConsent mocks the HasConsent method of EntitlementUseCase.
func (m *MockEntitlementUseCase) HasConsent(ctx context.Context, gameScope string) (bool, error) {
	args := m.Called(ctx, gameScope)
	return args.Bool(0), args.Error(1)
}
