// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/savegatehq/savegate/internal/validation"
)

// CheckEntitlementRequest contains the parameters for an entitlement check.
type CheckEntitlementRequest struct {
	Action    string `json:"action"`
	GameScope string `json:"game_scope"`
}

// Validate checks if the check entitlement request is valid.
// Unknown actions are rejected later by the domain, with a stable message.
func (r *CheckEntitlementRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Action,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoPipe,
		),
		validation.Field(&r.GameScope,
			validation.Required,
			customValidation.ScopeFormat,
		),
	)
}

// GrantCapabilityRequest contains the parameters for granting a capability.
// A missing lifetime grants a capability that never expires.
type GrantCapabilityRequest struct {
	Action          string `json:"action"`
	GameScope       string `json:"game_scope"`
	LifetimeSeconds *int64 `json:"lifetime_seconds,omitempty"`
}

// Validate checks if the grant capability request is valid.
func (r *GrantCapabilityRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Action,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoPipe,
		),
		validation.Field(&r.GameScope,
			validation.Required,
			customValidation.ScopeFormat,
		),
		validation.Field(&r.LifetimeSeconds,
			validation.Min(int64(1)),
		),
	)
}

// RevokeCapabilityRequest contains the parameters for revoking a capability.
type RevokeCapabilityRequest struct {
	CapabilityID string `json:"capability_id"`
}

// Validate checks if the revoke capability request is valid.
// Capability IDs are 16 random bytes in hex.
func (r *RevokeCapabilityRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CapabilityID,
			validation.Required,
			customValidation.NoWhitespace,
			validation.Length(32, 32),
		),
	)
}

// RecordConsentRequest contains the parameters for recording user consent for
// a game scope. The text hash pins the consent to the exact text shown.
type RecordConsentRequest struct {
	GameScope       string `json:"game_scope"`
	ConsentVersion  int    `json:"consent_version"`
	ConsentTextHash string `json:"consent_text_hash"`
}

// Validate checks if the record consent request is valid.
func (r *RecordConsentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GameScope,
			validation.Required,
			customValidation.ScopeFormat,
		),
		validation.Field(&r.ConsentVersion,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&r.ConsentTextHash,
			validation.Required,
			customValidation.NoWhitespace,
			validation.Length(64, 64),
		),
	)
}
