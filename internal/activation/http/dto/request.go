// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/savegatehq/savegate/internal/validation"
)

// GenerateCodeRequest contains the parameters for minting an activation code.
// The bundle is named, not numbered; ParseBundleName resolves it.
type GenerateCodeRequest struct {
	Bundle string `json:"bundle"`
}

// Validate checks if the generate code request is valid.
func (r *GenerateCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Bundle,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// ValidateCodeRequest contains the code to inspect. The code arrives as the
// user typed it; normalization happens in the domain.
type ValidateCodeRequest struct {
	Code string `json:"code"`
}

// Validate checks if the validate code request is valid.
func (r *ValidateCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 64),
		),
	)
}

// RedeemCodeRequest contains the parameters for redeeming an activation code
// against a game scope on this machine.
type RedeemCodeRequest struct {
	Code      string `json:"code"`
	GameScope string `json:"game_scope"`
}

// Validate checks if the redeem code request is valid.
func (r *RedeemCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 64),
		),
		validation.Field(&r.GameScope,
			validation.Required,
			customValidation.ScopeFormat,
		),
	)
}
