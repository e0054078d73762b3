// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/savegatehq/savegate/internal/validation"
)

// CreateTokenRequest contains the parameters for bootstrapping an admin
// token with the debug password.
type CreateTokenRequest struct {
	Password string `json:"password"`
	Scope    string `json:"scope"`
}

// Validate checks if the create token request is valid.
func (r *CreateTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Scope,
			validation.Required,
			customValidation.ScopeFormat,
		),
	)
}

// BreakGlassRespondRequest contains a break-glass challenge/response pair
// and the scope the issued token should cover. Challenge and response
// arrive as the operator typed them; normalization happens in the service.
type BreakGlassRespondRequest struct {
	Challenge string `json:"challenge"`
	Response  string `json:"response"`
	Scope     string `json:"scope"`
}

// Validate checks if the break-glass respond request is valid.
func (r *BreakGlassRespondRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Challenge,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 64),
		),
		validation.Field(&r.Response,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 64),
		),
		validation.Field(&r.Scope,
			validation.Required,
			customValidation.ScopeFormat,
		),
	)
}
