// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
)

// ActivationCodeResponse represents an activation code in API responses.
// Actions lists what the bundle unlocks so the UI can describe the code
// before the user commits to redeeming it.
type ActivationCodeResponse struct {
	Code    string   `json:"code"`
	Bundle  string   `json:"bundle"`
	Actions []string `json:"actions"`
}

// MapActivationCodeToResponse converts a domain activation code to an API response.
func MapActivationCodeToResponse(code *activationDomain.ActivationCode) ActivationCodeResponse {
	actions := code.Bundle.Actions()
	names := make([]string, 0, len(actions))
	for _, action := range actions {
		names = append(names, string(action))
	}
	return ActivationCodeResponse{
		Code:    code.Code,
		Bundle:  code.Bundle.String(),
		Actions: names,
	}
}

// ValidateCodeResponse reports what a code holds and whether this machine has
// already redeemed it.
type ValidateCodeResponse struct {
	Bundle   string   `json:"bundle"`
	Actions  []string `json:"actions"`
	Redeemed bool     `json:"redeemed"`
}

// MapValidateCodeToResponse converts a validated code and its redemption state
// to an API response.
func MapValidateCodeToResponse(code *activationDomain.ActivationCode, redeemed bool) ValidateCodeResponse {
	mapped := MapActivationCodeToResponse(code)
	return ValidateCodeResponse{
		Bundle:   mapped.Bundle,
		Actions:  mapped.Actions,
		Redeemed: redeemed,
	}
}

// RedeemCodeResponse lists the actions granted by a successful redemption.
type RedeemCodeResponse struct {
	GrantedActions []string `json:"granted_actions"`
}
