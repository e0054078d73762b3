// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoPipe validates that a string does not contain the '|' separator used by
// the canonical signing strings. Anything signed must stay unambiguous.
var NoPipe = validation.NewStringRuleWithError(
	func(s string) bool {
		return !strings.Contains(s, "|")
	},
	validation.NewError("validation_no_pipe", "must not contain the '|' character"),
)

// ScopeFormat validates a game scope: either the "*" wildcard or a non-blank
// name without whitespace or the canonical separator.
var ScopeFormat = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "*" {
			return true
		}
		if strings.TrimSpace(s) == "" || s != strings.TrimSpace(s) {
			return false
		}
		return !strings.ContainsAny(s, "| \t")
	},
	validation.NewError("validation_scope_format", "must be '*' or a scope name without spaces or '|'"),
)
