// Package validator adapts go-playground/validator to echo's Validator
// interface so request DTOs declare their rules as struct tags.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// RequestValidator validates bound request payloads (source URLs,
// history limits) before they reach the pipeline service
type RequestValidator struct {
	v *validator.Validate
}

// New creates the validator wired for echo
func New() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator
func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}
