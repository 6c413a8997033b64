package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/vicebank/vicebank-client/internal/pkg/validation"
)

// echoValidator lets handlers call c.Validate(req) with the shared field
// messages.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echo.Validator backed by go-playground/validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validation.New()}
}

func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		return errors.New(validation.Join(err))
	}
	return nil
}
