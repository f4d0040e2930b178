package mailreg

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegistrationForm carries the signup form input.
type RegistrationForm struct {
	Email string `validate:"required,email"`
}

// Validate checks the email address syntax. Uniqueness is checked by the
// registration workflow, which has access to storage.
func (f *RegistrationForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return &Error{
			Code:    ErrInvalid,
			Message: "Enter a valid email address.",
			Op:      "RegistrationForm.Validate",
			Err:     err,
		}
	}
	return nil
}
