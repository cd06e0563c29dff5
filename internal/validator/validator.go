// Package validator provides local input validation for auth flows.
// Signup rejects bad input here, before any network call is attempted.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "fincoach/internal/errors"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// A phone-type identifier must be exactly 10 digits.
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) == 10 && digitsOnly.MatchString(s)
	})
	return v
}

// SignupInput carries the fields validated before a signup request is sent.
type SignupInput struct {
	PhoneNumber     string `validate:"required,phone10"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"omitempty,eqfield=Password"`
	FullName        string `validate:"required"`
	Email           string `validate:"omitempty,email"`
}

// ValidateSignup checks the signup fields locally and returns an
// INVALID_REQUEST error describing the first failing rule.
func ValidateSignup(in SignupInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, err)
	}
	return apperrors.WithMessage(apperrors.ErrInvalidRequest, describe(errs[0]))
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "PhoneNumber":
		return "Phone number must be exactly 10 digits"
	case "Password":
		if fe.Tag() == "min" {
			return "Password must be at least 6 characters"
		}
		return "Password is required"
	case "ConfirmPassword":
		return "Passwords do not match"
	case "FullName":
		return "Full name is required"
	case "Email":
		return "Email address is not valid"
	default:
		return fmt.Sprintf("%s failed validation (%s)", strings.ToLower(fe.Field()), fe.Tag())
	}
}
