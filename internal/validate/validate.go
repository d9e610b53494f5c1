// Package validate wraps go-playground/validator for request DTOs and adds
// the password-policy rule enforced on signup and reset. Validation
// failures surface as apperr.Validation errors carrying a field -> message
// map, so the boundary translator can emit structured field errors.
package validate

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kasraf/service-desk/internal/apperr"
)

// Validator validates request structs against their `validate` tags.
type Validator struct{ v *validator.Validate }

// New builds a Validator with the custom password rule registered and
// field names taken from json tags so error maps match the wire format.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password", passwordRule)
	return &Validator{v: v}
}

// Struct validates s and returns nil or an apperr validation error with
// one message per failing field.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Internal("validation failed").WithCause(err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = messageFor(fe)
	}
	return apperr.Validation("invalid request", fields)
}

// passwordRule enforces the account password policy: minimum 8 characters
// with at least one uppercase, one lowercase, one digit and one symbol.
func passwordRule(fl validator.FieldLevel) bool {
	return PasswordOK(fl.Field().String())
}

// PasswordOK reports whether pw satisfies the password policy.
func PasswordOK(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "password":
		return "must be at least 8 characters with upper, lower, digit and symbol"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "len":
		return "has the wrong length"
	case "numeric":
		return "must be numeric"
	case "oneof":
		return "is not an accepted value"
	default:
		return "is invalid"
	}
}
