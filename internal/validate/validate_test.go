package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/validate"
)

func TestPasswordOK(t *testing.T) {
	tests := []struct {
		pw   string
		want bool
	}{
		{"Str0ng!pass", true},
		{"Aa1!Aa1!", true},
		{"short1!", false},       // under 8 chars
		{"alllowercase1!", false}, // no upper
		{"ALLUPPERCASE1!", false}, // no lower
		{"NoDigits!!", false},
		{"NoSymbols11", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validate.PasswordOK(tt.pw), "password %q", tt.pw)
	}
}

func TestStruct_FieldErrors(t *testing.T) {
	type signup struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,password"`
	}

	v := validate.New()

	require.NoError(t, v.Struct(signup{Email: "sara@example.com", Password: "Str0ng!pass"}))

	err := v.Struct(signup{Email: "not-an-email", Password: "weak"})
	require.Error(t, err)
	ae := apperr.From(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeValidation, ae.Code)

	// Field names come from the json tags, matching the wire format.
	assert.Contains(t, ae.Fields, "email")
	assert.Contains(t, ae.Fields, "password")
	assert.NotContains(t, ae.Fields, "Email")
}

func TestStruct_RequiredOnly(t *testing.T) {
	type login struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	v := validate.New()
	err := v.Struct(login{})
	require.Error(t, err)
	ae := apperr.From(err)
	require.NotNil(t, ae)
	assert.Equal(t, "is required", ae.Fields["email"])
	assert.Equal(t, "is required", ae.Fields["password"])
}
