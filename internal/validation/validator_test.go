package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPlausibleEmail(t *testing.T) {
	valid := []string{"student@example.com", "a.b+c@mail.co.in", "X@Y.Z"}
	invalid := []string{"", "not-an-email", "a@b", "a @b.com", "a@b .com", "a@@b.com", "@b.com", "a@.com."}

	for _, e := range valid {
		assert.Truef(t, IsPlausibleEmail(e), "expected %q to be accepted", e)
	}
	for _, e := range invalid {
		assert.Falsef(t, IsPlausibleEmail(e), "expected %q to be rejected", e)
	}
}

type sample struct {
	Email string `json:"email" validate:"required,plainemail"`
	Code  string `json:"otp" validate:"required"`
}

func TestValidatorStructReportsJSONFieldNames(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(sample{Email: "student@example.com", Code: "123456"}))

	err := v.Struct(sample{Email: "nope"})
	require.Error(t, err)

	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "plainemail", fe["email"])
	assert.Equal(t, "required", fe["otp"])
	assert.Equal(t, "validation failed: email: plainemail, otp: required", err.Error())
}
