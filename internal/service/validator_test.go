package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRules(t *testing.T) {
	cases := map[string]string{
		"Hana":         "",
		"ሐና":           "",
		"Mary-Jane":    "",
		"Abel Tesfaye": "",
		"":             "First name is required",
		"   ":          "First name is required",
		"Abel2":        "Can only contain letters and hyphens",
		"Abel  Kebede": "Can only contain letters and hyphens",
		"Abel Kebede Tadesse": "Please enter only first and last name",
	}
	for in, want := range cases {
		assert.Equal(t, want, nameError(in, "First name is required"), in)
	}
}

func TestPhoneRules(t *testing.T) {
	assert.Equal(t, "", phoneError("0911 223 344"))
	assert.Equal(t, "Phone number is required", phoneError(""))
	assert.Equal(t, "Phone number must be 10 digits", phoneError("091122334"))
	assert.Equal(t, "Phone number must start with 09", phoneError("0711223344"))
}

func TestAgeRules(t *testing.T) {
	assert.Equal(t, "", ageError("14"))
	assert.Equal(t, "", ageError("19"))
	assert.Equal(t, "Age must be between 14 and 19", ageError("13"))
	assert.Equal(t, "Age must be between 14 and 19", ageError("20"))
	assert.Equal(t, "Age must be a number", ageError("fifteen"))
	assert.Equal(t, "Age is required", ageError(""))
	assert.Equal(t, "Age must be a number", ageError("+16"))
	assert.Equal(t, "Age must be a number", ageError("016"))
	assert.Equal(t, "Age must be a number", ageError("1e1"))
}

func TestValidatorCustomTags(t *testing.T) {
	type payload struct {
		Name  string `json:"first_name" validate:"required,person_name"`
		Phone string `json:"phone" validate:"required,et_phone"`
		Age   string `json:"age" validate:"required,camp_age"`
	}
	v := NewValidator()

	require.NoError(t, v.Struct(payload{Name: "Hana", Phone: "0911223344", Age: "16"}))

	err := v.Struct(payload{Name: "Hana1", Phone: "0811223344", Age: "21"})
	require.Error(t, err)
	fields := FieldErrors(err)
	assert.Contains(t, fields, "first_name")
	assert.Contains(t, fields, "phone")
	assert.Equal(t, "must be between 14 and 19", fields["age"])
}

func TestPhoneHelpers(t *testing.T) {
	assert.Equal(t, "0911223344", DigitsOnly("+0911-223 344"))
	assert.Equal(t, "091 122 3344", FormatPhone("0911223344"))
	assert.Equal(t, "091 12", FormatPhone("09112"))
	assert.Equal(t, "09", FormatPhone("09"))
	assert.Equal(t, "0911223344", NormalizeLookupPhone("911 223 344"))
	assert.Equal(t, "0911223344", NormalizeLookupPhone("0911223344"))
}

func TestEthiopianYear(t *testing.T) {
	assert.Equal(t, 2018, EthiopianYear(time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2019, EthiopianYear(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2018, EthiopianYear(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)))
}
