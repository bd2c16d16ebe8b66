package service

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Camper age bounds, inclusive.
const (
	MinCamperAge = 14
	MaxCamperAge = 19
)

var (
	personNamePattern = regexp.MustCompile(`^\p{L}+(?:[\s-]\p{L}+)*$`)
	ethiopianMobile   = regexp.MustCompile(`^09\d{8}$`)
	plainAge          = regexp.MustCompile(`^[1-9]\d*$`)
)

// NewValidator returns a validator with the camp-specific tags registered and
// field errors reported under their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return nameError(fl.Field().String(), "") == ""
	})
	_ = v.RegisterValidation("et_phone", func(fl validator.FieldLevel) bool {
		return ethiopianMobile.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("camp_age", func(fl validator.FieldLevel) bool {
		return ageError(fl.Field().String()) == ""
	})
	return v
}

// FieldErrors flattens validator output into json-field -> message.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "person_name":
		return "can only contain letters and hyphens, at most two names"
	case "et_phone":
		return "must be 10 digits starting with 09"
	case "camp_age":
		return "must be between 14 and 19"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}

// nameError returns the user-facing problem with a first or father's name,
// or "" when it is acceptable. required is the message for an empty value.
func nameError(name, required string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		if required == "" {
			return "is required"
		}
		return required
	}
	if !personNamePattern.MatchString(name) {
		return "Can only contain letters and hyphens"
	}
	if len(strings.Fields(trimmed)) > 2 {
		return "Please enter only first and last name"
	}
	return ""
}

func phoneError(phone string) string {
	digits := DigitsOnly(phone)
	switch {
	case digits == "":
		return "Phone number is required"
	case len(digits) != 10:
		return "Phone number must be 10 digits"
	case !strings.HasPrefix(digits, "09"):
		return "Phone number must start with 09"
	}
	return ""
}

func ageError(age string) string {
	age = strings.TrimSpace(age)
	if age == "" {
		return "Age is required"
	}
	if !plainAge.MatchString(age) {
		return "Age must be a number"
	}
	n, err := strconv.Atoi(age)
	if err != nil {
		return "Age must be between 14 and 19"
	}
	if n < MinCamperAge || n > MaxCamperAge {
		return "Age must be between 14 and 19"
	}
	return ""
}
