package service

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/youth-camp-api/internal/models"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
)

// WizardStep is a page of the two-step registration form.
type WizardStep int

const (
	StepPersonal WizardStep = 1
	StepChurch   WizardStep = 2
)

// Form field names, shared by the wizard and the JSON payload.
const (
	FieldFirstName   = "first_name"
	FieldFathersName = "fathers_name"
	FieldPhone       = "phone"
	FieldAge         = "age"
	FieldGrade       = "grade"
	FieldGender      = "gender"
	FieldChurch      = "church"
	FieldLocation    = "participant_location"
)

// RegistrationForm is the public registration payload.
type RegistrationForm struct {
	FirstName           string `json:"first_name" validate:"required,person_name"`
	FathersName         string `json:"fathers_name" validate:"required,person_name"`
	Phone               string `json:"phone" validate:"required,et_phone"`
	Age                 string `json:"age" validate:"required,camp_age"`
	Grade               string `json:"grade" validate:"required,oneof=grade-7 grade-8 grade-9 grade-10 grade-11 grade-12"`
	Gender              string `json:"gender" validate:"required,oneof=male female"`
	Church              string `json:"church" validate:"required"`
	ParticipantLocation string `json:"participant_location" validate:"omitempty,oneof=Hawassa 'Addis Ababa'"`
}

// Normalized trims free text and stores the phone as digits only.
func (f RegistrationForm) Normalized() RegistrationForm {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.FathersName = strings.TrimSpace(f.FathersName)
	f.Phone = DigitsOnly(f.Phone)
	f.Age = strings.TrimSpace(f.Age)
	f.Church = strings.TrimSpace(f.Church)
	f.ParticipantLocation = strings.TrimSpace(f.ParticipantLocation)
	return f
}

// FieldError is a validation failure carrying per-field messages.
type FieldError struct {
	Err    *appErrors.Error
	Fields map[string]string
}

func NewFieldError(err *appErrors.Error, fields map[string]string) *FieldError {
	return &FieldError{Err: err, Fields: fields}
}

func (e *FieldError) Error() string { return e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

// ValidateStep returns the inline errors for every field on step.
func ValidateStep(f RegistrationForm, step WizardStep) map[string]string {
	out := make(map[string]string)
	fields := personalFields
	if step == StepChurch {
		fields = churchFields
	}
	for _, field := range fields {
		if msg := validateField(f, field); msg != "" {
			out[field] = msg
		}
	}
	return out
}

var (
	personalFields = []string{FieldFirstName, FieldFathersName, FieldPhone, FieldAge}
	churchFields   = []string{FieldGrade, FieldGender, FieldChurch, FieldLocation}
)

func validateField(f RegistrationForm, field string) string {
	switch field {
	case FieldFirstName:
		return nameError(f.FirstName, "First name is required")
	case FieldFathersName:
		return nameError(f.FathersName, "Father's name is required")
	case FieldPhone:
		return phoneError(f.Phone)
	case FieldAge:
		return ageError(f.Age)
	case FieldGrade:
		if f.Grade == "" {
			return "Grade is required"
		}
		if !models.IsCanonicalGrade(f.Grade) {
			return "Select a grade between 7 and 12"
		}
	case FieldGender:
		if f.Gender == "" {
			return "Gender is required"
		}
		if f.Gender != models.GenderMale && f.Gender != models.GenderFemale {
			return "Select male or female"
		}
	case FieldChurch:
		if strings.TrimSpace(f.Church) == "" {
			return "Church is required"
		}
	case FieldLocation:
		loc := strings.TrimSpace(f.ParticipantLocation)
		if loc != "" && loc != models.LocationHawassa && loc != models.LocationAddisAbaba {
			return "Select Hawassa or Addis Ababa"
		}
	}
	return ""
}

// RegistrationSaver persists a submitted form.
type RegistrationSaver interface {
	Register(ctx context.Context, form RegistrationForm) (*models.Registration, error)
}

// ErrWrongStep is returned when an action is not available on the current step.
var ErrWrongStep = errors.New("action not available on this step")

// RegistrationWizard drives the two-step form: Continue is gated on step one
// being valid, Back is always allowed, and Submit re-checks both steps.
// A wizard belongs to one form session and is not safe for concurrent use.
type RegistrationWizard struct {
	form   RegistrationForm
	step   WizardStep
	errors map[string]string
}

func NewRegistrationWizard() *RegistrationWizard {
	return &RegistrationWizard{step: StepPersonal, errors: make(map[string]string)}
}

func (w *RegistrationWizard) Step() WizardStep       { return w.step }
func (w *RegistrationWizard) Form() RegistrationForm { return w.form }

// Errors returns a copy of the current inline errors.
func (w *RegistrationWizard) Errors() map[string]string {
	out := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

// Set updates a field. Phone input other than digits and spaces, or longer
// than ten digits, is ignored and Set reports false.
func (w *RegistrationWizard) Set(field, value string) bool {
	switch field {
	case FieldFirstName:
		w.form.FirstName = value
	case FieldFathersName:
		w.form.FathersName = value
	case FieldPhone:
		for _, r := range value {
			if r != ' ' && (r < '0' || r > '9') {
				return false
			}
		}
		digits := DigitsOnly(value)
		if len(digits) > 10 {
			return false
		}
		w.form.Phone = digits
		delete(w.errors, FieldPhone)
	case FieldAge:
		w.form.Age = value
	case FieldGrade:
		w.form.Grade = value
	case FieldGender:
		w.form.Gender = value
	case FieldChurch:
		w.form.Church = value
	case FieldLocation:
		w.form.ParticipantLocation = value
	default:
		return false
	}
	return true
}

// PhoneDisplay returns the phone grouped for display.
func (w *RegistrationWizard) PhoneDisplay() string {
	return FormatPhone(w.form.Phone)
}

// Blur validates a single field as the user leaves it and returns its error.
func (w *RegistrationWizard) Blur(field string) string {
	msg := validateField(w.form, field)
	if msg == "" {
		delete(w.errors, field)
	} else {
		w.errors[field] = msg
	}
	return msg
}

// Continue validates step one and advances when it passes.
func (w *RegistrationWizard) Continue() bool {
	if w.step != StepPersonal {
		return false
	}
	errs := ValidateStep(w.form, StepPersonal)
	if len(errs) > 0 {
		for k, v := range errs {
			w.errors[k] = v
		}
		return false
	}
	w.form.Phone = DigitsOnly(w.form.Phone)
	for _, f := range personalFields {
		delete(w.errors, f)
	}
	w.step = StepChurch
	return true
}

// Back returns to step one, keeping everything entered.
func (w *RegistrationWizard) Back() {
	w.step = StepPersonal
}

// CanSubmit reports whether both steps currently validate.
func (w *RegistrationWizard) CanSubmit() bool {
	return w.step == StepChurch && len(ValidateStep(w.form, StepPersonal)) == 0 && len(ValidateStep(w.form, StepChurch)) == 0
}

// Submit saves the form and returns the new registration id. On any failure
// the form is left populated so the user can retry.
func (w *RegistrationWizard) Submit(ctx context.Context, saver RegistrationSaver) (string, error) {
	if w.step != StepChurch {
		return "", ErrWrongStep
	}
	errs := ValidateStep(w.form, StepPersonal)
	for k, v := range ValidateStep(w.form, StepChurch) {
		errs[k] = v
	}
	if len(errs) > 0 {
		for k, v := range errs {
			w.errors[k] = v
		}
		return "", NewFieldError(appErrors.Clone(appErrors.ErrValidation, "please fix the highlighted fields"), errs)
	}

	reg, err := saver.Register(ctx, w.form)
	if err != nil {
		return "", err
	}
	return reg.ID, nil
}
