package validation

import (
	"bytes"
	"encoding/json"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mountarc/mountarc-api/internal/models"
)

// phoneRegex accepts an international number with country code, e.g. +91 9876543210
var phoneRegex = regexp.MustCompile(`^\+\d{1,3}\s?\d{6,14}$`)

// FieldError represents a single validation error
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors lists validation failures in field order.
type FieldErrors []FieldError

// First returns the error shown to the submitter.
func (e FieldErrors) First() FieldError {
	if len(e) == 0 {
		return FieldError{}
	}
	return e[0]
}

// messages holds the form copy for a field/tag pair; anything missing falls back to getErrorMessage.
var messages = map[string]string{
	"name.min":          "Name must be at least 2 characters",
	"name.required":     "Name must be at least 2 characters",
	"email.required":    "Please enter a valid email",
	"email.email":       "Please enter a valid email",
	"phone.required":    "Include country code (e.g., +1 555-123-4567)",
	"phone.phone":       "Include country code (e.g., +1 555-123-4567)",
	"message.min":       "Message must be at least 20 characters",
	"message.max":       "Message must be under 250 characters",
	"description.min":   "Description must be at least 20 characters",
	"description.max":   "Description must be under 250 characters",
	"preferredTime.min": "Please provide your preferred date/time",
	"budget.required":   "Please select a budget range",
}

// Validator turns raw form payloads into typed submissions
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the form-specific rules registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so errors line up with the form fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	//nolint:errcheck // registration only fails on an empty tag
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Validate decodes data as the payload of formType and checks it. Expected input problems,
// including malformed JSON and unknown form types, come back as FieldErrors, never as panics.
func (v *Validator) Validate(formType models.FormType, data json.RawMessage) (models.Submission, FieldErrors) {
	var sub models.Submission
	switch formType {
	case models.FormTypeContact:
		sub = &models.ContactSubmission{}
	case models.FormTypeDiscovery:
		sub = &models.DiscoverySubmission{}
	case models.FormTypeNewsletter:
		sub = &models.NewsletterSubmission{}
	case models.FormTypeUnsubscribe:
		sub = &models.UnsubscribeSubmission{}
	default:
		return nil, FieldErrors{{Field: "type", Message: "Invalid form type"}}
	}

	if err := decode(data, sub); err != nil {
		return nil, FieldErrors{{Field: "data", Message: "Invalid form data"}}
	}
	trimStrings(sub)

	if err := v.validate.Struct(sub); err != nil {
		if errs := ParseValidationErrors(err); len(errs) > 0 {
			return nil, errs
		}
		return nil, FieldErrors{{Field: "data", Message: "Invalid form data"}}
	}

	return sub, nil
}

// ParseValidationErrors converts validator errors to user-friendly format
func ParseValidationErrors(err error) FieldErrors {
	var errs FieldErrors

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errs = append(errs, FieldError{
				Field:   fieldError.Field(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return errs
}

// ExtractEmail pulls data.email out of an unvalidated payload for rate limiting.
// It returns "" when the payload has no usable email.
func ExtractEmail(data json.RawMessage) string {
	var probe struct {
		Email string `json:"email"`
	}
	if len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.Email)
}

func decode(data json.RawMessage, dst any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = []byte("{}")
	}
	return json.Unmarshal(data, dst)
}

// trimStrings trims surrounding whitespace from every string field of the struct behind ptr.
func trimStrings(ptr any) {
	val := reflect.ValueOf(ptr).Elem()
	for i := 0; i < val.NumField(); i++ {
		f := val.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

func getErrorMessage(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please enter a valid email"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
