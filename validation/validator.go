package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// phonePattern accepts Vietnamese mobile numbers, local (0...) or international (+84...).
var phonePattern = regexp.MustCompile(`^(0|\+84)[0-9]{9,10}$`)

// clockPattern is a zero-padded 24h clock.
var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// FieldErrors maps a json field name to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, field := range fe.Fields() {
		parts = append(parts, field+": "+fe[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for field := range fe {
		names = append(names, field)
	}
	sort.Strings(names)
	return names
}

type Validator struct {
	v *validator.Validate
}

// New builds a validator with the project's custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		return ok && phonePattern.MatchString(value)
	})

	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := time.Parse("2006-01-02", value)
		return err == nil
	})

	v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return clockPattern.MatchString(value)
	})

	return &Validator{v: v}
}

var std = New()

// Default returns the shared validator.
func Default() *Validator {
	return std
}

// Struct validates s and returns FieldErrors when any rule fails.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(FieldErrors, len(ve))
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = Message(fe.Field(), fe.Tag(), fe.Param())
	}
	return out
}

// Struct validates with the shared validator.
func Struct(s any) error {
	return std.Struct(s)
}

// Message is the text shown for a failed rule on field.
func Message(field, tag, param string) string {
	label := Label(field)
	switch tag {
	case "required", "required_with":
		return label + " is required"
	case "email":
		return "Email is not valid"
	case "phone":
		return "Phone number is not valid"
	case "date":
		return label + " must be a date (YYYY-MM-DD)"
	case "clock":
		return label + " must be a time (HH:MM)"
	case "eqfield":
		if field == "confirm_password" {
			return "Passwords do not match"
		}
		return label + " must match " + Label(param)
	case "min":
		if strings.Contains(field, "password") {
			return fmt.Sprintf("Password must be at least %s characters", param)
		}
		return fmt.Sprintf("%s must be at least %s characters", label, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, param)
	case "numeric":
		return label + " must contain digits only"
	case "url":
		return label + " must be a URL"
	default:
		return label + " is not valid"
	}
}

// Label turns a snake_case field name into "Snake case".
func Label(field string) string {
	if field == "" {
		return field
	}
	s := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
