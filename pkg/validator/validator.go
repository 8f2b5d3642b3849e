package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"required":  "field is required",
	"email":     "invalid email format",
	"min":       "value is too small",
	"max":       "value is too large",
	"oneof":     "value is not allowed",
	"clocktime": "must be a time of day in HH:MM format",
	"weekday":   "must be a week day between 0 and 6",
	"gtefield":  "must not be before its start",
	"url":       "must be a valid URL",
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Engine returns the shared validator with the custom rules registered.
func Engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		Register(instance)
	})
	return instance
}

// Register adds the project's custom tags and JSON field naming to v. It is
// also applied to gin's binding engine.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("clocktime", validateClockTime)
	_ = v.RegisterValidation("weekday", validateWeekday)
}

// Validate checks s against its `validate`/`binding` tags.
func Validate(s interface{}) error {
	return Engine().Struct(s)
}

// Fields flattens validator errors into per-field messages. It returns nil
// when err is not a validation error.
func Fields(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = e.Error()
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}

func validateClockTime(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	if _, err := time.Parse("15:04", s); err == nil {
		return true
	}
	_, err := time.Parse("15:04:05", s)
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		d := fl.Field().Int()
		return d >= 0 && d <= 6
	default:
		return false
	}
}
