// Package validator wraps go-playground/validator for request payloads. Field
// names are reported by their json tag and every failure carries a readable
// message.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "invalid request payload"
	}
	parts := make([]string, len(v))
	for i, err := range v {
		parts[i] = err.Message
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct validates s against its `validate` tags. Rule failures are
// returned as ValidationErrors.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return failures
}

func describe(field, tag, param string) string {
	name := strings.ToLower(strings.ReplaceAll(field, "_", " "))
	if name == "" {
		name = "field"
	}

	switch tag {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, param)
	case "slug":
		return name + " must be lowercase words joined by hyphens"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, param)
	case "":
		return name + " is invalid"
	}
	if param != "" {
		return fmt.Sprintf("%s failed validation: %s=%s", name, tag, param)
	}
	return fmt.Sprintf("%s failed validation: %s", name, tag)
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}
