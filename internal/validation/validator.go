// Package validation checks input rows and configuration using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/gencat/gencat/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Report fields by their column or environment name so messages match what the user typed.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"csv", "env", "yaml"} {
			if name := tagName(fld.Tag.Get(tag)); name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	// Custom rule: a regular expression that compiles.
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})

	return &Validator{v: v}
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails(summarize(fieldErrors), fieldErrors)
}

// summarize renders field errors as one message, sorted by field name.
func summarize(fieldErrors map[string]string) string {
	names := make([]string, 0, len(fieldErrors))
	for name := range fieldErrors {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+fieldErrors[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "numeric", "number":
		return "must be numeric"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "required_unless":
		return "is required unless " + e.Param()
	case "regexp":
		return fmt.Sprintf("is not a valid pattern: %q", e.Value())
	default:
		return "is invalid"
	}
}
