package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"pokedoro/internal/models"
)

const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks creds against the login rule set and returns nil or a *ValidationError.
func Validate(creds models.Credentials) error {
	err := validate.Struct(creds)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating credentials: %w", err)
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fe.Field()] = message(fe.Field(), fe.Tag(), fe.Param())
	}
	return verr
}

func message(field, tag, param string) string {
	switch {
	case tag == "required":
		return fmt.Sprintf("%s is required.", strings.ToUpper(field[:1])+field[1:])
	case field == FieldEmail && tag == "email":
		return "Invalid email received."
	case tag == "min":
		return fmt.Sprintf("%s must contain at least %s characters.", strings.ToUpper(field[:1])+field[1:], param)
	default:
		return fmt.Sprintf("%s is invalid.", strings.ToUpper(field[:1])+field[1:])
	}
}
