package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var instance = newValidator()

// getValidator exposes the shared instance.
func getValidator() *validator.Validate {
	return instance
}

// isStruct reports whether v is a struct or a pointer to one.
func isStruct(v interface{}) bool {
	kind := reflect.ValueOf(v).Kind()
	if kind == reflect.Ptr {
		kind = reflect.ValueOf(v).Elem().Kind()
	}
	return kind == reflect.Struct
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their json names so API clients can match errors
	// to request fields.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct validates s by its `validate` tags and flattens the result
// into a single readable error.
func Struct(s interface{}) error {
	if s == nil {
		return fmt.Errorf("cannot validate nil value")
	}

	err := instance.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("value is not a struct: %w", invalid)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
	}

	return err
}
