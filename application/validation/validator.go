// Package validation checks run configurations against their struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// StructValidator implements ConfigValidator with go-playground/validator.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator creates a validator that reports fields by their YAML
// names.
func NewStructValidator() ports.ConfigValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &StructValidator{validate: v}
}

// Validate returns a *errors.ConfigError describing the first invalid field.
func (v *StructValidator) Validate(cfg *entities.RunConfig) error {
	if cfg == nil {
		return &herrors.ConfigError{Err: errors.New("configuration is nil")}
	}

	err := v.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &herrors.ConfigError{Err: err}
	}
	fe := verrs[0]
	return &herrors.ConfigError{Field: fe.Field(), Err: describe(fe)}
}

func describe(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return errors.New("is required")
	case "required_if":
		return fmt.Errorf("is required when %s", fe.Param())
	case "required_without":
		return fmt.Errorf("is required when %s is not set", strings.ToLower(fe.Param()))
	case "excluded_with":
		return fmt.Errorf("cannot be combined with %s", strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Errorf("%q is not one of [%s]", fmt.Sprint(fe.Value()), fe.Param())
	default:
		return fmt.Errorf("failed on the %q rule", fe.Tag())
	}
}
