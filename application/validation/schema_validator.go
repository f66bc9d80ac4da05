package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hvm-interop/hvm-go/application/schema"
	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

const runConfigSchemaURL = "run-config.schema.json"

// SchemaValidator checks a run configuration against the JSON schema that
// "hvm schema" publishes.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the run configuration schema.
func NewSchemaValidator() (ports.ConfigValidator, error) {
	raw, err := schema.RunConfigSchema()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(runConfigSchemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add run config schema: %w", err)
	}
	sch, err := compiler.Compile(runConfigSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid run config schema: %w", err)
	}
	return &SchemaValidator{schema: sch}, nil
}

// Validate returns a *errors.ConfigError naming the first failing location.
func (v *SchemaValidator) Validate(cfg *entities.RunConfig) error {
	if cfg == nil {
		return &herrors.ConfigError{Err: errors.New("configuration is nil")}
	}

	// The validator works on decoded JSON values, not on Go structs.
	b, err := json.Marshal(cfg)
	if err != nil {
		return &herrors.ConfigError{Err: fmt.Errorf("failed to prepare validation object: %w", err)}
	}
	var obj interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return &herrors.ConfigError{Err: fmt.Errorf("failed to prepare validation object: %w", err)}
	}

	err = v.schema.Validate(obj)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &herrors.ConfigError{Err: err}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		return &herrors.ConfigError{Err: ve}
	}
	return &herrors.ConfigError{Field: field, Err: errors.New(leaf.Message)}
}

// Chain runs validators in order and returns the first error.
func Chain(validators ...ports.ConfigValidator) ports.ConfigValidator {
	return chain(validators)
}

type chain []ports.ConfigValidator

func (c chain) Validate(cfg *entities.RunConfig) error {
	for _, v := range c {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}
