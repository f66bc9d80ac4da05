// Package schema generates JSON schemas for configuration types.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/hvm-interop/hvm-go/domain/entities"
)

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct
// using invopop/jsonschema.
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	return marshal(reflector.Reflect(v))
}

// RunConfigSchema returns the schema of the run configuration file.
func RunConfigSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := reflector.Reflect(&entities.RunConfig{})
	s.Title = "hvm run configuration"
	s.Description = "Selects the engine backend, the program and how it is evaluated."
	return marshal(s)
}

func marshal(s *jsonschema.Schema) ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}
