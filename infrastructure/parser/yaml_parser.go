// Package parser decodes run configuration files.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// YamlConfigParser implements ConfigParser for YAML.
type YamlConfigParser struct{}

// NewYamlConfigParser creates a new YamlConfigParser.
func NewYamlConfigParser() ports.ConfigParser {
	return &YamlConfigParser{}
}

// Parse unmarshals YAML bytes on top of base. Unknown keys are rejected.
func (p *YamlConfigParser) Parse(data []byte, base entities.RunConfig) (*entities.RunConfig, error) {
	cfg := base
	if base.Params != nil {
		cfg.Params = make(map[string]any, len(base.Params))
		for k, v := range base.Params {
			cfg.Params[k] = v
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse run config: %w", err)
	}
	return &cfg, nil
}
