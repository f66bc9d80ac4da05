package ports

import "github.com/hvm-interop/hvm-go/domain/entities"

// ConfigValidator validates a run configuration.
type ConfigValidator interface {
	// Validate returns a *errors.ConfigError for the first invalid field.
	Validate(cfg *entities.RunConfig) error
}
