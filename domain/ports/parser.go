package ports

import "github.com/hvm-interop/hvm-go/domain/entities"

// ConfigParser parses raw bytes into a RunConfig.
type ConfigParser interface {
	// Parse unmarshals the bytes on top of the defaults in base.
	Parse(data []byte, base entities.RunConfig) (*entities.RunConfig, error)
}
