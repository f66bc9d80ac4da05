package cli

import (
	"fmt"
	"os"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/samples"
)

// loadProgram returns a display name and the program text selected by cfg.
func loadProgram(cfg *entities.RunConfig) (name, source string, err error) {
	if cfg.Sample != "" {
		source, err = samples.Render(cfg.Sample, cfg.Params)
		if err != nil {
			return "", "", err
		}
		return cfg.Sample, source, nil
	}

	raw, err := os.ReadFile(cfg.Source) //nolint:gosec // G304: path is chosen by the operator
	if err != nil {
		return "", "", &herrors.ConfigError{Field: "source", Err: fmt.Errorf("failed to read program: %w", err)}
	}
	return cfg.Source, string(raw), nil
}
