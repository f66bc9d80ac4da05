package cli

import (
	"github.com/spf13/cobra"

	appconfig "github.com/hvm-interop/hvm-go/application/config"
	"github.com/hvm-interop/hvm-go/application/validation"
	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/infrastructure/native"
)

// runFlags are the flags shared by commands that load a program. Flags
// override the values read from --config.
type runFlags struct {
	ConfigFile string
	Backend    string
	WasmPath   string
	Runtime    string
	MemDump    bool
	Source     string
	Sample     string
	Params     []string
}

func (f *runFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.ConfigFile, "config", "c", "", "run configuration file (YAML)")
	flags.StringVar(&f.Backend, "backend", entities.BackendWasm, backendUsage(native.Available))
	flags.StringVar(&f.WasmPath, "wasm", "", "path to the engine's wasm32 module (wasm backend)")
	flags.StringVar(&f.Runtime, "runtime", entities.RuntimeRust.String(), "evaluation runtime (rust|c)")
	flags.BoolVar(&f.MemDump, "mem-dump", false, "include the engine's memory dump in the result")
	flags.StringVarP(&f.Source, "source", "s", "", "program file to load")
	flags.StringVar(&f.Sample, "sample", "", "embedded sample program to load")
	flags.StringArrayVarP(&f.Params, "param", "p", nil, "sample parameter as key=value (repeatable)")
}

func backendUsage(nativeLinked bool) string {
	if nativeLinked {
		return "engine backend (native|wasm)"
	}
	return "engine backend (native|wasm); native is not linked into this binary"
}

// resolve loads --config (or the defaults), applies the flags that were set
// on the command line and validates the result against the struct rules and
// the published schema.
func (f *runFlags) resolve(cmd *cobra.Command) (*entities.RunConfig, error) {
	schemaValidator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	loader := appconfig.NewLoader(appconfig.WithValidator(
		validation.Chain(validation.NewStructValidator(), schemaValidator),
	))

	var cfg *entities.RunConfig
	if f.ConfigFile != "" {
		loaded, err := loader.LoadFile(f.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		defaults := entities.DefaultRunConfig()
		cfg = &defaults
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = f.Backend
	}
	if flags.Changed("wasm") {
		cfg.WasmPath = f.WasmPath
	}
	if flags.Changed("runtime") {
		cfg.Runtime = f.Runtime
	}
	if flags.Changed("mem-dump") {
		cfg.MemDump = f.MemDump
	}
	if flags.Changed("source") {
		cfg.Source = f.Source
		cfg.Sample = ""
	}
	if flags.Changed("sample") {
		cfg.Sample = f.Sample
		cfg.Source = ""
	}
	if len(f.Params) > 0 {
		params, err := appconfig.ParseParams(f.Params)
		if err != nil {
			return nil, err
		}
		cfg.Params = appconfig.Merge(cfg.Params, params)
	}

	if err := loader.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
