package entities

// Backend names accepted in RunConfig.Backend.
const (
	BackendNative = "native"
	BackendWasm   = "wasm"
)

// RunConfig describes one run of the demo command: where the engine comes
// from, which program to load and how to evaluate it.
type RunConfig struct {
	// Backend selects how the engine is reached: the linked shared library
	// ("native") or a wasm32 build executed in-process ("wasm").
	Backend string `json:"backend" yaml:"backend" validate:"required,oneof=native wasm" jsonschema:"enum=native,enum=wasm,default=wasm"`

	// WasmPath is the engine module to load when Backend is "wasm".
	WasmPath string `json:"wasm_path,omitempty" yaml:"wasm_path" validate:"required_if=Backend wasm"`

	// Runtime is the native execution strategy ("rust" or "c").
	Runtime string `json:"runtime" yaml:"runtime" validate:"omitempty,oneof=rust c" jsonschema:"enum=rust,enum=c,default=rust"`

	// MemDump requests the engine's memory dump alongside the result.
	MemDump bool `json:"mem_dump,omitempty" yaml:"mem_dump"`

	// Source is a path to a program file. Exactly one of Source and Sample
	// must be set.
	Source string `json:"source,omitempty" yaml:"source" validate:"required_without=Sample,excluded_with=Sample"`

	// Sample names one of the embedded sample programs.
	Sample string `json:"sample,omitempty" yaml:"sample" validate:"required_without=Source"`

	// Params are substituted into the sample template.
	Params map[string]any `json:"params,omitempty" yaml:"params"`
}

// DefaultRunConfig returns the configuration used when no file is given.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Backend: BackendWasm,
		Runtime: RuntimeRust.String(),
	}
}

// RuntimeType returns the parsed Runtime field.
func (c RunConfig) RuntimeType() (RuntimeType, error) {
	return ParseRuntimeType(c.Runtime)
}
