// Package samples embeds the demonstration programs shipped with the module.
//
// Programs are text/template sources; their numeric sizes are parameters
// referenced as {{.params.Name}}.
package samples

import (
	"embed"
	"fmt"
	"sort"

	appconfig "github.com/hvm-interop/hvm-go/application/config"
	apptemplate "github.com/hvm-interop/hvm-go/application/template"
	"github.com/hvm-interop/hvm-go/domain/errors"
)

//go:embed programs/*.hvm
var programs embed.FS

// Param describes one integer template parameter.
type Param struct {
	Name    string
	Default int
	Min     int
	Max     int
}

// Sample is an embedded program template.
type Sample struct {
	Name        string
	File        string
	Description string
	Params      []Param
}

var registry = map[string]Sample{
	"fib": {
		Name:        "fib",
		File:        "programs/fib.hvm",
		Description: "iterative Fibonacci of N",
		Params:      []Param{{Name: "N", Default: 30, Min: 0, Max: 1 << 20}},
	},
	"bitonic_sort": {
		Name:        "bitonic_sort",
		File:        "programs/bitonic_sort.hvm",
		Description: "bitonic sort of 2^Depth numbers, summed",
		Params:      []Param{{Name: "Depth", Default: 18, Min: 1, Max: 24}},
	},
	"stress": {
		Name:        "stress",
		File:        "programs/stress.hvm",
		Description: "2^Depth parallel countdown loops of Loop steps",
		Params: []Param{
			{Name: "Depth", Default: 8, Min: 0, Max: 24},
			{Name: "Loop", Default: 65536, Min: 0, Max: 1 << 30},
		},
	},
	"faulty": {
		Name:        "faulty",
		File:        "programs/faulty.hvm",
		Description: "text that does not parse",
	},
}

// List returns the samples sorted by name.
func List() []Sample {
	out := make([]Sample, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the named sample.
func Get(name string) (Sample, bool) {
	s, ok := registry[name]
	return s, ok
}

// Raw returns the unrendered template of the named sample.
func Raw(name string) ([]byte, error) {
	s, ok := registry[name]
	if !ok {
		return nil, unknownSample(name)
	}
	return programs.ReadFile(s.File)
}

// Template compiles the named sample's program template.
func Template(name string) (*apptemplate.Program, error) {
	raw, err := Raw(name)
	if err != nil {
		return nil, err
	}
	return apptemplate.Parse(name, raw)
}

// Render returns the named sample's program text with params applied over
// the sample's defaults.
func Render(name string, params map[string]any) (string, error) {
	s, ok := registry[name]
	if !ok {
		return "", unknownSample(name)
	}
	values, err := s.resolve(params)
	if err != nil {
		return "", err
	}

	prog, err := Template(name)
	if err != nil {
		return "", err
	}
	out, err := prog.Render(values)
	if err != nil {
		return "", fmt.Errorf("render sample %q: %w", name, err)
	}
	return string(out), nil
}

// resolve merges params over the defaults and range-checks them.
func (s Sample) resolve(params map[string]any) (map[string]any, error) {
	values := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		n := p.Default
		if _, set := params[p.Name]; set {
			v, err := appconfig.MustGetInt(params, p.Name)
			if err != nil {
				return nil, err
			}
			n = v
		}
		if n < p.Min || n > p.Max {
			return nil, &errors.ConfigError{
				Field: "params." + p.Name,
				Err:   fmt.Errorf("%d is outside [%d, %d]", n, p.Min, p.Max),
			}
		}
		values[p.Name] = n
	}
	for k := range params {
		if !s.hasParam(k) {
			return nil, &errors.ConfigError{
				Field: "params." + k,
				Err:   fmt.Errorf("sample %q has no parameter %q", s.Name, k),
			}
		}
	}
	return values, nil
}

func (s Sample) hasParam(name string) bool {
	for _, p := range s.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func unknownSample(name string) error {
	return &errors.ConfigError{Field: "sample", Err: fmt.Errorf("unknown sample %q", name)}
}
