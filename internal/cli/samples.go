package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/hvm-interop/hvm-go/application/config"
	"github.com/hvm-interop/hvm-go/samples"
)

// SampleInfo describes an embedded sample in command output.
type SampleInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Params      map[string]int `json:"params,omitempty"`
}

// SampleList is the payload of "samples".
type SampleList []SampleInfo

func (l SampleList) String() string {
	var sb strings.Builder
	for i, s := range l {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%-14s%s", s.Name, s.Description)
		if len(s.Params) > 0 {
			sb.WriteString(" (")
			sb.WriteString(formatParams(s))
			sb.WriteString(")")
		}
	}
	return sb.String()
}

func formatParams(s SampleInfo) string {
	sample, _ := samples.Get(s.Name)
	parts := make([]string, 0, len(sample.Params))
	for _, p := range sample.Params {
		parts = append(parts, fmt.Sprintf("%s=%d", p.Name, s.Params[p.Name]))
	}
	return strings.Join(parts, ", ")
}

// NewSamplesCommand creates the samples command and its show subcommand.
func NewSamplesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "samples",
		Short:         "List the embedded sample programs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.formatter(cmd).Success(listSamples())
		},
	}

	cmd.AddCommand(newSamplesShowCommand(rootOpts))
	return cmd
}

func listSamples() SampleList {
	all := samples.List()
	out := make(SampleList, 0, len(all))
	for _, s := range all {
		info := SampleInfo{Name: s.Name, Description: s.Description}
		if len(s.Params) > 0 {
			info.Params = make(map[string]int, len(s.Params))
			for _, p := range s.Params {
				info.Params[p.Name] = p.Default
			}
		}
		out = append(out, info)
	}
	return out
}

func newSamplesShowCommand(rootOpts *RootOptions) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:           "show <name>",
		Short:         "Print a sample program with its parameters applied",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			values, err := appconfig.ParseParams(params)
			if err != nil {
				return reportFailure(formatter, "", "invalid parameters", err)
			}
			source, err := samples.Render(args[0], values)
			if err != nil {
				return reportFailure(formatter, "", "failed to render sample", err)
			}
			return formatter.Success(strings.TrimRight(source, "\n"))
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "sample parameter as key=value (repeatable)")
	return cmd
}
