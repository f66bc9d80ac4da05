package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/hvm-interop/hvm-go/application/schema"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "schema",
		Short:         "Print the JSON schema of the run configuration file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			data, err := schema.RunConfigSchema()
			if err != nil {
				return reportFailure(formatter, "", "failed to generate schema", err)
			}
			if formatter.Format == "json" {
				return formatter.Success(json.RawMessage(data))
			}
			return formatter.Success(string(data))
		},
	}
}
