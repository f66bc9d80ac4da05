// Command hvm parses, evaluates and serializes HVM programs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hvm-interop/hvm-go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// ExitErrors were already reported in the selected format.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
