// Command pmatch evaluates, validates and tests structural-pattern decision tables.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/pmatch/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// Commands that return an ExitError have already reported it.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
