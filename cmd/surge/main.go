package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/surge/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		// Assertion failures are already in the report.
		if cli.GetExitCode(err) != cli.ExitFailure {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
