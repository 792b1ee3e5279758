package main

import (
	"os"

	"github.com/sqlweave/sqlweave/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own failures through the formatter;
		// only the exit code is left to propagate.
		os.Exit(cli.GetExitCode(err))
	}
}
