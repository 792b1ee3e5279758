package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlweave/sqlweave/internal/cte"
)

// depsResult is the JSON payload of a deps run.
type depsResult struct {
	Name       string   `json:"name"`
	Dependents []string `json:"dependents"`
}

// NewDepsCommand creates the deps command.
func NewDepsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps <file> <name>",
		Short: "List CTEs that reference a given CTE",
		Long: `List the CTEs whose dependency list contains <name> - the fragments a
change to <name> touches directly. Direct dependents only; run it again
on each result to chase the impact further.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runDeps(opts *RootOptions, path, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	_, m, err := loadSource(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err)
	}

	dependents := cte.Dependents(name, m)

	if opts.Format == "json" {
		return formatter.Success(depsResult{Name: name, Dependents: dependents})
	}
	if len(dependents) == 0 {
		fmt.Fprintf(formatter.Writer, "nothing depends on %s\n", name)
		return nil
	}
	fmt.Fprintln(formatter.Writer, strings.Join(dependents, "\n"))
	return nil
}
