package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlweave/sqlweave/internal/cte"
)

// resolveResult is the JSON payload of a successful resolve.
type resolveResult struct {
	Target string `json:"target,omitempty"`
	SQL    string `json:"sql"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Recompose an executable SQL statement",
		Long: `Recompose a single executable WITH statement from a workspace.

The input is a workspace YAML file or a raw SQL file (decomposed on the
fly). By default the workspace's main query is recomposed over the CTEs
it depends on; --target resolves one named CTE instead, ending in
SELECT * FROM <target>.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], target, cmd)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "resolve this CTE instead of the main query")
	return cmd
}

func runResolve(opts *RootOptions, path, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	ws, m, err := loadSource(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err)
	}
	formatter.VerboseLog("loaded %d cte(s) from %s", len(m), path)

	var sql string
	if target != "" {
		sql, err = cte.Resolve(target, m)
	} else {
		if ws.Main == "" {
			return fail(formatter, ExitCommandError, ErrCodeLoad,
				fmt.Errorf("%s has no main query; use --target to resolve a cte", path))
		}
		sql, err = cte.Compose(ws.Main, ws.MainDeps, m)
	}
	if err != nil {
		return fail(formatter, ExitFailure, errCodeFor(err), err)
	}

	if opts.Format == "json" {
		return formatter.Success(resolveResult{Target: target, SQL: sql})
	}
	fmt.Fprintln(formatter.Writer, sql)
	return nil
}
