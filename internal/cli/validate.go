package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlweave/sqlweave/internal/cte"
)

// validateResult is the JSON payload of a validate run.
type validateResult struct {
	Valid bool     `json:"valid"`
	Cycle []string `json:"cycle,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check the CTE graph for dependency cycles",
		Long: `Check that a workspace's CTE graph is acyclic.

Every CTE is visited, so a cycle in a corner of the workspace nothing
references is still reported. Exit code 1 means a cycle was found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	_, m, err := loadSource(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err)
	}
	formatter.VerboseLog("checking %d cte(s)", len(m))

	// OrderAll instead of Validate so the failure carries the path.
	if _, err := cte.OrderAll(m); err != nil {
		var re *cte.ResolveError
		if errors.As(err, &re) && opts.Format == "json" {
			formatter.Error(ErrCodeCycle, err.Error(), validateResult{Valid: false, Cycle: re.Path})
			return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
		}
		return fail(formatter, ExitFailure, errCodeFor(err), err)
	}

	if opts.Format == "json" {
		return formatter.Success(validateResult{Valid: true})
	}
	fmt.Fprintf(formatter.Writer, "ok: %d cte(s), no dependency cycles\n", len(m))
	return nil
}
