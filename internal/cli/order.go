package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlweave/sqlweave/internal/cte"
)

// orderResult is the JSON payload of an order run.
type orderResult struct {
	Target string   `json:"target,omitempty"`
	Order  []string `json:"order"`
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "order <file>",
		Short: "Print CTE definition order",
		Long: `Print the order CTEs must be defined in: every CTE appears before
everything that depends on it. With --target only the subgraph the
target needs is ordered, target last; otherwise the whole workspace.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(rootOpts, args[0], target, cmd)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "order only what this CTE needs")
	return cmd
}

func runOrder(opts *RootOptions, path, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	_, m, err := loadSource(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err)
	}

	var order []string
	if target != "" {
		order, err = cte.OrderFor(target, m)
	} else {
		order, err = cte.OrderAll(m)
	}
	if err != nil {
		return fail(formatter, ExitFailure, errCodeFor(err), err)
	}

	if opts.Format == "json" {
		return formatter.Success(orderResult{Target: target, Order: order})
	}
	fmt.Fprintln(formatter.Writer, strings.Join(order, "\n"))
	return nil
}
