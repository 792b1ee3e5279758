package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlweave/sqlweave/internal/cte"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Print the declared dependency graph",
		Long: `Print each CTE with its declared dependency list, exactly as authored.
Names that point outside the workspace (real tables) are included; this
is the raw adjacency view, not the resolvable subgraph.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runGraph(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	_, m, err := loadSource(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err)
	}

	adj := cte.Adjacency(m)

	if opts.Format == "json" {
		return formatter.Success(adj)
	}

	names := make([]string, 0, len(adj))
	for name := range adj {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if len(adj[name]) == 0 {
			fmt.Fprintf(formatter.Writer, "%s\n", name)
			continue
		}
		fmt.Fprintf(formatter.Writer, "%s -> %s\n", name, strings.Join(adj[name], ", "))
	}
	return nil
}
