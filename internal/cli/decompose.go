package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlweave/sqlweave/internal/decompose"
	"github.com/sqlweave/sqlweave/internal/workspace"
)

// decomposeResult is the JSON payload of a decompose run.
type decomposeResult struct {
	Workspace string   `json:"workspace"`
	CTEs      []string `json:"ctes"`
}

// NewDecomposeCommand creates the decompose command.
func NewDecomposeCommand(rootOpts *RootOptions) *cobra.Command {
	var output string
	var name string

	cmd := &cobra.Command{
		Use:   "decompose <sql-file>",
		Short: "Split a SQL statement into a workspace",
		Long: `Parse a SQL statement and split it into a workspace file: the main
query plus one fragment per CTE in its WITH clause, each with the
dependencies extracted from its body.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompose(rootOpts, args[0], output, name, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "workspace file to write (default: <sql-file>.yaml)")
	cmd.Flags().StringVar(&name, "name", "", "workspace name (default: sql file base name)")
	return cmd
}

func runDecompose(opts *RootOptions, path, output, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err)
	}
	d, err := decompose.Decompose(string(data))
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeParse, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name == "" {
		name = base
	}
	if output == "" {
		output = filepath.Join(filepath.Dir(path), base+".yaml")
	}

	ws := workspace.FromDecomposition(name, d)
	if err := ws.Save(output); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err)
	}
	formatter.VerboseLog("decomposed %d cte(s) from %s", len(d.Order), path)

	if opts.Format == "json" {
		return formatter.Success(decomposeResult{Workspace: output, CTEs: d.Order})
	}
	fmt.Fprintf(formatter.Writer, "wrote %s (%d cte(s))\n", output, len(d.Order))
	return nil
}
