package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sqlweave/sqlweave/internal/store"
)

// workspaceSummary is one row of `workspace list` JSON output.
type workspaceSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	CTEs    int    `json:"ctes"`
	Updated string `json:"updated"`
}

// NewWorkspaceCommand creates the workspace command group.
func NewWorkspaceCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage stored workspaces",
		Long:  "Save, list, show and remove workspaces in the local workspace database.",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "sqlweave.db", "workspace database path")

	cmd.AddCommand(newWorkspaceSaveCommand(rootOpts, &dbPath))
	cmd.AddCommand(newWorkspaceListCommand(rootOpts, &dbPath))
	cmd.AddCommand(newWorkspaceShowCommand(rootOpts, &dbPath))
	cmd.AddCommand(newWorkspaceRmCommand(rootOpts, &dbPath))
	return cmd
}

func newWorkspaceSaveCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "save <file>",
		Short:         "Save a workspace file to the database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			ws, _, err := loadSource(args[0])
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeLoad, err)
			}
			ws.EnsureID()
			s, err := store.Open(*dbPath)
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeStore, err)
			}
			defer s.Close()

			if err := s.SaveWorkspace(cmd.Context(), ws); err != nil {
				return fail(formatter, ExitCommandError, ErrCodeStore, err)
			}
			if rootOpts.Format == "json" {
				return formatter.Success(workspaceSummary{
					ID: ws.ID, Name: ws.Name, CTEs: len(ws.CTEs),
				})
			}
			fmt.Fprintf(formatter.Writer, "saved %s (%s)\n", ws.Name, ws.ID)
			return nil
		},
	}
}

func newWorkspaceListCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored workspaces",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			s, err := store.Open(*dbPath)
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeStore, err)
			}
			defer s.Close()

			all, err := s.ListWorkspaces(cmd.Context())
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeStore, err)
			}

			if rootOpts.Format == "json" {
				summaries := make([]workspaceSummary, 0, len(all))
				for _, ws := range all {
					summaries = append(summaries, workspaceSummary{
						ID:      ws.ID,
						Name:    ws.Name,
						CTEs:    len(ws.CTEs),
						Updated: ws.UpdatedAt.Format("2006-01-02 15:04:05"),
					})
				}
				return formatter.Success(summaries)
			}
			for _, ws := range all {
				fmt.Fprintf(formatter.Writer, "%s\t%d cte(s)\t%s\n", ws.Name, len(ws.CTEs), ws.ID)
			}
			return nil
		},
	}
}

func newWorkspaceShowCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "show <name>",
		Short:         "Print a stored workspace as YAML",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			s, err := store.Open(*dbPath)
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeStore, err)
			}
			defer s.Close()

			ws, err := s.GetWorkspaceByName(cmd.Context(), args[0])
			if err != nil {
				return fail(formatter, ExitFailure, errCodeFor(err), err)
			}

			if rootOpts.Format == "json" {
				return formatter.Success(ws)
			}
			data, err := yaml.Marshal(ws)
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeGeneric, err)
			}
			fmt.Fprint(formatter.Writer, string(data))
			return nil
		},
	}
}

func newWorkspaceRmCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <name>",
		Short:         "Remove a stored workspace",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			s, err := store.Open(*dbPath)
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeStore, err)
			}
			defer s.Close()

			ws, err := s.GetWorkspaceByName(cmd.Context(), args[0])
			if err != nil {
				return fail(formatter, ExitFailure, errCodeFor(err), err)
			}
			if err := s.DeleteWorkspace(cmd.Context(), ws.ID); err != nil {
				return fail(formatter, ExitCommandError, ErrCodeStore, err)
			}

			if rootOpts.Format == "json" {
				return formatter.Success(workspaceSummary{ID: ws.ID, Name: ws.Name})
			}
			fmt.Fprintf(formatter.Writer, "removed %s\n", ws.Name)
			return nil
		},
	}
}
