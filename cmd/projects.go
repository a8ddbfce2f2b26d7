package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/ticktick"
)

func newProjectsCmd(opts *globalOptions) *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage TickTick projects",
	}

	projectsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all projects",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCommand(cmd, opts, "projects.list", func(ctx context.Context, rt *runtime) (interface{}, error) {
					return rt.client.ListProjects(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "get <project-id>",
			Short: "Get a project",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCommand(cmd, opts, "projects.get", func(ctx context.Context, rt *runtime) (interface{}, error) {
					return rt.client.GetProject(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "data <project-id>",
			Short: "Get a project with its undone tasks and columns",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCommand(cmd, opts, "projects.data", func(ctx context.Context, rt *runtime) (interface{}, error) {
					return rt.client.GetProjectData(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "delete <project-id>",
			Short: "Delete a project",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCommand(cmd, opts, "projects.delete", func(ctx context.Context, rt *runtime) (interface{}, error) {
					if err := rt.client.DeleteProject(ctx, args[0]); err != nil {
						return nil, err
					}
					return deletedResult{Deleted: true, ID: args[0]}, nil
				})
			},
		},
		newProjectCreateCmd(opts),
		newProjectUpdateCmd(opts),
	)

	return projectsCmd
}

// deletedResult is printed after a successful delete or complete.
type deletedResult struct {
	Deleted   bool   `json:"deleted,omitempty"`
	Completed bool   `json:"completed,omitempty"`
	ID        string `json:"id"`
}

func addProjectInputFlags(cmd *cobra.Command, input *ticktick.ProjectInput) {
	cmd.Flags().StringVar(&input.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&input.Color, "color", "", "Color code, e.g. #F18181")
	cmd.Flags().StringVar(&input.ViewMode, "view-mode", "", "View mode: list, kanban or timeline")
	cmd.Flags().StringVar(&input.Kind, "kind", "", "Project kind: TASK or NOTE")
}

func newProjectCreateCmd(opts *globalOptions) *cobra.Command {
	var input ticktick.ProjectInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, opts, "projects.create", func(ctx context.Context, rt *runtime) (interface{}, error) {
				return rt.client.CreateProject(ctx, input)
			})
		},
	}
	addProjectInputFlags(cmd, &input)
	return cmd
}

func newProjectUpdateCmd(opts *globalOptions) *cobra.Command {
	var input ticktick.ProjectInput
	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update a project; unset flags are left unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, opts, "projects.update", func(ctx context.Context, rt *runtime) (interface{}, error) {
				return rt.client.UpdateProject(ctx, args[0], input)
			})
		},
	}
	addProjectInputFlags(cmd, &input)
	return cmd
}
