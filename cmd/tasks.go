package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/ticktick"
)

// appFs is the filesystem batch files are read from.
var appFs = afero.NewOsFs()

func newTasksCmd(opts *globalOptions) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage TickTick tasks",
	}

	tasksCmd.AddCommand(
		&cobra.Command{
			Use:   "get <project-id> <task-id>",
			Short: "Get a task",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCommand(cmd, opts, "tasks.get", func(ctx context.Context, rt *runtime) (interface{}, error) {
					return rt.client.GetTask(ctx, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "complete <project-id> <task-id>",
			Short: "Mark a task as complete",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCommand(cmd, opts, "tasks.complete", func(ctx context.Context, rt *runtime) (interface{}, error) {
					if err := rt.client.CompleteTask(ctx, args[0], args[1]); err != nil {
						return nil, err
					}
					return deletedResult{Completed: true, ID: args[1]}, nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <project-id> <task-id>",
			Short: "Delete a task",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCommand(cmd, opts, "tasks.delete", func(ctx context.Context, rt *runtime) (interface{}, error) {
					if err := rt.client.DeleteTask(ctx, args[0], args[1]); err != nil {
						return nil, err
					}
					return deletedResult{Deleted: true, ID: args[1]}, nil
				})
			},
		},
		newTaskCreateCmd(opts),
		newTaskUpdateCmd(opts),
		newSubtaskCmd(opts),
		newBatchCmd(opts),
		newQueryCmd(opts),
	)

	return tasksCmd
}

// taskFlags binds the task input flags. Priority and all-day are only sent
// when given explicitly.
type taskFlags struct {
	input    ticktick.TaskInput
	priority int
	allDay   bool
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&f.input.ProjectID, "project", "", "Project ID")
	cmd.Flags().StringVar(&f.input.Content, "content", "", "Task description")
	cmd.Flags().StringVar(&f.input.StartDate, "start", "", "Start date, e.g. 2025-11-07T09:00:00+0000")
	cmd.Flags().StringVar(&f.input.DueDate, "due", "", "Due date, e.g. 2025-11-07T17:00:00+0000")
	cmd.Flags().IntVar(&f.priority, "priority", 0, "Priority: 0 (None), 1 (Low), 3 (Medium), 5 (High)")
	cmd.Flags().BoolVar(&f.allDay, "all-day", false, "Whether the task is an all-day task")
}

func (f *taskFlags) build(cmd *cobra.Command) ticktick.TaskInput {
	input := f.input
	if cmd.Flags().Changed("priority") {
		input.Priority = ticktick.PriorityPtr(ticktick.Priority(f.priority))
	}
	if cmd.Flags().Changed("all-day") {
		allDay := f.allDay
		input.IsAllDay = &allDay
	}
	return input
}

func newTaskCreateCmd(opts *globalOptions) *cobra.Command {
	flags := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := flags.build(cmd)
			return runCommand(cmd, opts, "tasks.create", func(ctx context.Context, rt *runtime) (interface{}, error) {
				return rt.client.CreateTask(ctx, input)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newTaskUpdateCmd(opts *globalOptions) *cobra.Command {
	flags := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task; unset flags are left unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := flags.build(cmd)
			return runCommand(cmd, opts, "tasks.update", func(ctx context.Context, rt *runtime) (interface{}, error) {
				return rt.client.UpdateTask(ctx, args[0], input)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newSubtaskCmd(opts *globalOptions) *cobra.Command {
	var (
		input    ticktick.SubtaskInput
		priority int
	)
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Create a subtask under a parent task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("priority") {
				input.Priority = ticktick.PriorityPtr(ticktick.Priority(priority))
			}
			return runCommand(cmd, opts, "tasks.subtask", func(ctx context.Context, rt *runtime) (interface{}, error) {
				return rt.client.CreateSubtask(ctx, input)
			})
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "Subtask title")
	cmd.Flags().StringVar(&input.ParentID, "parent", "", "Parent task ID")
	cmd.Flags().StringVar(&input.ProjectID, "project", "", "Project ID of the parent task")
	cmd.Flags().StringVar(&input.Content, "content", "", "Subtask description")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority: 0 (None), 1 (Low), 3 (Medium), 5 (High)")
	return cmd
}

// batchTask is one entry of a batch file.
type batchTask struct {
	Title     string `json:"title"`
	ProjectID string `json:"project_id"`
	Content   string `json:"content,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
	Priority  *int   `json:"priority,omitempty"`
	IsAllDay  *bool  `json:"is_all_day,omitempty"`
}

func (t batchTask) input() ticktick.TaskInput {
	input := ticktick.TaskInput{
		Title:     t.Title,
		ProjectID: t.ProjectID,
		Content:   t.Content,
		StartDate: t.StartDate,
		DueDate:   t.DueDate,
		IsAllDay:  t.IsAllDay,
	}
	if t.Priority != nil {
		input.Priority = ticktick.PriorityPtr(ticktick.Priority(*t.Priority))
	}
	return input
}

// readBatch decodes a JSON array of tasks from path, or from r when path is "-".
func readBatch(fs afero.Fs, path string, r io.Reader) ([]ticktick.TaskInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = afero.ReadFile(fs, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var tasks []batchTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("invalid batch file: %w", err)
	}

	inputs := make([]ticktick.TaskInput, 0, len(tasks))
	for _, t := range tasks {
		inputs = append(inputs, t.input())
	}
	return inputs, nil
}

func newBatchCmd(opts *globalOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Create several tasks from a JSON file",
		Long: `Create several tasks from a JSON array. Every entry is validated first;
nothing is created if any entry is invalid.

  [{"title": "Buy milk", "project_id": "inbox123", "priority": 1}]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readBatch(appFs, file, cmd.InOrStdin())
			if err != nil {
				writeError(cmd.OutOrStdout(), err)
				return &reportedError{err: err}
			}
			return runCommand(cmd, opts, "tasks.batch", func(ctx context.Context, rt *runtime) (interface{}, error) {
				return rt.client.BatchCreateTasks(ctx, inputs)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with the tasks, - for stdin")
	return cmd
}
