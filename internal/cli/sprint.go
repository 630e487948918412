package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/blueprint/internal/ports/primary"
	"github.com/example/blueprint/internal/wire"
)

// BacklogCmd returns the backlog command
func BacklogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backlog",
		Short: "List tasks ready to be pulled into a sprint",
		Long: `A task is ready when it is APPROVED, unscheduled, its use case is
APPROVED and every dependency is DONE.`,
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.SprintAdapter(cmd.OutOrStdout()).Backlog(context.Background())
		}),
	}
}

// SprintCmd returns the sprint command
func SprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Plan and track sprints",
	}

	cmd.AddCommand(sprintStartCmd())
	cmd.AddCommand(sprintShowCmd())
	cmd.AddCommand(sprintCompleteCmd())
	cmd.AddCommand(sprintListCmd())

	return cmd
}

func sprintStartCmd() *cobra.Command {
	var goal string

	cmd := &cobra.Command{
		Use:   "start [task-id...]",
		Short: "Start a sprint from a batch of tasks",
		Long: `Validate a batch of tasks and commit it as the current sprint, ordered so
every task follows the tasks it depends on. Dependencies must be DONE or in
the same batch. Nothing is scheduled unless the whole batch passes.

Examples:
  blueprint sprint start TSK-002 TSK-003 --goal "ordering"`,
		Args: cobra.MinimumNArgs(1),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(context.Background())
			return wire.SprintAdapter(cmd.OutOrStdout()).Start(ctx, primary.StartSprintRequest{
				TaskIDs: args,
				Goal:    goal,
			})
		}),
	}

	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Sprint goal")

	return cmd
}

func sprintShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current sprint checklist",
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.SprintAdapter(cmd.OutOrStdout()).Show(context.Background())
		}),
	}
}

func sprintCompleteCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "complete [task-id]",
		Short: "Mark a task DONE and tick its checkmark",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(context.Background())
			return wire.SprintAdapter(cmd.OutOrStdout()).Complete(ctx, primary.CompleteTaskRequest{
				TaskID: args[0],
				Note:   note,
			})
		}),
	}

	cmd.Flags().StringVar(&note, "note", "", "Note recorded in history")

	return cmd
}

func sprintListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sprints, newest first",
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.SprintAdapter(cmd.OutOrStdout()).List(context.Background())
		}),
	}
}
