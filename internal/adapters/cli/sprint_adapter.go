package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/blueprint/internal/ports/primary"
)

// SprintAdapter translates backlog and sprint commands into SprintService calls.
type SprintAdapter struct {
	service primary.SprintService
	out     io.Writer
}

// NewSprintAdapter creates a new SprintAdapter with the given service.
func NewSprintAdapter(service primary.SprintService, out io.Writer) *SprintAdapter {
	return &SprintAdapter{
		service: service,
		out:     out,
	}
}

// Backlog lists the tasks ready for a sprint.
func (a *SprintAdapter) Backlog(ctx context.Context) error {
	tasks, err := a.service.GetBacklog(ctx)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "Backlog is empty")
		return nil
	}
	printArtifactTable(a.out, tasks)
	return nil
}

// Start commits a batch of tasks as the new sprint.
func (a *SprintAdapter) Start(ctx context.Context, req primary.StartSprintRequest) error {
	sp, err := a.service.StartSprint(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Started sprint %s with %d task(s)\n", okMark, sp.ID, sp.Total)
	a.printSprint(sp)
	return nil
}

// Show displays the current sprint.
func (a *SprintAdapter) Show(ctx context.Context) error {
	sp, err := a.service.GetCurrentSprint(ctx)
	if err != nil {
		return err
	}

	a.printSprint(sp)
	return nil
}

// Complete marks a task DONE and ticks its checkmark.
func (a *SprintAdapter) Complete(ctx context.Context, req primary.CompleteTaskRequest) error {
	resp, err := a.service.CompleteTask(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s %s is DONE\n", okMark, resp.Task.ID)
	if resp.Sprint != nil {
		fmt.Fprintf(a.out, "  Sprint %s: %d/%d\n", resp.Sprint.ID, resp.Sprint.Done, resp.Sprint.Total)
	}
	if resp.SprintClosed {
		fmt.Fprintf(a.out, "%s Sprint %s closed\n", okMark, resp.Sprint.ID)
	}
	return nil
}

// List lists every sprint, newest first.
func (a *SprintAdapter) List(ctx context.Context) error {
	sprints, err := a.service.ListSprints(ctx)
	if err != nil {
		return err
	}

	if len(sprints) == 0 {
		fmt.Fprintln(a.out, "No sprints found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-8s %-9s %s\n", "ID", "STATUS", "PROGRESS", "GOAL")
	fmt.Fprintln(a.out, rule)
	for _, sp := range sprints {
		fmt.Fprintf(a.out, "%-10s %-8s %-9s %s\n", sp.ID, sp.Status, fmt.Sprintf("%d/%d", sp.Done, sp.Total), sp.Goal)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *SprintAdapter) printSprint(sp *primary.Sprint) {
	fmt.Fprintf(a.out, "\nSprint: %s [%s] %d/%d\n", sp.ID, sp.Status, sp.Done, sp.Total)
	if sp.Goal != "" {
		fmt.Fprintf(a.out, "Goal:   %s\n", sp.Goal)
	}
	fmt.Fprintln(a.out, rule)
	for _, t := range sp.Tasks {
		box := "[ ]"
		if t.Checked {
			box = color.New(color.FgGreen).Sprint("[x]")
		}
		fmt.Fprintf(a.out, "%s %s %s\n", box, t.TaskID, t.Title)
	}
	fmt.Fprintln(a.out)
}
