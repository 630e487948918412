package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/blueprint/internal/ports/primary"
	"github.com/example/blueprint/internal/wire"
)

// ArtifactCmd returns the artifact command
func ArtifactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "artifact",
		Aliases: []string{"a"},
		Short:   "Create, inspect and move artifacts",
		Long: `Manage artifacts: Goal, Feature, Research, UseCase, Task and UMLModel.

Every write is checked by the gates; a rejected write changes nothing.`,
	}

	cmd.AddCommand(artifactCreateCmd())
	cmd.AddCommand(artifactShowCmd())
	cmd.AddCommand(artifactListCmd())
	cmd.AddCommand(artifactStatusCmd())
	cmd.AddCommand(artifactEditCmd())
	cmd.AddCommand(artifactTraceCmd())
	cmd.AddCommand(artifactChildrenCmd())
	cmd.AddCommand(artifactHistoryCmd())

	return cmd
}

func artifactCreateCmd() *cobra.Command {
	var id, parent, body string
	var depends, attrs []string

	cmd := &cobra.Command{
		Use:   "create [type] [title]",
		Short: "Create an artifact in DRAFT",
		Long: `Create an artifact. The ID is assigned from the type's prefix unless --id
is given, in which case it must be the next number in sequence.

Examples:
  blueprint artifact create Goal "Let teams plan work"
  blueprint artifact create Feature "Sprint planning" --parent GL-001
  blueprint artifact create Research "Is Kahn enough?" --parent FT-001 \
      --attr hypothesis="ties keep request order" --attr verdict=PENDING
  blueprint artifact create Task "Order tasks" --parent UC-001 --depends TSK-001`,
		Args: cobra.MinimumNArgs(2),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			attributes, err := parseAttrs(attrs)
			if err != nil {
				return err
			}
			ctx := wire.Context(context.Background())
			return wire.ArtifactAdapter(cmd.OutOrStdout()).Create(ctx, primary.CreateArtifactRequest{
				ID:           id,
				Type:         args[0],
				Title:        strings.Join(args[1:], " "),
				ParentID:     parent,
				Dependencies: depends,
				Body:         body,
				Attributes:   attributes,
			})
		}),
	}

	cmd.Flags().StringVar(&id, "id", "", "Explicit ID (must be next in sequence)")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent artifact ID")
	cmd.Flags().StringSliceVarP(&depends, "depends", "d", nil, "Comma-separated dependency IDs")
	cmd.Flags().StringVarP(&body, "body", "b", "", "Markdown body")
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "Attribute as key=value (repeatable)")

	return cmd
}

func artifactShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show artifact details",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			_, err := wire.ArtifactAdapter(cmd.OutOrStdout()).Show(context.Background(), args[0])
			return err
		}),
	}
}

func artifactListCmd() *cobra.Command {
	var filters primary.ArtifactFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List artifacts",
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.ArtifactAdapter(cmd.OutOrStdout()).List(context.Background(), filters)
		}),
	}

	cmd.Flags().StringVarP(&filters.Type, "type", "t", "", "Filter by type")
	cmd.Flags().StringVarP(&filters.Status, "status", "s", "", "Filter by status")
	cmd.Flags().StringVarP(&filters.ParentID, "parent", "p", "", "Filter by parent ID")
	cmd.Flags().StringVarP(&filters.Query, "query", "q", "", "Match ID or title")
	cmd.Flags().IntVarP(&filters.Limit, "limit", "n", 0, "Maximum results")

	return cmd
}

func artifactStatusCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "status [id] [status]",
		Short: "Move an artifact to a new lifecycle status",
		Long: `Move an artifact through its lifecycle:

  DRAFT -> REVIEW -> APPROVED -> DONE
  REVIEW -> NEEDS_FIX -> REVIEW
  REVIEW -> REJECTED
  any live status -> ARCHIVED

Examples:
  blueprint artifact status GL-001 REVIEW
  blueprint artifact status GL-001 approved --note "signed off"`,
		Args: cobra.ExactArgs(2),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(context.Background())
			return wire.ArtifactAdapter(cmd.OutOrStdout()).SetStatus(ctx, primary.UpdateStatusRequest{
				ArtifactID: args[0],
				Status:     args[1],
				Note:       note,
			})
		}),
	}

	cmd.Flags().StringVar(&note, "note", "", "Reason recorded in history")

	return cmd
}

func artifactEditCmd() *cobra.Command {
	var title, body string
	var depends, attrs []string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit an artifact's title, body, dependencies or attributes",
		Long: `Edit content fields. Only the flags given are changed.

An empty attribute value removes the key; --depends "" clears dependencies.`,
		Args: cobra.ExactArgs(1),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			req := primary.UpdateArtifactRequest{ArtifactID: args[0]}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("body") {
				req.Body = &body
			}
			if cmd.Flags().Changed("depends") {
				req.Dependencies = &depends
			}
			attributes, err := parseAttrs(attrs)
			if err != nil {
				return err
			}
			req.Attributes = attributes

			ctx := wire.Context(context.Background())
			return wire.ArtifactAdapter(cmd.OutOrStdout()).Edit(ctx, req)
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "New markdown body")
	cmd.Flags().StringSliceVarP(&depends, "depends", "d", nil, "Replace dependencies")
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "Set attribute key=value (repeatable)")

	return cmd
}

func artifactTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace [id]",
		Short: "Show the chain from the root goal to an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.ArtifactAdapter(cmd.OutOrStdout()).Trace(context.Background(), args[0])
		}),
	}
}

func artifactChildrenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "children [id]",
		Short: "List the direct children of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.ArtifactAdapter(cmd.OutOrStdout()).Children(context.Background(), args[0])
		}),
	}
}

func artifactHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [id]",
		Short: "Show the change history of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.ArtifactAdapter(cmd.OutOrStdout()).History(context.Background(), args[0])
		}),
	}
}
