package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/blueprint/internal/wire"
)

// KnowledgeCmd returns the knowledge command
func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Keep free-text project knowledge by topic",
		Long:  `Knowledge notes live outside the artifact graph and are never gated.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [topic] [text...]",
		Short: "Append a note under a topic",
		Args:  cobra.MinimumNArgs(2),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(context.Background())
			return wire.KnowledgeAdapter(cmd.OutOrStdout()).Add(ctx, args[0], strings.Join(args[1:], " "))
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show [topic]",
		Short: "Show every note under a topic",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.KnowledgeAdapter(cmd.OutOrStdout()).Show(context.Background(), args[0])
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "topics",
		Short: "List topics",
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.KnowledgeAdapter(cmd.OutOrStdout()).Topics(context.Background())
		}),
	})

	return cmd
}
