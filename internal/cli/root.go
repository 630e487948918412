package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/blueprint/internal/version"
	"github.com/example/blueprint/internal/wire"
)

// RootCmd returns the blueprint command tree.
func RootCmd() *cobra.Command {
	var projectDir string
	var actor string

	cmd := &cobra.Command{
		Use:     "blueprint",
		Short:   "Blueprint - gated artifact workflow engine",
		Version: version.String(),
		Long: `Blueprint tracks goals, features, research, use cases, tasks and UML
models as one traceability graph. Every write passes through gates that
keep the chain from task to goal intact, and approved tasks are planned
into sprints in dependency order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.SetProjectDir(projectDir)
			wire.SetActor(actor)
		},
	}

	cmd.PersistentFlags().StringVarP(&projectDir, "project", "C", ".", "Start project detection from this directory")
	cmd.PersistentFlags().StringVar(&actor, "actor", "", "Actor recorded in history (default: config, then $USER)")

	cmd.AddCommand(InitCmd())
	cmd.AddCommand(ArtifactCmd())
	cmd.AddCommand(PendingCmd())
	cmd.AddCommand(ValidateCmd())
	cmd.AddCommand(BacklogCmd())
	cmd.AddCommand(SprintCmd())
	cmd.AddCommand(KnowledgeCmd())
	cmd.AddCommand(ExportCmd())
	cmd.AddCommand(ImportCmd())
	cmd.AddCommand(DoctorCmd())
	cmd.AddCommand(VersionCmd())

	return cmd
}

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.String())
		},
	}
}
