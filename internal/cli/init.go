package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/blueprint/internal/db"
	"github.com/example/blueprint/internal/projectctx"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a blueprint project",
		Long: `Create .blueprint/ with a default config.yaml and an empty database.

Running init again is safe: the config is left alone and the schema is
migrated to the latest version.

Examples:
  blueprint init
  blueprint init ./planning --demo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			out := cmd.OutOrStdout()

			pc, created, err := projectctx.Init(root)
			if err != nil {
				return fmt.Errorf("failed to initialize project: %w", err)
			}
			if created {
				fmt.Fprintf(out, "✓ Wrote %s\n", pc.ConfigPath)
			}

			conn, err := db.Open(pc.DatabasePath())
			if err != nil {
				return err
			}
			defer conn.Close()
			fmt.Fprintf(out, "✓ Database ready at %s\n", pc.DatabasePath())

			if demo {
				if err := db.SeedFixtures(conn); err != nil {
					return fmt.Errorf("failed to seed demo project: %w", err)
				}
				fmt.Fprintln(out, "✓ Seeded demo artifacts")
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, `  blueprint artifact create Goal "My first goal"`)
			fmt.Fprintln(out, "  blueprint validate")
			return nil
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "Seed a small demo project")

	return cmd
}
