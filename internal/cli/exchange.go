package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/blueprint/internal/ports/primary"
	"github.com/example/blueprint/internal/wire"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	var format, dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the artifact set as a JSON index or markdown files",
		Long: `Export every artifact.

  --format json       print the index to stdout
  --format markdown   write one file per artifact under --dir (default from config)

Examples:
  blueprint export > index.json
  blueprint export --format markdown --dir docs`,
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			adapter := wire.ExchangeAdapter(cmd.OutOrStdout())
			switch format {
			case "json":
				return adapter.ExportJSON(context.Background())
			case "markdown", "md":
				if dir == "" {
					pc := wire.Project()
					dir = pc.Config.ExportPath(pc.Root)
				}
				return adapter.ExportMarkdown(context.Background(), dir)
			default:
				return fmt.Errorf("unknown format %q (want json or markdown)", format)
			}
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or markdown")
	cmd.Flags().StringVar(&dir, "dir", "", "Target directory for markdown")

	return cmd
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [dir]",
		Short: "Import artifacts from a markdown tree",
		Long: `Read every .md file under dir, validate the new artifacts together with
the stored ones and store them all, or nothing if any gate fails. Artifacts
whose ID already exists are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(context.Background())
			result, err := wire.ExchangeAdapter(cmd.OutOrStdout()).Import(ctx, primary.ImportRequest{
				Dir:    args[0],
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}
			if n := len(result.Report.Violations); n > 0 {
				return fmt.Errorf("import rejected: %d issue(s)", n)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without writing")

	return cmd
}
