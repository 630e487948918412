package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/blueprint/internal/db"
	"github.com/example/blueprint/internal/wire"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for project health checks
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the project, its database and its artifacts",
		Long: `Health check for a blueprint project.

Validates:
- Project detection and config
- Database schema version
- Artifact set (same audit as 'blueprint validate')

Examples:
  blueprint doctor
  blueprint doctor --quiet   # exit code only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runChecks(context.Background())

			if !quiet {
				printChecks(cmd.OutOrStdout(), results)
			}
			for _, r := range results {
				if r.Status == "✗" {
					return fmt.Errorf("project check failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func runChecks(ctx context.Context) []CheckResult {
	if err := wire.Ready(); err != nil {
		return []CheckResult{{Name: "Project", Status: "✗", Details: "  " + err.Error()}}
	}
	pc := wire.Project()
	results := []CheckResult{{Name: "Project", Status: "✓"}}

	if err := pc.Config.Validate(); err != nil {
		results = append(results, CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()})
	} else {
		results = append(results, CheckResult{Name: "Config", Status: "✓"})
	}

	results = append(results, checkSchema(pc.DatabasePath()))

	report, err := wire.ArtifactService().ValidateAll(ctx)
	switch {
	case err != nil:
		results = append(results, CheckResult{Name: "Artifacts", Status: "✗", Details: "  " + err.Error()})
	case len(report.Violations) > 0:
		results = append(results, CheckResult{
			Name:    "Artifacts",
			Status:  "⚠",
			Details: fmt.Sprintf("  %d issue(s) found\n  Run 'blueprint validate' for the list.", len(report.Violations)),
		})
	default:
		results = append(results, CheckResult{Name: "Artifacts", Status: "✓"})
	}
	return results
}

func checkSchema(path string) CheckResult {
	conn, err := db.GetDB(path)
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
	}
	applied, latest, err := db.SchemaVersion(conn)
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
	}
	if applied != latest {
		return CheckResult{
			Name:    "Database",
			Status:  "⚠",
			Details: fmt.Sprintf("  schema at version %d, latest is %d", applied, latest),
		}
	}
	return CheckResult{Name: "Database", Status: "✓"}
}

func printChecks(out io.Writer, results []CheckResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Check              Status")
	fmt.Fprintln(out, "─────────────────────────")
	for _, r := range results {
		fmt.Fprintf(out, "%-18s %s\n", r.Name, r.Status)
	}
	fmt.Fprintln(out)

	hasDetails := false
	for _, r := range results {
		if r.Status != "✓" && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(out, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(out, "\n%s:\n%s\n", r.Name, r.Details)
		}
	}
	if !hasDetails {
		fmt.Fprintln(out, "All checks passed.")
	}
}
