package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/blueprint/internal/wire"
)

// PendingCmd returns the pending command
func PendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List artifacts waiting in REVIEW or NEEDS_FIX",
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			return wire.ArtifactAdapter(cmd.OutOrStdout()).Pending(context.Background())
		}),
	}
}

// ValidateCmd returns the validate command
func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Audit the whole artifact set against every gate",
		Long: `Run every gate over the stored artifacts and list each violation.

Exits non-zero when any issue is found.`,
		RunE: withProject(func(cmd *cobra.Command, args []string) error {
			report, err := wire.ArtifactAdapter(cmd.OutOrStdout()).Validate(context.Background())
			if err != nil {
				return err
			}
			if n := len(report.Violations); n > 0 {
				return fmt.Errorf("validation failed: %d issue(s)", n)
			}
			return nil
		}),
	}
}
