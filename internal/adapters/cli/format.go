// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/blueprint/internal/ports/primary"
)

const rule = "────────────────────────────────────────────────────────────────"

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// statusColor tints a lifecycle status for terminal output.
func statusColor(status string) string {
	switch status {
	case "APPROVED", "DONE":
		return color.New(color.FgGreen).Sprint(status)
	case "REVIEW":
		return color.New(color.FgCyan).Sprint(status)
	case "NEEDS_FIX":
		return color.New(color.FgYellow).Sprint(status)
	case "REJECTED":
		return color.New(color.FgRed).Sprint(status)
	case "ARCHIVED":
		return color.New(color.FgHiBlack).Sprint(status)
	default:
		return status
	}
}

// FormatViolation renders one gate violation on a single line.
func FormatViolation(v *primary.Violation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", v.Gate, v.Code)
	if v.ArtifactID != "" {
		fmt.Fprintf(&b, " %s", v.ArtifactID)
	}
	if v.Ref != "" {
		fmt.Fprintf(&b, " (%s)", v.Ref)
	}
	if v.Expected != "" || v.Actual != "" {
		fmt.Fprintf(&b, ": expected %s, got %s", orDash(v.Expected), orDash(v.Actual))
	}
	if len(v.Path) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(v.Path, " -> "))
	}
	return b.String()
}

func printReport(out io.Writer, report *primary.ValidationReport) {
	if len(report.Violations) == 0 {
		fmt.Fprintf(out, "%s %s\n", okMark, report.Summary)
		return
	}
	fmt.Fprintf(out, "%s Found %d issue(s):\n", failMark, len(report.Violations))
	for _, v := range report.Violations {
		fmt.Fprintf(out, "  - %s\n", FormatViolation(v))
	}
}

func printArtifactTable(out io.Writer, artifacts []*primary.Artifact) {
	fmt.Fprintf(out, "\n%-10s %-9s %-10s %s\n", "ID", "TYPE", "STATUS", "TITLE")
	fmt.Fprintln(out, rule)
	for _, a := range artifacts {
		// pad before tinting so escape codes do not break alignment
		fmt.Fprintf(out, "%-10s %-9s %s %s\n", a.ID, a.Type, statusColor(fmt.Sprintf("%-10s", a.Status)), a.Title)
	}
	fmt.Fprintln(out)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
