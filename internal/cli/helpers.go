package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/blueprint/internal/wire"
)

// runE is the signature of a cobra RunE.
type runE func(cmd *cobra.Command, args []string) error

// withProject fails fast outside a project before running fn.
func withProject(fn runE) runE {
	return func(cmd *cobra.Command, args []string) error {
		if err := wire.Ready(); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

// parseAttrs turns repeated key=value flags into a map. An empty value is
// kept so edits can remove a key.
func parseAttrs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid attribute %q (want key=value)", p)
		}
		attrs[key] = value
	}
	return attrs, nil
}
