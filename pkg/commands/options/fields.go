package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/item"
)

// FieldOptions collects field assignments.
type FieldOptions struct {
	Set []string
}

func AddFieldArgs(cmd *cobra.Command, o *FieldOptions) {
	cmd.Flags().StringArrayVarP(&o.Set, "set", "s", nil,
		"Set a field, as field=value. Repeatable.")
	_ = cmd.RegisterFlagCompletionFunc("set", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		seen := map[string]bool{}
		var out []string
		for _, t := range item.AllTypes() {
			for _, f := range item.Fields(t) {
				if !seen[f] && strings.HasPrefix(f, toComplete) {
					seen[f] = true
					out = append(out, f+"=")
				}
			}
		}
		return out, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	})
}

// Assignments parses the --set values.
func (o *FieldOptions) Assignments() ([]item.Assignment, error) {
	out := make([]item.Assignment, 0, len(o.Set))
	for _, s := range o.Set {
		a, err := item.ParseAssignment(s)
		if err != nil {
			return nil, fmt.Errorf("--set: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}
