package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/runner/key"
)

func addKey(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Show the legend of printed rows.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := &key.Key{Out: cmd.OutOrStdout()}
			return k.Do(cmdContext(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}
