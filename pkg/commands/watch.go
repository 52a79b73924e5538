package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	w := &watch.Watch{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the view and reprint it on every change.",
		Long: `Keep the view open. Changes announced on the push channel and selections
stored by other backlog processes are followed until interrupted.`,
		Example: `
backlog watch --view epic-story
backlog watch --events
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(oo, app.Options{Watch: true}, func(s *app.Service) error {
				p, err := oo.Printer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				w.Service, w.Printer = s, p
				return w.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().BoolVar(&w.Events, "events", false, "Also print every event.")

	topLevel.AddCommand(cmd)
}
