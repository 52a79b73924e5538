package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/runner/complete"
)

func addSuggest(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	c := &complete.Complete{}

	cmd := &cobra.Command{
		Use:   "suggest themes|epics [term]",
		Short: "Suggest theme or epic names.",
		Example: `
backlog suggest themes plat
backlog suggest epics --theme Platform lo
`,
		ValidArgs: []string{complete.Themes, complete.Epics},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("requires %s or %s and an optional term", complete.Themes, complete.Epics)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Kind, c.Term = args[0], ""
			if len(args) > 1 {
				c.Term = args[1]
			}
			return withService(oo, app.Options{}, func(s *app.Service) error {
				p, err := oo.Printer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				c.Service, c.Printer = s, p
				return c.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().StringVar(&c.Theme, "theme", "", "Theme the epics belong to.")
	_ = cmd.RegisterFlagCompletionFunc("theme", themeCompletions)

	topLevel.AddCommand(cmd)
}
