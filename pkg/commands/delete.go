package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/runner/remove"
	"tableflip.dev/backlog/pkg/snake"
)

func addDelete(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	to := &options.TargetOptions{}
	r := &remove.Remove{}
	yes := false

	cmd := &cobra.Command{
		Use:     "delete row",
		Aliases: []string{"rm"},
		Short:   "Delete a row after confirmation.",
		Example: `
backlog delete child:31
backlog delete 12 --yes
`,
		Args:              options.RowArgs(to, 1),
		ValidArgsFunction: rowCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(oo, app.Options{}, func(s *app.Service) error {
				p, err := oo.Printer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				r.Service, r.Printer, r.Ref = s, p, to.First()
				r.Confirm = snake.Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
				if yes {
					r.Confirm = snake.Yes
				}
				return r.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation.")

	topLevel.AddCommand(cmd)
}
