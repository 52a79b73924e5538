package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/runner/choose"
	"tableflip.dev/backlog/pkg/snake"
)

func addSelect(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	to := &options.TargetOptions{}
	i := &options.InteractiveOptions{}
	c := &choose.Choose{}

	cmd := &cobra.Command{
		Use:   "select [row...]",
		Short: "Change the stored selection.",
		Long: `Select rows. A row is an id, or parent:id / child:id when the id is
ambiguous. Rows of the other role than the current selection start a new
selection. The selection is stored for the area and survives view switches.`,
		Example: `
backlog select 12 14
backlog select --extend child:31
backlog select --clear
backlog select -i
`,
		Args:              options.RowArgs(to, 0),
		ValidArgsFunction: rowCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(oo, app.Options{}, func(s *app.Service) error {
				p, err := oo.Printer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				c.Service, c.Printer, c.Refs = s, p, to.Refs
				if i.Interactive {
					c.Prompter = &snake.Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
				}
				return c.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	options.InteractiveArgs(cmd, i)
	cmd.Flags().BoolVarP(&c.Extend, "extend", "x", false, "Toggle the rows into the current selection.")
	cmd.Flags().BoolVar(&c.Clear, "clear", false, "Clear the selection first.")

	topLevel.AddCommand(cmd)
}
