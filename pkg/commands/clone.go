package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/runner/clone"
)

func addClone(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	to := &options.TargetOptions{}
	fo := &options.FieldOptions{}
	c := &clone.Clone{}

	cmd := &cobra.Command{
		Use:   "clone row",
		Short: "Duplicate a story, epic or theme.",
		Example: `
backlog clone 12 --with-children --set title="Reset password (mobile)"
`,
		Args:              options.RowArgs(to, 1),
		ValidArgsFunction: rowCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := fo.Assignments()
			if err != nil {
				return err
			}
			return withService(oo, app.Options{}, func(s *app.Service) error {
				p, err := oo.Printer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				c.Service, c.Printer, c.Ref, c.Fields = s, p, to.First(), fields
				return c.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddFieldArgs(cmd, fo)
	cmd.Flags().BoolVar(&c.WithChildren, "with-children", false, "Copy the tasks of a story too.")

	topLevel.AddCommand(cmd)
}
