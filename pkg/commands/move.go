package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/runner/move"
)

func addMove(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	to := &options.TargetOptions{}
	m := &move.Move{}
	before := ""

	cmd := &cobra.Command{
		Use:   "move row [row...]",
		Short: "Reorder rows like a drag and drop.",
		Long: `Move the rows, in their displayed order, in front of --before, to
position --index among the rows that stay, or to the end. Moving a child in
front of a row of another group moves it to that group. Only possible when the
view is ordered by prio.`,
		Example: `
backlog move 14 --before 12
backlog move child:31 child:32 --before child:40
backlog move 14 --index 0
`,
		Args:              options.RowArgs(to, 1),
		ValidArgsFunction: rowCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			m.Before = nil
			if before != "" {
				ref, err := item.ParseRef(before)
				if err != nil {
					return err
				}
				m.Before = &ref
			}
			return withService(oo, app.Options{}, func(s *app.Service) error {
				p, err := oo.Printer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				m.Service, m.Printer, m.Refs = s, p, to.Refs
				return m.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().StringVar(&before, "before", "", "Row to drop in front of.")
	cmd.Flags().IntVar(&m.Index, "index", -1, "Drop position among the rows that stay; -1 is the end.")
	_ = cmd.RegisterFlagCompletionFunc("before", rowCompletions)

	topLevel.AddCommand(cmd)
}
