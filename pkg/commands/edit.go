package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	to := &options.TargetOptions{}
	fo := &options.FieldOptions{}
	e := &edit.Edit{}

	cmd := &cobra.Command{
		Use:   "edit row [row...]",
		Short: "Change fields of rows.",
		Long: `Put the rows in edit, apply every --set and save them in one batch.
Other clients are notified once, after the last save, unless --no-push.`,
		Example: `
backlog edit 31 32 --set owner=ann
backlog edit parent:12 --set title="Reset password" --set deadline=2026-11-01
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
				e.Service, e.Printer, e.Refs, e.Fields = s, p, to.Refs, fields
				return e.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddFieldArgs(cmd, fo)
	cmd.Flags().BoolVar(&e.NoPush, "no-push", false, "Save without notifying other clients.")

	topLevel.AddCommand(cmd)
}
