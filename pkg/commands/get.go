package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	g := &get.Get{}
	archived := false

	cmd := &cobra.Command{
		Use:     "get",
		Aliases: []string{"show", "ls"},
		Short:   "Print the rows of the view.",
		Example: `
backlog get
backlog get --view epic-story --expand -k
backlog get --ids
backlog get --order title -o yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(oo, app.Options{ShowArchived: archived}, func(s *app.Service) error {
				p, err := oo.Printer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				g.Service, g.Printer = s, p
				return g.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().BoolVar(&g.IDs, "ids", false, "Print the ids of the selected rows.")
	cmd.Flags().BoolVar(&g.Expand, "expand", false, "Show every child row.")
	cmd.Flags().BoolVar(&g.Collapse, "collapse", false, "Hide every child row.")
	cmd.Flags().Int64SliceVar(&g.Toggle, "toggle", nil, "Flip the children of these parents.")
	cmd.Flags().BoolVar(&archived, "archived", false, "Include the archived section.")

	topLevel.AddCommand(cmd)
}
