package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	i := &info.Info{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the configuration, the stored selection and the area.",
		Example: `
backlog info
backlog info -o json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(oo, app.Options{}, func(s *app.Service) error {
				p, err := oo.Printer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				i.Service, i.Printer = s, p
				return i.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
