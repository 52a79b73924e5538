package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/runner/add"
)

func addCreate(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"add"},
		Short:   "Create a task, story, epic or theme.",
		Long: `Create a row. The new row is selected and its fields given with --set
are saved right away.`,
	}
	for _, t := range item.AllTypes() {
		addCreateType(cmd, t)
	}
	topLevel.AddCommand(cmd)
}

func addCreateType(parent *cobra.Command, t item.Type) {
	oo := &options.OutputOptions{}
	fo := &options.FieldOptions{}
	a := &add.Add{Type: t}

	cmd := &cobra.Command{
		Use:   string(t),
		Short: fmt.Sprintf("Create a %s.", t),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := fo.Assignments()
			if err != nil {
				return err
			}
			if t == item.TypeTask && a.Under == 0 {
				return fmt.Errorf("a task needs its story, use --under")
			}
			return withService(oo, app.Options{}, func(s *app.Service) error {
				p, err := oo.Printer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				a.Service, a.Printer, a.Fields = s, p, fields
				return a.Do(cmdContext(cmd))
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddFieldArgs(cmd, fo)

	switch t {
	case item.TypeTask:
		cmd.Example = `
backlog create task --under 12 --set title="Write the mail" --set owner=ann`
		cmd.Flags().Int64Var(&a.Under, "under", 0, "Id of the story.")
	case item.TypeStory:
		cmd.Example = `
backlog create story --epic Login --theme Platform --set title="Reset password"
backlog create story --view epic-story --under 4`
		cmd.Flags().Int64Var(&a.Under, "under", 0, "Id of the epic row, when epics are rows of the view.")
		cmd.Flags().StringVar(&a.EpicTitle, "epic", "", "Title of the epic.")
		cmd.Flags().StringVar(&a.ThemeTitle, "theme", "", "Title of the theme of the epic.")
		_ = cmd.RegisterFlagCompletionFunc("theme", themeCompletions)
		_ = cmd.RegisterFlagCompletionFunc("epic", epicCompletions(&a.ThemeTitle))
	case item.TypeEpic:
		cmd.Example = `
backlog create epic --theme Platform`
		cmd.Flags().Int64Var(&a.Under, "under", 0, "Id of the theme row, when themes are rows of the view.")
		cmd.Flags().StringVar(&a.ThemeTitle, "theme", "", "Title of the theme.")
		_ = cmd.RegisterFlagCompletionFunc("theme", themeCompletions)
	case item.TypeTheme:
		cmd.Example = `
backlog create theme --view theme-epic --set title=Mobile`
	}

	parent.AddCommand(cmd)
}
