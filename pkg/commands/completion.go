package commands

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/logging"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(backlog completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(backlog completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(cmd.OutOrStdout())
		},
	}

	topLevel.AddCommand(cmd)
}

const completionTimeout = 2 * time.Second

// completionService loads the view quietly; completions never fail loudly.
func completionService(ctx context.Context) (*app.Service, bool) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, false
	}
	cfg.Timeout = completionTimeout
	s, err := app.New(cfg, app.Options{Logger: logging.Discard()})
	if err != nil {
		return nil, false
	}
	if err := s.Start(ctx); err != nil {
		_ = s.Close()
		return nil, false
	}
	return s, true
}

// rowCompletions offers the displayed rows as role:id with their title.
func rowCompletions(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	s, ok := completionService(cmdContext(cmd))
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer s.Close()

	var out []string
	for _, r := range s.Controller.Rows().Displayed() {
		ref := r.Item.Ref(r.Role).String()
		if strings.HasPrefix(ref, toComplete) || strings.HasPrefix(strconv.FormatInt(r.Item.ID, 10), toComplete) {
			out = append(out, ref+"\t"+r.Item.Title)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func themeCompletions(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	s, ok := completionService(cmdContext(cmd))
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer s.Close()
	names, err := s.Themes(cmdContext(cmd), toComplete)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return quote(names), cobra.ShellCompDirectiveNoFileComp
}

// epicCompletions scopes the suggestions to the theme flag once it is set.
func epicCompletions(theme *string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		s, ok := completionService(cmdContext(cmd))
		if !ok {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer s.Close()
		names, err := s.Epics(cmdContext(cmd), *theme, toComplete)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return quote(names), cobra.ShellCompDirectiveNoFileComp
	}
}

func quote(names []string) []string {
	for i := range names {
		if strings.ContainsAny(names[i], " \t\"'") {
			names[i] = strconv.Quote(names[i])
		}
	}
	return names
}
