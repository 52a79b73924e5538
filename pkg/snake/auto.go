package snake

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// PromptNext walks the user down the command tree of cmd, then asks for the
// flags of the chosen leaf and runs it.
func PromptNext(cmd *cobra.Command, args []string) error {
	p := Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	return p.Next(cmd, args)
}

// Next is PromptNext on p's streams.
func (p Prompter) Next(cmd *cobra.Command, args []string) error {
	var subcommands []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() {
			subcommands = append(subcommands, c)
		}
	}
	if len(subcommands) == 0 {
		return p.Flags(cmd, args)
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Name | bold }} {{ .Short | green }}",
		Inactive: "   {{ .Name }} {{ .Short | cyan }}",
		Selected: "{{ .Use | bold }}",
		Details: `
--------- Details ----------
{{ .Long }}
`,
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Commands",
		Items:     subcommands,
		Templates: templates,
		Size:      10,
		Searcher: func(input string, index int) bool {
			c := subcommands[index]
			return matches(c.Name()+c.Short, input)
		},
		Stdin:  p.stdin(),
		Stdout: p.stdout(),
	}

	i, _, err := prompt.Run()
	if err != nil {
		return err
	}

	next := subcommands[i]
	if next.HasAvailableSubCommands() {
		return p.Next(next, args)
	}
	return p.Flags(next, args)
}

// Flags prompts for the flags of cmd until the user picks "Continue...", then
// executes cmd with the collected arguments.
func (p Prompter) Flags(cmd *cobra.Command, args []string) error {
	var fs []*pflag.Flag
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "interactive" || f.Name == "help" {
			return
		}
		fs = append(fs, f)
	})

	fs = append(fs, &pflag.Flag{
		Name:   "Continue...",
		Hidden: true,
		Value:  &continueType{},
	})

	templates := &promptui.SelectTemplates{
		Label:    "{{ . | magenta }} flags?",
		Active:   "➜ {{ if eq .Value.Type \"continue\" }}{{ .Name | bold | green }}{{ else }}{{ .Name | bold }} {{ .Usage | green | cyan }}{{ end }}",
		Inactive: "  {{ if eq .Value.Type \"continue\" }}{{ .Name | faint | green }}{{ else }}{{ .Name }} {{ .Usage | cyan }}{{ end }}",
		Selected: "{{ if eq .Value.Type \"continue\" }}{{ .Name | bold | green }}{{ else }}{{ .Name | bold }}{{ end }}",
		Details: `
--------- Details ----------
default: {{ .DefValue }}
type: {{ .Value.Type }}
`,
	}

	index := 0
	for {
		prompt := promptui.Select{
			HideHelp:  true,
			Label:     cmd.Name(),
			Items:     fs,
			Templates: templates,
			Size:      10,
			CursorPos: index,
			Searcher: func(input string, index int) bool {
				return matches(fs[index].Name, input)
			},
			Stdin:  p.stdin(),
			Stdout: p.stdout(),
		}

		i, _, err := prompt.Run()
		if err != nil {
			return err
		}
		index = i

		var more string
		switch t := fs[i].Value.Type(); t {
		case "bool":
			more, err = p.FlagBool(fs[i])
		case "string", "int", "int64", "duration":
			more, err = p.FlagString(fs[i])
		case "continue":
			args = append(args, "--interactive=false")
			_, _ = fmt.Fprintln(p.out(), "Run this:", cmd.CommandPath(), strings.Join(args, " "))
			return runLeaf(cmd, args)
		default:
			_, _ = fmt.Fprintf(p.out(), "%q flag type not supported interactively\n", t)
		}
		if err != nil {
			return err
		}
		if more != "" {
			args = append(args, more)
		}
	}
}

// runLeaf parses args into cmd's flags and calls its run function directly;
// Execute on a child would restart from the root.
func runLeaf(cmd *cobra.Command, args []string) error {
	if err := cmd.ParseFlags(args); err != nil {
		return err
	}
	rest := cmd.Flags().Args()
	if err := cmd.ValidateArgs(rest); err != nil {
		return err
	}
	switch {
	case cmd.RunE != nil:
		return cmd.RunE(cmd, rest)
	case cmd.Run != nil:
		cmd.Run(cmd, rest)
		return nil
	}
	return cmd.Help()
}

type continueType struct{}

func (*continueType) String() string {
	return "continue"
}

func (*continueType) Set(string) error {
	return nil
}

func (*continueType) Type() string {
	return "continue"
}
