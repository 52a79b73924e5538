package options

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/printers"
)

// OutputOptions
type OutputOptions struct {
	Output string
	ShowID bool
	All    bool
}

func AddOutputArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().StringVarP(&o.Output, "output", "o", string(printers.FormatPretty),
		"Output format. One of "+strings.Join(printers.Formats(), ", ")+".")
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the id of each row.")
	cmd.Flags().BoolVar(&o.All, "all", false,
		"Include rows of collapsed groups.")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return printers.Formats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// Printer returns a printer writing to out in the selected format.
func (o *OutputOptions) Printer(out io.Writer) (printers.Printer, error) {
	f, err := printers.ParseFormat(o.Output)
	if err != nil {
		return printers.Printer{}, err
	}
	return printers.Printer{Out: out, Format: f, ShowID: o.ShowID, All: o.All}, nil
}

// Structured reports whether the output is meant for machines.
func (o *OutputOptions) Structured() bool {
	f, _ := printers.ParseFormat(o.Output)
	return f == printers.FormatJSON || f == printers.FormatYAML
}

// HandleError prints err as a JSON object for structured output and swallows
// it; otherwise it is returned as is.
func (o *OutputOptions) HandleError(err error) error {
	if err != nil && o.Structured() {
		b, merr := json.Marshal(map[string]string{"error": err.Error()})
		if merr != nil {
			return merr
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}
