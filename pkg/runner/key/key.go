// Package key provides CLI helpers to display the row legend.
package key

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

// Key prints the marks and icons used when rows are printed.
type Key struct {
	Out io.Writer
}

type legend struct {
	Symbol  string
	Meaning string
}

var marks = []legend{
	{"*", "selected"},
	{"✎", "in edit"},
	{"▾", "group shown, click to hide its children"},
	{"▸", "group hidden, click to show its children"},
}

var roles = []legend{
	{"parent", "upper level row of the view (story, epic or theme)"},
	{"child", "row nested under a parent (task, story or epic)"},
}

// Do renders the legend.
func (k *Key) Do(ctx context.Context) error {
	out := k.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintln(out, "")
	k.table(out, "Marks", marks)
	_, _ = fmt.Fprintln(out, "")
	k.table(out, "Roles", roles)
	_, _ = fmt.Fprintln(out, "")
	return nil
}

func (k *Key) table(out io.Writer, title string, rows []legend) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint(title), bold.Sprint("Meaning"))
	for _, v := range rows {
		tbl.AddRow(v.Symbol, v.Meaning)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(out, tbl)
}
