package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	"tableflip.dev/backlog/pkg/render"
)

// Format selects how a list is written.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

// Formats lists the supported formats.
func Formats() []string {
	return []string{string(FormatPretty), string(FormatTable), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat validates raw. Empty means pretty.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatPretty, nil
	case FormatPretty, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("printers: unknown format %q, want one of %s", raw, strings.Join(Formats(), ", "))
}

// Printer writes render lists and values in one format.
type Printer struct {
	Out    io.Writer
	Format Format
	ShowID bool
	All    bool
}

// Writer is the destination of p; color.Output when Out is unset.
func (p *Printer) Writer() io.Writer {
	if p.Out == nil {
		return color.Output
	}
	return p.Out
}

// Structured reports whether p writes for machines. The zero Format is
// pretty.
func (p *Printer) Structured() bool {
	return p.Format == FormatJSON || p.Format == FormatYAML
}

// List writes l.
func (p *Printer) List(l render.List) error {
	switch p.Format {
	case FormatTable:
		p.table(l)
		return nil
	case FormatJSON, FormatYAML:
		rows := l.Rows
		if !p.All {
			rows = l.Displayed()
		}
		return p.Value(render.List{View: l.View, Rows: rows})
	}
	pp := PrettyPrint{Out: p.Out, ShowID: p.ShowID, All: p.All}
	pp.List(l)
	return nil
}

func (p *Printer) table(l render.List) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("ROLE"), bold.Sprint("TYPE"), bold.Sprint("PARENT"), bold.Sprint("TITLE"), bold.Sprint("STATE"))
	for _, r := range l.Rows {
		if r.Hidden && !p.All {
			continue
		}
		parent := ""
		if r.ParentID != 0 {
			parent = fmt.Sprint(r.ParentID)
		}
		tbl.AddRow(r.Item.ID, r.Role, r.Item.Type, parent, r.Item.Title, state(r))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(p.Writer(), tbl)
}

func state(r render.Row) string {
	var s []string
	if r.Selected {
		s = append(s, "selected")
	}
	if r.Editing {
		s = append(s, "editing")
	}
	if r.Hidden {
		s = append(s, "hidden")
	}
	if r.Archived {
		s = append(s, "archived")
	}
	return strings.Join(s, ",")
}

// Value writes v as JSON or YAML; other formats fall back to JSON.
func (p *Printer) Value(v any) error {
	if p.Format == FormatYAML {
		b, err := ToYAML(v)
		if err != nil {
			return err
		}
		_, err = p.Writer().Write(b)
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Writer(), string(b))
	return err
}

// ToYAML renders v through its JSON form so both outputs share field names
// and wire formats.
func ToYAML(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}
