package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/backlog/pkg/events"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/render"
)

// PrettyPrint writes the render list as an indented, colored tree.
type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
	// All prints hidden children too, dimmed.
	All bool
}

const idWidth = 8

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	if pp.ShowID {
		_, _ = fmt.Fprint(pp.out(), strings.Repeat(" ", idWidth))
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)
	if pp.ShowID {
		_, _ = fmt.Fprint(pp.out(), strings.Repeat(" ", idWidth))
	}
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)
	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " row")
	default:
		_, _ = c.Fprintln(pp.out(), " rows")
	}
}

// List prints the active section, then the archived one when present.
func (pp *PrettyPrint) List(l render.List) {
	var active, archived []render.Row
	for _, r := range l.Rows {
		if r.Archived {
			archived = append(archived, r)
		} else {
			active = append(active, r)
		}
	}
	pp.TitleWithCount(viewTitle(l.View), countParents(active))
	pp.rows(active)
	if len(archived) > 0 {
		pp.NewLine()
		pp.TitleWithCount("Archived", countParents(archived))
		pp.rows(archived)
	}
	pp.NewLine()
}

func (pp *PrettyPrint) rows(rows []render.Row) {
	if len(rows) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = fmt.Fprint(pp.out(), strings.Repeat(" ", idWidth))
		}
		_, _ = f.Fprintln(pp.out(), " none")
		return
	}
	id := color.New(color.FgHiYellow, color.Italic, color.Faint)
	for _, r := range rows {
		if r.Hidden && !pp.All {
			continue
		}
		if pp.ShowID {
			s := fmt.Sprint(r.Item.ID)
			_, _ = id.Fprint(pp.out(), s+strings.Repeat(" ", max(1, idWidth-len(s))))
		}
		_, _ = fmt.Fprintln(pp.out(), Line(r))
	}
}

// Line renders one row without its id.
func Line(r render.Row) string {
	var b strings.Builder
	mark := " "
	switch {
	case r.Editing:
		mark = color.New(color.FgHiMagenta).Sprint("✎")
	case r.Selected:
		mark = color.New(color.FgHiYellow, color.Bold).Sprint("*")
	}
	b.WriteString(mark)
	b.WriteString(" ")

	title := r.Item.Title
	if title == "" {
		title = "(untitled)"
	}
	if r.Role == item.RoleParent {
		icon := " "
		if r.HasIcon {
			icon = "▸"
			if r.Expanded {
				icon = "▾"
			}
		}
		b.WriteString(icon + " ")
		b.WriteString(color.New(color.Bold).Sprint(title))
		if r.Item.Type == item.TypeStory && r.Item.EpicTitle != "" {
			b.WriteString(color.New(color.Faint).Sprintf("  %s / %s", r.Item.ThemeTitle, r.Item.EpicTitle))
		}
		return b.String()
	}
	b.WriteString("    ")
	if r.Hidden {
		b.WriteString(color.New(color.Faint).Sprint(title))
	} else {
		b.WriteString(title)
	}
	if r.Item.Owner != "" {
		b.WriteString(color.New(color.FgCyan).Sprintf("  @%s", r.Item.Owner))
	}
	return b.String()
}

// Event prints one controller event on a single line.
func (pp *PrettyPrint) Event(msg events.Msg) {
	c := color.New(color.Faint)
	switch m := msg.(type) {
	case events.AlertMsg:
		c = color.New(color.FgRed, color.Bold)
		_, _ = c.Fprintf(pp.out(), "! %s: %s\n", m.Op, m.Message)
		return
	case events.ItemChangeMsg:
		switch m.Action {
		case events.ChangeCreate:
			c = color.New(color.FgGreen)
		case events.ChangeDelete:
			c = color.New(color.FgRed)
		case events.ChangeUpdate, events.ChangeMove:
			c = color.New(color.FgYellow)
		}
		_, _ = c.Fprintf(pp.out(), "%-6s %s\n", m.Action, m.Current.Label())
		return
	}
	_, _ = c.Fprintf(pp.out(), "%T %s\n", msg, msg.Describe())
}

func countParents(rows []render.Row) int {
	n := 0
	for _, r := range rows {
		if r.Role == item.RoleParent {
			n++
		}
	}
	return n
}

func viewTitle(v item.View) string {
	if v == "" {
		return "Backlog"
	}
	switch t := v.ParentType(); t {
	case item.TypeStory:
		return "Stories"
	default:
		return t.Title() + "s"
	}
}
