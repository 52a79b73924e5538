// Package info prints where the client points and what it has stored.
package info

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
)

type Info struct {
	Service *app.Service
	Printer printers.Printer
}

// Report is the structured form of the output.
type Report struct {
	ConfigPath string           `json:"configPath,omitempty"`
	Server     string           `json:"server"`
	Area       string           `json:"area"`
	View       item.View        `json:"view"`
	Order      string           `json:"order"`
	Store      string           `json:"store"`
	Selection  []item.TypedRef  `json:"selection"`
	Attributes []item.Attribute `json:"attributes,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func (n *Info) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not report, no service")
	}
	cfg := n.Service.Config
	r := Report{
		ConfigPath: os.Getenv("BACKLOG_CONFIG_PATH"),
		Server:     cfg.Server,
		Area:       cfg.Area,
		View:       cfg.View,
		Order:      cfg.Order,
		Store:      cfg.BasePath(),
		Selection:  n.Service.Slot.Load(),
	}
	if area, err := n.Service.API.ReadArea(ctx); err != nil {
		r.Error = err.Error()
	} else {
		for _, a := range []item.Attribute{area.StoryAttr1, area.StoryAttr2, area.StoryAttr3, area.TaskAttr1} {
			if a.Name != "" {
				r.Attributes = append(r.Attributes, a)
			}
		}
	}

	switch n.Printer.Format {
	case printers.FormatJSON, printers.FormatYAML:
		return n.Printer.Value(r)
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	if r.ConfigPath != "" {
		tbl.AddRow(bold.Sprint("BACKLOG_CONFIG_PATH"), r.ConfigPath)
	}
	tbl.AddRow(bold.Sprint("server"), r.Server)
	tbl.AddRow(bold.Sprint("area"), r.Area)
	tbl.AddRow(bold.Sprint("view"), r.View)
	tbl.AddRow(bold.Sprint("order"), r.Order)
	tbl.AddRow(bold.Sprint("store"), r.Store)
	tbl.AddRow(bold.Sprint("selection"), selection(r.Selection))
	for _, a := range r.Attributes {
		tbl.AddRow(bold.Sprint(a.Name), fmt.Sprintf("%d options", len(a.Options)))
	}
	if r.Error != "" {
		tbl.AddRow(bold.Sprint("server error"), color.New(color.FgRed).Sprint(r.Error))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(n.Printer.Writer(), tbl)
	return nil
}

func selection(refs []item.TypedRef) string {
	if len(refs) == 0 {
		return "none"
	}
	s := ""
	for i, r := range refs {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %d", r.Type, r.ID)
	}
	return s
}
