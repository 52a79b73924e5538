// Package complete prints theme and epic name suggestions.
package complete

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/printers"
)

// Kinds of suggestions.
const (
	Themes = "themes"
	Epics  = "epics"
)

type Complete struct {
	Service *app.Service
	Printer printers.Printer
	Kind    string
	// Theme scopes epic suggestions.
	Theme string
	Term  string
}

func (n *Complete) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not complete, no service")
	}
	var (
		names []string
		err   error
	)
	switch n.Kind {
	case Themes:
		names, err = n.Service.Themes(ctx, n.Term)
	case Epics:
		names, err = n.Service.Epics(ctx, n.Theme, n.Term)
	default:
		return fmt.Errorf("unknown suggestion kind %q, want %s or %s", n.Kind, Themes, Epics)
	}
	if err != nil {
		return err
	}
	switch n.Printer.Format {
	case printers.FormatJSON, printers.FormatYAML:
		if names == nil {
			names = []string{}
		}
		return n.Printer.Value(names)
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(n.Printer.Writer(), name); err != nil {
			return err
		}
	}
	return nil
}
