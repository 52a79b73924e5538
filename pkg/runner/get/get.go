// Package get prints the rows of one view.
package get

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
)

type Get struct {
	Service *app.Service
	Printer printers.Printer
	// IDs prints the selected ids instead of the rows.
	IDs      bool
	Expand   bool
	Collapse bool
	// Toggle flips the groups of these parents before printing.
	Toggle []int64
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	if err := n.Service.Start(ctx); err != nil {
		return err
	}
	c := n.Service.Controller

	switch {
	case n.Expand:
		c.ExpandAll()
	case n.Collapse:
		c.CollapseAll()
	}
	for _, id := range n.Toggle {
		if _, err := c.ToggleGroup(id); err != nil {
			return err
		}
	}

	if n.IDs {
		return n.printIDs(c.Selection())
	}
	return n.Printer.List(c.Rows())
}

func (n *Get) printIDs(refs []item.Ref) error {
	switch n.Printer.Format {
	case printers.FormatJSON, printers.FormatYAML:
		return n.Printer.Value(refs)
	}
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = fmt.Sprint(r.ID)
	}
	_, err := fmt.Fprintln(n.Printer.Writer(), strings.Join(ids, ","))
	return err
}
