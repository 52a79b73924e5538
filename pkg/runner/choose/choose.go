// Package choose changes the stored selection.
package choose

import (
	"context"
	"errors"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
	"tableflip.dev/backlog/pkg/snake"
)

type Choose struct {
	Service *app.Service
	Printer printers.Printer
	Refs    []item.Ref
	// Extend toggles the rows into the current selection instead of
	// replacing it.
	Extend bool
	Clear  bool
	// Prompter picks a row when Refs is empty.
	Prompter *snake.Prompter
}

func (n *Choose) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not select, no service")
	}
	if err := n.Service.Start(ctx); err != nil {
		return err
	}
	c := n.Service.Controller

	if n.Clear {
		c.ClearSelection()
	}
	refs := n.Refs
	if len(refs) == 0 && n.Prompter != nil {
		row, err := n.Prompter.PickRow("Select", c.Rows(), "")
		if err != nil {
			return err
		}
		refs = []item.Ref{row.Item.Ref(row.Role)}
	}
	for i, ref := range refs {
		ref, err := c.Resolve(ref)
		if err != nil {
			return err
		}
		if err := c.Press(ref.ID, ref.Role, n.Extend || i > 0); err != nil {
			return err
		}
	}
	return n.Printer.List(c.Rows())
}
