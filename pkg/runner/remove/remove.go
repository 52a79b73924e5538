// Package remove deletes rows.
package remove

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/dispatch"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
)

type Remove struct {
	Service *app.Service
	Printer printers.Printer
	Ref     item.Ref
	// Confirm is asked before deleting. Nil deletes without asking.
	Confirm dispatch.Confirmer
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not delete, no service")
	}
	if err := n.Service.Start(ctx); err != nil {
		return err
	}
	c := n.Service.Controller

	ref, err := c.Resolve(n.Ref)
	if err != nil {
		return err
	}
	deleted, err := c.Delete(ctx, ref.ID, ref.Role, n.Confirm)
	if err != nil {
		return err
	}
	if !deleted {
		_, _ = color.New(color.Faint).Fprintf(n.Printer.Writer(), "kept %s\n", ref)
		return nil
	}
	if !n.Printer.Structured() {
		_, _ = fmt.Fprintf(n.Printer.Writer(), "deleted %s\n", ref)
	}
	return n.Printer.List(c.Rows())
}
