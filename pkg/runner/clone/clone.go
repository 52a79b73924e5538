// Package clone duplicates rows.
package clone

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
)

type Clone struct {
	Service      *app.Service
	Printer      printers.Printer
	Ref          item.Ref
	WithChildren bool
	// Fields are saved on the copy.
	Fields []item.Assignment
}

func (n *Clone) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not clone, no service")
	}
	if err := n.Service.Start(ctx); err != nil {
		return err
	}
	c := n.Service.Controller

	ref, err := c.Resolve(n.Ref)
	if err != nil {
		return err
	}
	id, err := c.Clone(ctx, ref.ID, ref.Role, n.WithChildren)
	if err != nil {
		return err
	}
	if id == nil {
		return fmt.Errorf("the server refused to clone %s", ref)
	}
	if len(n.Fields) > 0 {
		if err := c.Modify(*id, func(it *item.Item) error {
			return item.Apply(it, n.Fields)
		}); err != nil {
			return err
		}
		if _, err := c.BulkCommit(ctx); err != nil {
			return err
		}
	}
	return n.Printer.List(c.Rows())
}
