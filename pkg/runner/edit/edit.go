// Package edit changes fields of existing rows.
package edit

import (
	"context"
	"errors"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
)

type Edit struct {
	Service *app.Service
	Printer printers.Printer
	Refs    []item.Ref
	Fields  []item.Assignment
	// NoPush saves every row without notifying other clients.
	NoPush bool
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not edit, no service")
	}
	if len(n.Fields) == 0 {
		return errors.New("nothing to change, use --set field=value")
	}
	if err := n.Service.Start(ctx); err != nil {
		return err
	}
	c := n.Service.Controller

	ids := make([]int64, 0, len(n.Refs))
	for _, ref := range n.Refs {
		ref, err := c.Resolve(ref)
		if err != nil {
			return err
		}
		if err := c.BeginEdit(ref.ID, ref.Role); err != nil {
			return err
		}
		if err := c.Modify(ref.ID, func(it *item.Item) error {
			return item.Apply(it, n.Fields)
		}); err != nil {
			_ = c.BulkCancel(ctx)
			return err
		}
		ids = append(ids, ref.ID)
	}

	if n.NoPush {
		for _, id := range ids {
			if err := c.CommitRow(ctx, id); err != nil {
				_ = c.BulkCancel(ctx)
				return err
			}
		}
		// saved rows leave the session and the view resyncs
		if err := c.BulkCancel(ctx); err != nil {
			return err
		}
	} else if _, err := c.BulkCommit(ctx); err != nil {
		return err
	}
	return n.Printer.List(c.Rows())
}
