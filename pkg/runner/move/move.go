// Package move reorders rows the way a drag and drop does.
package move

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/cache"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
	"tableflip.dev/backlog/pkg/render"
)

// Move drags Refs[0], together with the other Refs, and drops the group in
// front of Before, at Index, or at the end when neither is set.
type Move struct {
	Service *app.Service
	Printer printers.Printer
	Refs    []item.Ref
	Before  *item.Ref
	// Index counts the rows that stay in place; negative means the end.
	Index int
}

func (n *Move) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not move, no service")
	}
	if len(n.Refs) == 0 {
		return errors.New("nothing to move")
	}
	if err := n.Service.Start(ctx); err != nil {
		return err
	}
	c := n.Service.Controller

	refs := make([]item.Ref, 0, len(n.Refs))
	for _, ref := range n.Refs {
		ref, err := c.Resolve(ref)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	grabbed := refs[0]
	if len(refs) > 1 {
		if err := c.Select(refs...); err != nil {
			return err
		}
	}
	if err := c.DragStart(grabbed.ID, grabbed.Role); err != nil {
		return err
	}

	index, err := n.index(c)
	if err != nil {
		return err
	}
	if err := c.Drop(ctx, grabbed, index); err != nil {
		return err
	}
	return n.Printer.List(c.Rows())
}

// index translates Before into a position among the rows that are not moved.
func (n *Move) index(c *cache.Controller) (int, error) {
	rest := stay(c.Rows().Sortable(), c.Selection())
	if n.Before == nil {
		if n.Index < 0 || n.Index > len(rest) {
			return len(rest), nil
		}
		return n.Index, nil
	}
	before, err := c.Resolve(*n.Before)
	if err != nil {
		return 0, err
	}
	for i, r := range rest {
		if r.Item.ID == before.ID && r.Role == before.Role {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s is moved or not displayed", before)
}

func stay(rows []render.Row, moved []item.Ref) []render.Row {
	out := make([]render.Row, 0, len(rows))
	for _, r := range rows {
		keep := true
		for _, m := range moved {
			if m.ID == r.Item.ID && m.Role == r.Role {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}
