// Package add creates rows.
package add

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/cache"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
)

// ErrRefused is returned when the server answers a create with no id.
var ErrRefused = errors.New("the server refused to create the row")

// Add creates one row of Type and saves Fields on it.
type Add struct {
	Service *app.Service
	Printer printers.Printer
	Type    item.Type
	// Under is the story of a task, the epic of a story or the theme of an
	// epic. Zero means none.
	Under int64
	// EpicTitle and ThemeTitle name the owner of a story or an epic that is
	// not a row of the view. Ignored when Under is set.
	EpicTitle  string
	ThemeTitle string
	Fields     []item.Assignment
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no service")
	}
	if err := n.Service.Start(ctx); err != nil {
		return err
	}
	c := n.Service.Controller

	id, err := n.create(ctx, c)
	if err != nil {
		return err
	}
	if id == nil {
		return fmt.Errorf("%s: %w", n.Type, ErrRefused)
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

func (n *Add) create(ctx context.Context, c *cache.Controller) (*int64, error) {
	if n.Under != 0 {
		return c.Create(ctx, n.Type, n.Under)
	}
	switch {
	case n.Type == item.TypeStory && n.EpicTitle != "":
		return c.Dispatcher().CreateStory(ctx, &item.Item{Type: item.TypeEpic, Title: n.EpicTitle, ThemeTitle: n.ThemeTitle})
	case n.Type == item.TypeEpic && n.ThemeTitle != "":
		return c.Dispatcher().CreateEpic(ctx, &item.Item{Type: item.TypeTheme, Title: n.ThemeTitle})
	}
	return c.Create(ctx, n.Type, 0)
}
