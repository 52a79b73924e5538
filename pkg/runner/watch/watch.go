// Package watch keeps a view open and reprints it whenever it resyncs.
package watch

import (
	"context"
	"errors"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/events"
	"tableflip.dev/backlog/pkg/printers"
)

type Watch struct {
	// Service must be built with app.Options.Watch.
	Service *app.Service
	Printer printers.Printer
	// Events also prints every controller event.
	Events bool
}

// Do runs until ctx is done.
func (n *Watch) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not watch, no service")
	}
	if err := n.Service.Start(ctx); err != nil {
		return err
	}
	c := n.Service.Controller
	if err := n.Printer.List(c.Rows()); err != nil {
		return err
	}

	pp := printers.PrettyPrint{Out: n.Printer.Writer()}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-n.Service.Events():
			if n.Events {
				pp.Event(msg)
			}
			switch msg.(type) {
			case events.ResyncedMsg, events.SelectionMsg:
				if err := n.Printer.List(c.Rows()); err != nil {
					return err
				}
			}
		}
	}
}
