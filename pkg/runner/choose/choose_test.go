package choose

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/logging"
	"tableflip.dev/backlog/pkg/printers"
	"tableflip.dev/backlog/pkg/runner/internal/runnertest"
	"tableflip.dev/backlog/pkg/store"
)

func TestChooseStoresSelection(t *testing.T) {
	env := runnertest.New(t)
	c := Choose{
		Service: env.Service(t, item.ViewStoryTask),
		Printer: printers.Printer{Out: &bytes.Buffer{}},
		Refs:    []item.Ref{{ID: runnertest.PasswordReset}, {ID: runnertest.Invoices}},
	}
	if err := c.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	slot := store.NewSelectionSlot(env.KV, "team", 0, logging.Discard())
	want := []item.TypedRef{{ID: runnertest.PasswordReset, Type: item.TypeStory}, {ID: runnertest.Invoices, Type: item.TypeStory}}
	if got := slot.Load(); !reflect.DeepEqual(got, want) {
		t.Fatalf("stored = %v", got)
	}

	// a task cannot join a story selection: the press starts over
	c = Choose{
		Service: env.Service(t, item.ViewStoryTask),
		Printer: printers.Printer{Out: &bytes.Buffer{}},
		Refs:    []item.Ref{{ID: runnertest.MailTemplate}},
		Extend:  true,
	}
	if err := c.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := slot.Load(); len(got) != 1 || got[0].Type != item.TypeTask {
		t.Fatalf("stored = %v", got)
	}

	c = Choose{Service: env.Service(t, item.ViewStoryTask), Printer: printers.Printer{Out: &bytes.Buffer{}}, Clear: true}
	if err := c.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := slot.Load(); len(got) != 0 {
		t.Fatalf("stored = %v", got)
	}
}
