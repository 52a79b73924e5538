package move

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"tableflip.dev/backlog/pkg/cache"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
	"tableflip.dev/backlog/pkg/runner/internal/runnertest"
)

func TestMoveBefore(t *testing.T) {
	env := runnertest.New(t)
	m := Move{
		Service: env.Service(t, item.ViewEpicStory),
		Printer: printers.Printer{Out: &bytes.Buffer{}},
		Refs:    []item.Ref{{ID: runnertest.Sync}},
		Before:  &item.Ref{ID: runnertest.Login},
	}
	if err := m.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	parents, _ := env.Server.Backlog().Read(item.ViewEpicStory, "prio")
	var got []string
	for _, p := range parents {
		got = append(got, p.Title)
	}
	if want := []string{"Sync", "Login", "Billing"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("epics = %v, want %v", got, want)
	}
}

func TestMoveToEnd(t *testing.T) {
	env := runnertest.New(t)
	m := Move{
		Service: env.Service(t, item.ViewStoryTask),
		Printer: printers.Printer{Out: &bytes.Buffer{}},
		Refs:    []item.Ref{{ID: runnertest.MailTemplate}},
		Index:   -1,
	}
	if err := m.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	titles := env.Titles(t, item.ViewStoryTask)
	if last := titles[len(titles)-1]; last != "Offline mode/Mail template" {
		t.Fatalf("titles = %v", titles)
	}
}

func TestMoveNeedsPrio(t *testing.T) {
	env := runnertest.New(t)
	s := env.Service(t, item.ViewStoryTask)
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Controller.SetOrder(ctx, "title"); err != nil {
		t.Fatal(err)
	}
	m := Move{Service: s, Printer: printers.Printer{Out: &bytes.Buffer{}}, Refs: []item.Ref{{ID: runnertest.SingleSignOn}}}
	if err := m.Do(ctx); !errors.Is(err, cache.ErrReorderDisabled) {
		t.Fatalf("err = %v", err)
	}
}

func TestMoveBeforeMovedRow(t *testing.T) {
	env := runnertest.New(t)
	m := Move{
		Service: env.Service(t, item.ViewStoryTask),
		Printer: printers.Printer{Out: &bytes.Buffer{}},
		Refs:    []item.Ref{{ID: runnertest.SingleSignOn}, {ID: runnertest.Invoices}},
		Before:  &item.Ref{ID: runnertest.Invoices},
	}
	if err := m.Do(context.Background()); err == nil {
		t.Fatal("a moved row cannot be the drop target")
	}
}

func TestMoveMixedRoles(t *testing.T) {
	env := runnertest.New(t)
	m := Move{
		Service: env.Service(t, item.ViewStoryTask),
		Printer: printers.Printer{Out: &bytes.Buffer{}},
		Refs: []item.Ref{
			{ID: runnertest.PasswordReset, Role: item.RoleParent},
			{ID: runnertest.MailTemplate, Role: item.RoleChild},
		},
	}
	if err := m.Do(context.Background()); !errors.Is(err, cache.ErrMixedRoles) {
		t.Fatalf("err = %v", err)
	}
	for _, r := range env.Server.Requests() {
		if strings.HasPrefix(r.Op, "move") {
			t.Fatalf("no move expected: %+v", r)
		}
	}
	if sel := m.Service.Controller.Selection(); len(sel) > 1 {
		t.Fatalf("selection = %v", sel)
	}
}
