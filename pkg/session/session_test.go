package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"tableflip.dev/backlog/pkg/item"
)

// guard mirrors the controller's push registration.
type guard struct {
	registered bool
	suspends   int
	resumes    int
}

func (g *guard) Suspend() {
	g.registered = false
	g.suspends++
}

func (g *guard) Resume() {
	g.registered = true
	g.resumes++
}

type saveCall struct {
	id   int64
	push bool
}

func recorder(fail map[int64]error) (Saver, *[]saveCall) {
	var calls []saveCall
	return func(_ context.Context, it item.Item, push bool) error {
		calls = append(calls, saveCall{it.ID, push})
		return fail[it.ID]
	}, &calls
}

func task(id int64) item.Item {
	return item.Item{ID: id, Type: item.TypeTask, Title: "t"}
}

func TestBulkCommitPushesOnLast(t *testing.T) {
	g := &guard{registered: true}
	m := New(g)
	for _, id := range []int64{1, 2, 3} {
		m.Begin(task(id))
	}
	if g.registered || g.suspends != 1 {
		t.Fatalf("push should be suspended once, got %+v", g)
	}
	if err := m.Modify(2, func(it *item.Item) error { it.Title = "changed"; return nil }); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if !m.SaveEnabled() || !m.CommitEnabled(2) || m.CommitEnabled(1) {
		t.Fatalf("commit arming wrong")
	}

	save, calls := recorder(nil)
	saved, err := m.Commit(context.Background(), save)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	want := []saveCall{{1, false}, {2, false}, {3, true}}
	if !reflect.DeepEqual(*calls, want) {
		t.Fatalf("calls = %v, want %v", *calls, want)
	}
	if !reflect.DeepEqual(saved, []int64{1, 2, 3}) {
		t.Fatalf("saved = %v", saved)
	}
	if m.Len() != 0 || !g.registered || g.resumes != 1 {
		t.Fatalf("session should be empty and push resumed: len=%d %+v", m.Len(), g)
	}
}

func TestCommitReportsFailures(t *testing.T) {
	g := &guard{}
	m := New(g)
	m.Begin(task(1))
	m.Begin(task(2))
	boom := errors.New("boom")
	save, _ := recorder(map[int64]error{1: boom})
	saved, err := m.Commit(context.Background(), save)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var f Failure
	if !errors.As(err, &f) || f.ID != 1 {
		t.Fatalf("expected failure of row 1, got %v", err)
	}
	if !reflect.DeepEqual(saved, []int64{2}) || m.Len() != 0 {
		t.Fatalf("saved=%v len=%d", saved, m.Len())
	}
}

func TestToggleAndCancel(t *testing.T) {
	g := &guard{}
	m := New(g)
	if editing, _ := m.Toggle(task(1)); !editing {
		t.Fatalf("first toggle should enter edit")
	}
	m.Begin(task(2))
	if emptied, err := m.Cancel(2); err != nil || emptied {
		t.Fatalf("cancel of one of two: emptied=%v err=%v", emptied, err)
	}
	if editing, emptied := m.Toggle(task(1)); editing || !emptied {
		t.Fatalf("second toggle should cancel and empty the session")
	}
	if _, err := m.Cancel(1); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
	if !g.registered {
		t.Fatalf("push should be resumed")
	}
}

func TestCommitOneKeepsEditing(t *testing.T) {
	g := &guard{}
	m := New(g)
	m.Begin(task(1))
	_ = m.Modify(1, func(it *item.Item) error { return item.SetField(it, "owner", "ann") })
	save, calls := recorder(nil)
	if err := m.CommitOne(context.Background(), 1, save); err != nil {
		t.Fatalf("commit one: %v", err)
	}
	if !reflect.DeepEqual(*calls, []saveCall{{1, false}}) {
		t.Fatalf("calls = %v", *calls)
	}
	if !m.Editing(1) || m.CommitEnabled(1) || g.registered {
		t.Fatalf("row should stay in edit with commit disarmed")
	}
	_ = m.Modify(1, func(it *item.Item) error { it.Owner = "bob"; return nil })
	_ = m.Revert(1)
	if d, _ := m.Draft(1); d.Owner != "ann" {
		t.Fatalf("revert should restore last committed draft, got %q", d.Owner)
	}
}

func TestRetain(t *testing.T) {
	g := &guard{}
	m := New(g)
	m.Begin(task(10))
	m.Begin(task(11))
	_ = m.Modify(10, func(it *item.Item) error { it.Title = "mine"; return nil })
	snap := &item.Snapshot{View: item.ViewStoryTask, Parents: []item.Item{
		{ID: 1, Children: []item.Item{{ID: 10, Title: "theirs"}}},
	}}
	snap.Stamp()
	m.Retain(snap)
	if !reflect.DeepEqual(m.IDs(), []int64{10}) {
		t.Fatalf("ids = %v", m.IDs())
	}
	if d, _ := m.Draft(10); d.Title != "mine" {
		t.Fatalf("draft lost: %q", d.Title)
	}
	m.Retain(&item.Snapshot{View: item.ViewStoryTask})
	if m.Len() != 0 || !g.registered {
		t.Fatalf("emptied by retain must resume push")
	}
}

func TestPushSuspendedWhileEditing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := &guard{registered: true}
		m := New(g)
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.Int64Range(1, 6).Draw(t, "id")
			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0:
				m.Begin(task(id))
			case 1:
				m.Toggle(task(id))
			case 2:
				_, _ = m.Cancel(id)
			case 3:
				m.CancelAll()
			case 4:
				save, _ := recorder(nil)
				_, _ = m.Commit(context.Background(), save)
			case 5:
				_ = m.Modify(id, func(it *item.Item) error { it.Title = "x"; return nil })
			}
			if m.Len() > 0 && g.registered {
				t.Fatalf("push registered while %d rows in edit", m.Len())
			}
			if m.Len() == 0 && g.suspends > 0 && !g.registered {
				t.Fatalf("push not resumed after session emptied")
			}
		}
	})
}
