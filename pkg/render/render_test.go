package render

import (
	"reflect"
	"testing"

	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/selection"
	"tableflip.dev/backlog/pkg/visibility"
)

type editing map[int64]bool

func (e editing) Editing(id int64) bool { return e[id] }

func snapshot() *item.Snapshot {
	s := &item.Snapshot{View: item.ViewStoryTask, Parents: []item.Item{
		{ID: 1, Children: []item.Item{{ID: 10}, {ID: 11}}},
		{ID: 2, Archived: true, Children: []item.Item{{ID: 20}}},
		{ID: 3},
	}}
	s.Stamp()
	return s
}

func TestBuildOrderAndFlags(t *testing.T) {
	snap := snapshot()
	vis := visibility.New()
	vis.SeedFirst(snap.Parents)
	sel := selection.New(item.Ref{ID: 11, Role: item.RoleChild})

	l := Build(snap, vis, sel, editing{3: true}, Options{})
	if got := l.IDs(); !reflect.DeepEqual(got, []int64{1, 10, 11, 3}) {
		t.Fatalf("ids = %v", got)
	}
	r, _ := l.Row(1)
	if !r.Expanded || !r.HasIcon || r.Role != item.RoleParent {
		t.Fatalf("parent row flags: %+v", r)
	}
	r, _ = l.Row(11)
	if !r.Selected || r.Hidden || r.ParentID != 1 {
		t.Fatalf("child row flags: %+v", r)
	}
	r, _ = l.Row(3)
	if !r.Editing || r.HasIcon {
		t.Fatalf("childless editing parent: %+v", r)
	}
}

func TestBuildArchivedSection(t *testing.T) {
	snap := snapshot()
	l := Build(snap, visibility.New(), selection.New(), editing{}, Options{ShowArchived: true})
	if got := l.IDs(); !reflect.DeepEqual(got, []int64{1, 10, 11, 3, 2, 20}) {
		t.Fatalf("ids = %v", got)
	}
	if r, _ := l.Row(20); !r.Archived || !r.Hidden {
		t.Fatalf("archived child: %+v", r)
	}
	if got := len(l.Displayed()); got != 3 {
		t.Fatalf("displayed = %d, want 3", got)
	}
	if got := len(l.Sortable()); got != 2 {
		t.Fatalf("sortable = %d, want 2", got)
	}
	if last, ok := l.LastChild(1); !ok || last.Item.ID != 11 {
		t.Fatalf("last child = %+v", last)
	}
}

func TestBuildDoesNotMutate(t *testing.T) {
	snap := snapshot()
	before := snap.IDs()
	vis := visibility.New()
	_ = Build(snap, vis, selection.New(), editing{}, Options{ShowArchived: true})
	if vis.Len() != 0 || !reflect.DeepEqual(before, snap.IDs()) {
		t.Fatalf("Build mutated its inputs")
	}
	if l := Build(nil, vis, selection.New(), editing{}, Options{}); len(l.Rows) != 0 {
		t.Fatalf("nil snapshot should build nothing")
	}
}
