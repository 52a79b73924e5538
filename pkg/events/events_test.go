package events

import (
	"testing"

	"tableflip.dev/backlog/pkg/item"
)

func snap(parents ...item.Item) *item.Snapshot {
	s := &item.Snapshot{View: item.ViewStoryTask, Parents: parents}
	s.Stamp()
	return s
}

func TestDiff(t *testing.T) {
	prev := snap(
		item.Item{ID: 1, Title: "a", Children: []item.Item{{ID: 10, Title: "x"}, {ID: 11, Title: "y"}}},
		item.Item{ID: 2, Title: "b"},
	)
	next := snap(
		item.Item{ID: 1, Title: "a2", Children: []item.Item{{ID: 11, Title: "y"}, {ID: 10, Title: "x"}}},
		item.Item{ID: 3, Title: "c"},
	)
	got := Diff("test", prev, next)
	want := []struct {
		action ChangeType
		id     int64
	}{
		{ChangeUpdate, 1},
		{ChangeMove, 11},
		{ChangeMove, 10},
		{ChangeCreate, 3},
		{ChangeDelete, 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d changes: %+v", len(got), got)
	}
	for i, w := range want {
		if got[i].Action != w.action || got[i].Current.ID != w.id {
			t.Errorf("change %d = %s %d, want %s %d", i, got[i].Action, got[i].Current.ID, w.action, w.id)
		}
	}
	if got[0].Previous == nil || got[0].Previous.Title != "a" {
		t.Fatalf("update should carry previous ref: %+v", got[0])
	}
}

func TestDiffNoChanges(t *testing.T) {
	s := snap(item.Item{ID: 1, Children: []item.Item{{ID: 10}}})
	if got := Diff("test", s, s); len(got) != 0 {
		t.Fatalf("expected no changes, got %+v", got)
	}
	if got := Diff("test", nil, s); len(got) != 2 {
		t.Fatalf("first snapshot should create every row, got %+v", got)
	}
}
