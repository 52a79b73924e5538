package selection

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"tableflip.dev/backlog/pkg/item"
)

func id(v int64) *int64 { return &v }

func TestRestore(t *testing.T) {
	epics := []item.Item{
		{ID: 1, ThemeID: id(9)},
		{ID: 2, ThemeID: id(9)},
		{ID: 3, ThemeID: id(4)},
	}
	stories := []item.Item{
		{ID: 5, ThemeID: id(9), EpicID: id(1)},
		{ID: 6, ThemeID: id(9), EpicID: id(2)},
		{ID: 7, EpicID: id(1)},
	}
	tests := []struct {
		name    string
		view    item.View
		stored  []item.TypedRef
		parents []item.Item
		want    []item.Ref
	}{{
		name:    "story in story-task is a parent",
		view:    item.ViewStoryTask,
		stored:  []item.TypedRef{{ID: 5, Type: item.TypeStory}},
		parents: stories,
		want:    []item.Ref{{ID: 5, Role: item.RoleParent}},
	}, {
		name:    "theme in epic-story expands to its epics",
		view:    item.ViewEpicStory,
		stored:  []item.TypedRef{{ID: 9, Type: item.TypeTheme}},
		parents: epics,
		want:    []item.Ref{{ID: 1, Role: item.RoleParent}, {ID: 2, Role: item.RoleParent}},
	}, {
		name:    "epic in story-task expands to its stories",
		view:    item.ViewStoryTask,
		stored:  []item.TypedRef{{ID: 1, Type: item.TypeEpic}},
		parents: stories,
		want:    []item.Ref{{ID: 5, Role: item.RoleParent}, {ID: 7, Role: item.RoleParent}},
	}, {
		name:    "theme in story-task expands to its stories",
		view:    item.ViewStoryTask,
		stored:  []item.TypedRef{{ID: 9, Type: item.TypeTheme}},
		parents: stories,
		want:    []item.Ref{{ID: 5, Role: item.RoleParent}, {ID: 6, Role: item.RoleParent}},
	}, {
		name:   "story in epic-story is a child",
		view:   item.ViewEpicStory,
		stored: []item.TypedRef{{ID: 5, Type: item.TypeStory}},
		want:   []item.Ref{{ID: 5, Role: item.RoleChild}},
	}, {
		name:   "task in epic-story is dropped",
		view:   item.ViewEpicStory,
		stored: []item.TypedRef{{ID: 5, Type: item.TypeTask}},
		want:   []item.Ref{},
	}, {
		name:    "story in theme-epic is dropped",
		view:    item.ViewThemeEpic,
		stored:  []item.TypedRef{{ID: 5, Type: item.TypeStory}},
		parents: []item.Item{{ID: 9}},
		want:    []item.Ref{},
	}, {
		name:    "duplicates collapse",
		view:    item.ViewStoryTask,
		stored:  []item.TypedRef{{ID: 5, Type: item.TypeStory}, {ID: 1, Type: item.TypeEpic}},
		parents: stories,
		want:    []item.Ref{{ID: 5, Role: item.RoleParent}, {ID: 7, Role: item.RoleParent}},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Restore(tt.view, tt.stored, tt.parents)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Restore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPress(t *testing.T) {
	s := New()
	p := func(v int64) item.Ref { return item.Ref{ID: v, Role: item.RoleParent} }
	c := func(v int64) item.Ref { return item.Ref{ID: v, Role: item.RoleChild} }

	s.Press(p(1), false)
	s.Press(p(2), true)
	if got := s.IDs(); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Fatalf("extend same role: %v", got)
	}
	s.Press(c(3), true)
	if got := s.Entries(); !reflect.DeepEqual(got, []item.Ref{c(3)}) {
		t.Fatalf("extend with other role must reset: %v", got)
	}
	s.Press(c(4), false)
	if got := s.IDs(); !reflect.DeepEqual(got, []int64{4}) {
		t.Fatalf("plain press must reset: %v", got)
	}
	s.Press(c(5), true)
	s.Press(c(4), true)
	if got := s.IDs(); !reflect.DeepEqual(got, []int64{5}) {
		t.Fatalf("extending press on selected row deselects it: %v", got)
	}
}

func TestSortByAndPrune(t *testing.T) {
	s := New(
		item.Ref{ID: 3, Role: item.RoleChild},
		item.Ref{ID: 1, Role: item.RoleChild},
		item.Ref{ID: 8, Role: item.RoleChild},
	)
	s.SortBy([]int64{1, 2, 3})
	if got := s.IDs(); !reflect.DeepEqual(got, []int64{1, 3, 8}) {
		t.Fatalf("SortBy = %v", got)
	}
	snap := &item.Snapshot{Parents: []item.Item{{ID: 1, Children: []item.Item{{ID: 3}}}}}
	if dropped := s.Prune(snap); dropped != 2 {
		t.Fatalf("dropped %d, want 2", dropped)
	}
	if got := s.IDs(); !reflect.DeepEqual(got, []int64{3}) {
		t.Fatalf("Prune = %v", got)
	}
}

func refGen() *rapid.Generator[item.Ref] {
	return rapid.Custom(func(t *rapid.T) item.Ref {
		return item.Ref{
			ID:   rapid.Int64Range(1, 20).Draw(t, "id"),
			Role: rapid.SampledFrom([]item.Role{item.RoleParent, item.RoleChild}).Draw(t, "role"),
		}
	})
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New(rapid.SliceOf(refGen()).Draw(t, "initial")...)
		before := s.Entries()
		r := refGen().Draw(t, "ref")
		wasSelected := s.Contains(r.ID)
		if wasSelected {
			// toggle the entry as it is stored
			for _, e := range before {
				if e.ID == r.ID {
					r = e
				}
			}
		}
		s.Toggle(r)
		s.Toggle(r)
		after := s.Entries()
		if !wasSelected {
			if !reflect.DeepEqual(before, after) {
				t.Fatalf("%v -> %v", before, after)
			}
			return
		}
		// a selected row comes back at the end
		if len(before) != len(after) || after[len(after)-1] != r {
			t.Fatalf("%v -> %v", before, after)
		}
		want := make(map[item.Ref]bool, len(before))
		for _, e := range before {
			want[e] = true
		}
		for _, e := range after {
			if !want[e] {
				t.Fatalf("unexpected entry %v", e)
			}
		}
	})
}

func TestPressKeepsOneRole(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			s.Press(refGen().Draw(t, "ref"), rapid.Bool().Draw(t, "extend"))
			role, ok := s.Role()
			if !ok {
				continue
			}
			seen := make(map[int64]bool)
			for _, e := range s.Entries() {
				if e.Role != role {
					t.Fatalf("mixed roles: %v", s.Entries())
				}
				if seen[e.ID] {
					t.Fatalf("duplicate id: %v", s.Entries())
				}
				seen[e.ID] = true
			}
		}
	})
}

func TestStoredRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		view := rapid.SampledFrom(item.AllViews()).Draw(t, "view")
		role := rapid.SampledFrom([]item.Role{item.RoleParent, item.RoleChild}).Draw(t, "role")
		ids := rapid.SliceOfNDistinct(rapid.Int64Range(1, 1000), 0, 10, rapid.ID[int64]).Draw(t, "ids")
		refs := make([]item.Ref, len(ids))
		for i, v := range ids {
			refs[i] = item.Ref{ID: v, Role: role}
		}
		got := Restore(view, ToStored(view, refs), nil)
		if len(refs) == 0 && len(got) == 0 {
			return
		}
		if !reflect.DeepEqual(got, refs) {
			t.Fatalf("round trip %v -> %v", refs, got)
		}
	})
}
