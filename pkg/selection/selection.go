// Package selection holds the ordered set of selected rows and translates it
// to and from the persisted, view-independent form.
package selection

import (
	"sort"

	"tableflip.dev/backlog/pkg/item"
)

// Set is an ordered selection, unique by id. All entries share one role as
// long as mutations go through Press.
type Set struct {
	entries []item.Ref
}

// New returns a Set holding refs in order, dropping duplicate ids.
func New(refs ...item.Ref) *Set {
	s := &Set{}
	s.Replace(refs...)
	return s
}

// Entries returns a copy of the selection in insertion order.
func (s *Set) Entries() []item.Ref {
	out := make([]item.Ref, len(s.entries))
	copy(out, s.entries)
	return out
}

// IDs returns the selected ids in insertion order.
func (s *Set) IDs() []int64 {
	ids := make([]int64, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.ID
	}
	return ids
}

// Len is the number of selected rows.
func (s *Set) Len() int {
	return len(s.entries)
}

// Contains reports whether id is selected.
func (s *Set) Contains(id int64) bool {
	return s.index(id) >= 0
}

// Role is the role of the first entry, if any.
func (s *Set) Role() (item.Role, bool) {
	if len(s.entries) == 0 {
		return "", false
	}
	return s.entries[0].Role, true
}

func (s *Set) index(id int64) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Toggle removes ref if its id is selected and appends it otherwise.
func (s *Set) Toggle(ref item.Ref) {
	if i := s.index(ref.ID); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		return
	}
	s.entries = append(s.entries, ref)
}

// ResetIfIncompatible clears the selection unless extend is held and role
// matches the role of the current selection.
func (s *Set) ResetIfIncompatible(role item.Role, extend bool) {
	if current, ok := s.Role(); ok && extend && current == role {
		return
	}
	s.entries = nil
}

// Press is one click on a row: a plain click selects only that row, an
// extending click on a row of the same role toggles it in the selection.
func (s *Set) Press(ref item.Ref, extend bool) {
	s.ResetIfIncompatible(ref.Role, extend)
	s.Toggle(ref)
}

// Replace sets the selection to refs, dropping duplicate ids.
func (s *Set) Replace(refs ...item.Ref) {
	s.entries = nil
	for _, r := range refs {
		if s.index(r.ID) < 0 {
			s.entries = append(s.entries, r)
		}
	}
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.entries = nil
}

// SortBy reorders the selection to follow the position of ids in order.
// Entries missing from order keep their relative order at the end.
func (s *Set) SortBy(order []int64) {
	pos := make(map[int64]int, len(order))
	for i, id := range order {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	rank := func(id int64) int {
		if p, ok := pos[id]; ok {
			return p
		}
		return len(order)
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return rank(s.entries[i].ID) < rank(s.entries[j].ID)
	})
}

// Prune drops entries that are not rows of snap under their role, and
// returns how many were dropped.
func (s *Set) Prune(snap *item.Snapshot) int {
	kept := s.entries[:0]
	dropped := 0
	for _, e := range s.entries {
		var ok bool
		switch e.Role {
		case item.RoleParent:
			_, ok = snap.Parent(e.ID)
		case item.RoleChild:
			_, ok = snap.Child(e.ID)
		}
		if ok {
			kept = append(kept, e)
		} else {
			dropped++
		}
	}
	s.entries = kept
	return dropped
}

// ToStored converts refs of view to their persisted form.
func ToStored(view item.View, refs []item.Ref) []item.TypedRef {
	out := make([]item.TypedRef, 0, len(refs))
	for _, r := range refs {
		t := view.TypeOf(r.Role)
		if t == "" {
			continue
		}
		out = append(out, item.TypedRef{ID: r.ID, Type: t})
	}
	return out
}

// Restore translates a persisted selection into refs of view.
//
// A stored type that is a role of view maps directly. A stored type above the
// parent level selects every parent that belongs to it, so a selected theme
// becomes its epics in epic-story and its stories in story-task. Any other
// type is dropped. The result is unique by id, first occurrence wins.
func Restore(view item.View, stored []item.TypedRef, parents []item.Item) []item.Ref {
	out := make([]item.Ref, 0, len(stored))
	seen := make(map[int64]struct{}, len(stored))
	add := func(r item.Ref) {
		if _, dup := seen[r.ID]; dup {
			return
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	for _, st := range stored {
		if role, ok := view.RoleOf(st.Type); ok {
			add(item.Ref{ID: st.ID, Role: role})
			continue
		}
		if !st.Type.Above(view.ParentType()) {
			continue
		}
		for _, p := range parents {
			if id, ok := p.AncestorID(st.Type); ok && id == st.ID {
				add(item.Ref{ID: p.ID, Role: item.RoleParent})
			}
		}
	}
	return out
}
