package item

import "time"

// Snapshot is one complete two-level fetch of the hierarchy for a view,
// area and ordering. It always holds exactly two levels: parents and their
// children.
type Snapshot struct {
	View      View
	Order     string
	Area      Area
	Parents   []Item
	FetchedAt time.Time
}

// Stamp sets the semantic type of every parent and child according to the
// view's role table.
func (s *Snapshot) Stamp() {
	pt, ct := s.View.ParentType(), s.View.ChildType()
	for i := range s.Parents {
		s.Parents[i].Type = pt
		for k := range s.Parents[i].Children {
			s.Parents[i].Children[k].Type = ct
		}
	}
}

// Parent returns the parent row with the given id.
func (s *Snapshot) Parent(id int64) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	for _, p := range s.Parents {
		if p.ID == id {
			return p, true
		}
	}
	return Item{}, false
}

// Child returns the child row with the given id.
func (s *Snapshot) Child(id int64) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	for _, p := range s.Parents {
		for _, c := range p.Children {
			if c.ID == id {
				return c, true
			}
		}
	}
	return Item{}, false
}

// ParentOf returns the parent holding the child id.
func (s *Snapshot) ParentOf(childID int64) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	for _, p := range s.Parents {
		for _, c := range p.Children {
			if c.ID == childID {
				return p, true
			}
		}
	}
	return Item{}, false
}

// Find returns the row with the given id together with its role. Parents win
// over children if the server ever reuses an id across levels.
func (s *Snapshot) Find(id int64) (Item, Role, bool) {
	if p, ok := s.Parent(id); ok {
		return p, RoleParent, true
	}
	if c, ok := s.Child(id); ok {
		return c, RoleChild, true
	}
	return Item{}, "", false
}

// Contains reports whether id is a row of the snapshot.
func (s *Snapshot) Contains(id int64) bool {
	_, _, ok := s.Find(id)
	return ok
}

// IDs returns every row id in snapshot order, parents before their children.
func (s *Snapshot) IDs() []int64 {
	if s == nil {
		return nil
	}
	ids := make([]int64, 0, len(s.Parents))
	for _, p := range s.Parents {
		ids = append(ids, p.ID)
		for _, c := range p.Children {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
