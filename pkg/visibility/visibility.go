// Package visibility tracks which child rows are expanded under their
// parents. Absent ids are hidden.
package visibility

import "tableflip.dev/backlog/pkg/item"

// Map is child id → visible.
type Map struct {
	visible map[int64]bool
}

// New returns an empty Map.
func New() *Map {
	return &Map{visible: make(map[int64]bool)}
}

// Visible reports whether child id is shown.
func (m *Map) Visible(id int64) bool {
	return m.visible[id]
}

// Set records the visibility of child id.
func (m *Map) Set(id int64, visible bool) {
	if visible {
		m.visible[id] = true
		return
	}
	delete(m.visible, id)
}

// ToggleGroup flips the children of parent as one group and returns whether
// the group is now expanded. The group follows its first child.
func (m *Map) ToggleGroup(parent item.Item) bool {
	if len(parent.Children) == 0 {
		return false
	}
	next := !m.visible[parent.Children[0].ID]
	for _, c := range parent.Children {
		m.Set(c.ID, next)
	}
	return next
}

// ExpandAll shows every child of parents.
func (m *Map) ExpandAll(parents []item.Item) {
	m.setAll(parents, true)
}

// CollapseAll hides every child of parents.
func (m *Map) CollapseAll(parents []item.Item) {
	m.setAll(parents, false)
}

func (m *Map) setAll(parents []item.Item, visible bool) {
	for _, p := range parents {
		for _, c := range p.Children {
			m.Set(c.ID, visible)
		}
	}
}

// SeedFirst expands the first parent, used on the initial load.
func (m *Map) SeedFirst(parents []item.Item) {
	if len(parents) == 0 {
		return
	}
	for _, c := range parents[0].Children {
		m.Set(c.ID, true)
	}
}

// Expanded returns the expand icon state of parent. hasIcon is false for a
// parent without children. The icon reflects the first child only.
func (m *Map) Expanded(parent item.Item) (expanded, hasIcon bool) {
	if len(parent.Children) == 0 {
		return false, false
	}
	return m.visible[parent.Children[0].ID], true
}

// Normalize makes every group with at least one visible child fully visible.
func (m *Map) Normalize(parents []item.Item) {
	for _, p := range parents {
		shown := false
		for _, c := range p.Children {
			if m.visible[c.ID] {
				shown = true
				break
			}
		}
		if shown {
			for _, c := range p.Children {
				m.visible[c.ID] = true
			}
		}
	}
}

// Prune forgets ids not present among the children of parents.
func (m *Map) Prune(parents []item.Item) {
	keep := make(map[int64]struct{})
	for _, p := range parents {
		for _, c := range p.Children {
			keep[c.ID] = struct{}{}
		}
	}
	for id := range m.visible {
		if _, ok := keep[id]; !ok {
			delete(m.visible, id)
		}
	}
}

// IDs returns the visible child ids, unordered.
func (m *Map) IDs() []int64 {
	ids := make([]int64, 0, len(m.visible))
	for id := range m.visible {
		ids = append(ids, id)
	}
	return ids
}

// Len is the number of visible children.
func (m *Map) Len() int {
	return len(m.visible)
}
