// Package render flattens a snapshot and the client state into the ordered
// rows a front end draws. Build is pure; it never mutates its inputs.
package render

import "tableflip.dev/backlog/pkg/item"

// Visibility answers which children are expanded.
type Visibility interface {
	Visible(id int64) bool
	Expanded(parent item.Item) (expanded, hasIcon bool)
}

// Selection answers which rows are selected.
type Selection interface {
	Contains(id int64) bool
}

// Editing answers which rows are in edit.
type Editing interface {
	Editing(id int64) bool
}

// Options tunes Build.
type Options struct {
	// ShowArchived appends archived parents, with their children, in a
	// second section after the active ones.
	ShowArchived bool
}

// Row is one line of the list.
type Row struct {
	Item     item.Item `json:"item"`
	Role     item.Role `json:"role"`
	ParentID int64     `json:"parentId,omitempty"`
	Selected bool      `json:"selected,omitempty"`
	Editing  bool      `json:"editing,omitempty"`
	// Hidden is set on children of collapsed parents.
	Hidden bool `json:"hidden,omitempty"`
	// Expanded and HasIcon describe the expand icon of a parent.
	Expanded bool `json:"expanded,omitempty"`
	HasIcon  bool `json:"hasIcon,omitempty"`
	// Archived marks rows of the archived section.
	Archived bool `json:"archived,omitempty"`
}

// List is the built render list.
type List struct {
	View item.View `json:"view"`
	Rows []Row     `json:"rows"`
}

// Build produces the rows of snap: active parents each followed by their
// children, then the archived section when requested.
func Build(snap *item.Snapshot, vis Visibility, sel Selection, edit Editing, opts Options) List {
	if snap == nil {
		return List{}
	}
	l := List{View: snap.View, Rows: make([]Row, 0, len(snap.Parents)*2)}
	l.Rows = appendSection(l.Rows, snap.Parents, false, vis, sel, edit)
	if opts.ShowArchived {
		l.Rows = appendSection(l.Rows, snap.Parents, true, vis, sel, edit)
	}
	return l
}

func appendSection(rows []Row, parents []item.Item, archived bool, vis Visibility, sel Selection, edit Editing) []Row {
	for _, p := range parents {
		if p.Archived != archived {
			continue
		}
		expanded, icon := vis.Expanded(p)
		rows = append(rows, Row{
			Item:     p,
			Role:     item.RoleParent,
			Selected: sel.Contains(p.ID),
			Editing:  edit.Editing(p.ID),
			Expanded: expanded,
			HasIcon:  icon,
			Archived: archived,
		})
		for _, c := range p.Children {
			rows = append(rows, Row{
				Item:     c,
				Role:     item.RoleChild,
				ParentID: p.ID,
				Selected: sel.Contains(c.ID),
				Editing:  edit.Editing(c.ID),
				Hidden:   !vis.Visible(c.ID),
				Archived: archived,
			})
		}
	}
	return rows
}

// Displayed returns the rows that are not hidden.
func (l List) Displayed() []Row {
	out := make([]Row, 0, len(l.Rows))
	for _, r := range l.Rows {
		if !r.Hidden {
			out = append(out, r)
		}
	}
	return out
}

// Sortable returns the displayed rows of the active section, the only rows
// that can be reordered.
func (l List) Sortable() []Row {
	out := make([]Row, 0, len(l.Rows))
	for _, r := range l.Rows {
		if !r.Hidden && !r.Archived {
			out = append(out, r)
		}
	}
	return out
}

// Index returns the position of the row id with role in Rows, or -1.
func (l List) Index(id int64, role item.Role) int {
	for i, r := range l.Rows {
		if r.Item.ID == id && r.Role == role {
			return i
		}
	}
	return -1
}

// Row returns the row of id, parents first.
func (l List) Row(id int64) (Row, bool) {
	if i := l.Index(id, item.RoleParent); i >= 0 {
		return l.Rows[i], true
	}
	if i := l.Index(id, item.RoleChild); i >= 0 {
		return l.Rows[i], true
	}
	return Row{}, false
}

// IDs returns the ids of all rows in order.
func (l List) IDs() []int64 {
	ids := make([]int64, len(l.Rows))
	for i, r := range l.Rows {
		ids[i] = r.Item.ID
	}
	return ids
}

// LastChild returns the last child row of parent, hidden or not.
func (l List) LastChild(parent int64) (Row, bool) {
	var last Row
	found := false
	for _, r := range l.Rows {
		if r.Role == item.RoleChild && r.ParentID == parent {
			last, found = r, true
		}
	}
	return last, found
}
