// Package events defines the typed notifications the reconciliation
// controller emits to whoever renders it.
package events

import (
	"fmt"
	"time"

	"tableflip.dev/backlog/pkg/item"
)

// Msg is any event. Describe renders it for logs.
type Msg interface {
	Describe() string
}

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// ItemRef captures the metadata required to identify an item in events.
type ItemRef struct {
	ID       int64
	Type     item.Type
	Role     item.Role
	Title    string
	ParentID int64
}

// Label returns a human-friendly identifier for the item.
func (r ItemRef) Label() string {
	if r.Title != "" {
		return fmt.Sprintf("%s %d %q", r.Type, r.ID, r.Title)
	}
	return fmt.Sprintf("%s %d", r.Type, r.ID)
}

// ChangeType enumerates supported change actions.
type ChangeType string

const (
	// ChangeCreate indicates a new item appeared in the snapshot.
	ChangeCreate ChangeType = "create"
	// ChangeUpdate indicates an existing item changed.
	ChangeUpdate ChangeType = "update"
	// ChangeDelete indicates an item left the snapshot.
	ChangeDelete ChangeType = "delete"
	// ChangeMove indicates an item kept its content but changed position or
	// parent.
	ChangeMove ChangeType = "move"
)

// ItemChangeMsg announces the difference of one item between two snapshots,
// regardless of its origin (own mutation, push from another client).
type ItemChangeMsg struct {
	Component ComponentID
	Action    ChangeType
	Current   ItemRef
	Previous  *ItemRef
}

// Describe implements the logging helper.
func (m ItemChangeMsg) Describe() string {
	prev := ""
	if m.Previous != nil {
		prev = m.Previous.Label()
	}
	return fmt.Sprintf(`action:%q item:%q prev:%q`, m.Action, m.Current.Label(), prev)
}

// ResyncedMsg is emitted after every full resync.
type ResyncedMsg struct {
	Component ComponentID
	View      item.View
	Order     string
	Parents   int
	Rows      int
	Selected  int
	Editing   int
	At        time.Time
}

func (m ResyncedMsg) Describe() string {
	return fmt.Sprintf(`view:%q order:%q parents:%d rows:%d selected:%d editing:%d`,
		m.View, m.Order, m.Parents, m.Rows, m.Selected, m.Editing)
}

// AlertMsg carries a user visible failure.
type AlertMsg struct {
	Component ComponentID
	Op        string
	Message   string
}

func (m AlertMsg) Describe() string {
	return fmt.Sprintf(`op:%q message:%q`, m.Op, m.Message)
}

// BusyMsg toggles the busy indicator.
type BusyMsg struct {
	Component ComponentID
	Busy      bool
}

func (m BusyMsg) Describe() string {
	return fmt.Sprintf(`busy:%t`, m.Busy)
}

// SelectionMsg is emitted when the selection changes.
type SelectionMsg struct {
	Component ComponentID
	Selected  []item.Ref
}

func (m SelectionMsg) Describe() string {
	return fmt.Sprintf(`selected:%v`, m.Selected)
}

// EditMsg is emitted when a row enters or leaves edit.
type EditMsg struct {
	Component ComponentID
	ID        int64
	Editing   bool
}

func (m EditMsg) Describe() string {
	return fmt.Sprintf(`id:%d editing:%t`, m.ID, m.Editing)
}

// Diff compares two snapshots of the same view and returns one change per
// differing item, parents before children in the order of next.
func Diff(component ComponentID, prev, next *item.Snapshot) []ItemChangeMsg {
	type entry struct {
		ref  ItemRef
		it   item.Item
		slot int
	}
	index := func(s *item.Snapshot) (map[string]entry, []string) {
		m := map[string]entry{}
		var order []string
		if s == nil {
			return m, order
		}
		slot := 0
		for _, p := range s.Parents {
			k := key(item.RoleParent, p.ID)
			m[k] = entry{ref: refOf(p, item.RoleParent, 0), it: p, slot: slot}
			order = append(order, k)
			slot++
			for _, c := range p.Children {
				k := key(item.RoleChild, c.ID)
				m[k] = entry{ref: refOf(c, item.RoleChild, p.ID), it: c, slot: slot}
				order = append(order, k)
				slot++
			}
		}
		return m, order
	}
	before, beforeOrder := index(prev)
	after, afterOrder := index(next)

	var out []ItemChangeMsg
	for _, k := range afterOrder {
		cur := after[k]
		old, ok := before[k]
		switch {
		case !ok:
			out = append(out, ItemChangeMsg{Component: component, Action: ChangeCreate, Current: cur.ref})
		case !sameContent(old.it, cur.it):
			p := old.ref
			out = append(out, ItemChangeMsg{Component: component, Action: ChangeUpdate, Current: cur.ref, Previous: &p})
		case old.ref.ParentID != cur.ref.ParentID || old.slot != cur.slot:
			p := old.ref
			out = append(out, ItemChangeMsg{Component: component, Action: ChangeMove, Current: cur.ref, Previous: &p})
		}
	}
	for _, k := range beforeOrder {
		if _, ok := after[k]; !ok {
			out = append(out, ItemChangeMsg{Component: component, Action: ChangeDelete, Current: before[k].ref})
		}
	}
	return out
}

func key(r item.Role, id int64) string {
	return fmt.Sprintf("%s/%d", r, id)
}

func refOf(it item.Item, role item.Role, parent int64) ItemRef {
	return ItemRef{ID: it.ID, Type: it.Type, Role: role, Title: it.Title, ParentID: parent}
}

// sameContent compares the fields of two items, ignoring children.
func sameContent(a, b item.Item) bool {
	return fmt.Sprintf("%+v", flatten(a)) == fmt.Sprintf("%+v", flatten(b))
}

func flatten(it item.Item) []any {
	deref := func(p *int64) any {
		if p == nil {
			return nil
		}
		return *p
	}
	ts := func(t *item.Timestamp) any {
		if t == nil || t.IsZero() {
			return nil
		}
		return t.UnixMilli()
	}
	opt := func(o *item.Option) any {
		if o == nil {
			return nil
		}
		return o.ID
	}
	return []any{
		it.Type, deref(it.ParentID), deref(it.ThemeID), deref(it.EpicID),
		it.Title, it.Description, it.Archived, it.Prio, it.ThemeTitle, it.EpicTitle,
		it.Customer, it.CustomerSite, it.Contributor, it.ContributorSite,
		ts(it.Added), ts(it.Deadline), opt(it.StoryAttr1), opt(it.StoryAttr2), opt(it.StoryAttr3),
		it.Owner, it.CalculatedTime, opt(it.TaskAttr1),
	}
}
