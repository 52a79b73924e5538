package cache

import (
	"context"
	"fmt"

	"tableflip.dev/backlog/pkg/dispatch"
	"tableflip.dev/backlog/pkg/events"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/render"
	"tableflip.dev/backlog/pkg/selection"
)

// Key is a keyboard shortcut acting on the whole edit session.
type Key int

const (
	// KeyAccept saves every row in edit.
	KeyAccept Key = iota
	// KeyCancel drops every edit and resyncs.
	KeyCancel
)

// Press is a click on a row. A plain click selects only the row; an extending
// click toggles it when it has the role of the current selection.
func (c *Controller) Press(id int64, role item.Role, extend bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.lookupLocked(id, role); err != nil {
		return err
	}
	c.sel.Press(item.Ref{ID: id, Role: role}, extend)
	c.selectionChangedLocked()
	return nil
}

// Select replaces the selection with refs, which must share one role. Refs
// that are not rows of the snapshot are dropped.
func (c *Controller) Select(refs ...item.Ref) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return ErrNotLoaded
	}
	for _, r := range refs {
		if r.Role != refs[0].Role {
			return fmt.Errorf("%w: %s and %s", ErrMixedRoles, refs[0], r)
		}
	}
	c.sel.Replace(refs...)
	c.sel.Prune(c.snap)
	c.selectionChangedLocked()
	return nil
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Clear()
	c.selectionChangedLocked()
}

// ReloadSelection re-reads the stored selection, for when another process
// wrote the slot. Nothing is written back.
func (c *Controller) ReloadSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil || c.slot == nil {
		return
	}
	c.sel.Replace(selection.Restore(c.view, c.slot.Load(), c.snap.Parents)...)
	c.sel.Prune(c.snap)
	c.rebuildLocked()
	c.emit(events.SelectionMsg{Component: c.component, Selected: c.sel.Entries()})
}

func (c *Controller) selectionChangedLocked() {
	c.persistLocked()
	c.rebuildLocked()
	c.emit(events.SelectionMsg{Component: c.component, Selected: c.sel.Entries()})
}

// ToggleGroup flips the children of parent id and returns the new icon
// state.
func (c *Controller) ToggleGroup(id int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.lookupLocked(id, item.RoleParent)
	if err != nil {
		return false, err
	}
	expanded := c.vis.ToggleGroup(p)
	c.rebuildLocked()
	return expanded, nil
}

// ExpandAll shows every child.
func (c *Controller) ExpandAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return
	}
	c.vis.ExpandAll(c.snap.Parents)
	c.rebuildLocked()
}

// CollapseAll hides every child.
func (c *Controller) CollapseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return
	}
	c.vis.CollapseAll(c.snap.Parents)
	c.rebuildLocked()
}

// SetShowArchived toggles the archived section.
func (c *Controller) SetShowArchived(show bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showArchived = show
	c.rebuildLocked()
}

// SetOrder changes the sort order and reloads the snapshot with it.
func (c *Controller) SetOrder(ctx context.Context, order string) error {
	if order == "" {
		order = PrioOrder
	}
	c.mu.Lock()
	changed := c.order != order
	c.order = order
	c.mu.Unlock()
	if !changed {
		return nil
	}
	return c.Resync(ctx)
}

// BeginEdit puts the row id shown under role in edit.
func (c *Controller) BeginEdit(id int64, role item.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, err := c.lookupLocked(id, role)
	if err != nil {
		return err
	}
	if c.edit.Begin(it) {
		c.rebuildLocked()
		c.emit(events.EditMsg{Component: c.component, ID: id, Editing: true})
	}
	return nil
}

// ToggleEdit begins editing the row, or cancels its edit. Cancelling the last
// row resyncs.
func (c *Controller) ToggleEdit(ctx context.Context, id int64, role item.Role) (bool, error) {
	c.mu.Lock()
	it, err := c.lookupLocked(id, role)
	if err != nil {
		c.mu.Unlock()
		return false, err
	}
	editing, emptied := c.edit.Toggle(it)
	c.rebuildLocked()
	c.emit(events.EditMsg{Component: c.component, ID: id, Editing: editing})
	c.mu.Unlock()

	if emptied {
		return editing, c.Resync(ctx)
	}
	return editing, nil
}

// Modify applies fn to the draft of an editing row.
func (c *Controller) Modify(id int64, fn func(*item.Item) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edit.Modify(id, fn)
}

// SetField sets one named field on the draft of an editing row.
func (c *Controller) SetField(id int64, field, value string) error {
	return c.Modify(id, func(it *item.Item) error {
		return item.SetField(it, field, value)
	})
}

// Draft returns the working copy of an editing row.
func (c *Controller) Draft(id int64) (item.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edit.Draft(id)
}

// CommitRow saves one editing row without a push. The row stays in edit.
func (c *Controller) CommitRow(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.edit.CommitOne(ctx, id, c.dispatcher.Update); err != nil {
		c.alertLocked("save", err)
		return err
	}
	return nil
}

// Cancel drops the edit of one row. Cancelling the last row resyncs.
func (c *Controller) Cancel(ctx context.Context, id int64) error {
	c.mu.Lock()
	emptied, err := c.edit.Cancel(id)
	if err == nil {
		c.rebuildLocked()
		c.emit(events.EditMsg{Component: c.component, ID: id, Editing: false})
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if emptied {
		return c.Resync(ctx)
	}
	return nil
}

// BulkCommit saves every editing row in one batch, with a push on the last
// save only, then resyncs once.
func (c *Controller) BulkCommit(ctx context.Context) ([]int64, error) {
	c.mu.Lock()
	empty := c.edit.Len() == 0
	c.mu.Unlock()
	if empty {
		return nil, nil
	}
	var saved []int64
	err := c.dispatcher.Run(ctx, "save", false, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		var err error
		saved, err = c.edit.Commit(ctx, c.dispatcher.Update)
		return err
	})
	return saved, err
}

// BulkCancel drops every edit and resyncs.
func (c *Controller) BulkCancel(ctx context.Context) error {
	c.mu.Lock()
	c.edit.CancelAll()
	c.mu.Unlock()
	return c.Resync(ctx)
}

// Key handles a session shortcut.
func (c *Controller) Key(ctx context.Context, k Key) error {
	switch k {
	case KeyAccept:
		_, err := c.BulkCommit(ctx)
		return err
	case KeyCancel:
		return c.BulkCancel(ctx)
	}
	return fmt.Errorf("cache: unknown key %d", k)
}

// Create adds a row of type t. under is the id of the parent row the new row
// belongs to; it is required for tasks and optional for stories (an epic)
// and epics (a theme). Zero means none.
func (c *Controller) Create(ctx context.Context, t item.Type, under int64) (*int64, error) {
	var owner *item.Item
	if under != 0 {
		it, err := c.owner(t, under)
		if err != nil {
			return nil, err
		}
		owner = &it
	}
	switch t {
	case item.TypeTask:
		if owner == nil {
			return nil, fmt.Errorf("cache: a task needs a story")
		}
		return c.dispatcher.CreateTask(ctx, owner.ID)
	case item.TypeStory:
		return c.dispatcher.CreateStory(ctx, owner)
	case item.TypeEpic:
		return c.dispatcher.CreateEpic(ctx, owner)
	case item.TypeTheme:
		return c.dispatcher.CreateTheme(ctx)
	}
	return nil, fmt.Errorf("cache: unknown type %q", t)
}

// owner finds the row of the type directly above t, in whatever role the
// view shows it.
func (c *Controller) owner(t item.Type, id int64) (item.Item, error) {
	var above item.Type
	switch t {
	case item.TypeTask:
		above = item.TypeStory
	case item.TypeStory:
		above = item.TypeEpic
	case item.TypeEpic:
		above = item.TypeTheme
	default:
		return item.Item{}, fmt.Errorf("cache: %s rows have no owner", t)
	}
	role, ok := c.view.RoleOf(above)
	if !ok {
		return item.Item{}, fmt.Errorf("%w: %s rows are not part of %s", dispatch.ErrUnsupported, above, c.view)
	}
	return c.Lookup(id, role)
}

// Clone duplicates the row id shown under role.
func (c *Controller) Clone(ctx context.Context, id int64, role item.Role, withChildren bool) (*int64, error) {
	it, err := c.Lookup(id, role)
	if err != nil {
		return nil, err
	}
	return c.dispatcher.Clone(ctx, it, role, withChildren)
}

// Delete removes the row id shown under role after confirmation.
func (c *Controller) Delete(ctx context.Context, id int64, role item.Role, confirm dispatch.Confirmer) (bool, error) {
	it, err := c.Lookup(id, role)
	if err != nil {
		return false, err
	}
	return c.dispatcher.Delete(ctx, it, confirm)
}

// DragStart collapses the selection to the grabbed row unless it is already
// selected.
func (c *Controller) DragStart(id int64, role item.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.lookupLocked(id, role); err != nil {
		return err
	}
	if !c.sel.Contains(id) {
		c.sel.Press(item.Ref{ID: id, Role: role}, false)
		c.selectionChangedLocked()
	}
	return nil
}

// Drop moves the selection so it lands at index among the sortable rows that
// are not being moved, and resyncs.
func (c *Controller) Drop(ctx context.Context, grabbed item.Ref, index int) error {
	req, err := c.dropRequest(grabbed, index)
	if err != nil {
		return err
	}
	return c.dispatcher.Move(ctx, req)
}

func (c *Controller) dropRequest(grabbed item.Ref, index int) (item.MoveRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.order != PrioOrder {
		return item.MoveRequest{}, ErrReorderDisabled
	}
	if _, err := c.lookupLocked(grabbed.ID, grabbed.Role); err != nil {
		return item.MoveRequest{}, err
	}
	if !c.sel.Contains(grabbed.ID) {
		c.sel.Press(grabbed, false)
	}

	moving := func(r render.Row) bool {
		return r.Item.ID == grabbed.ID && r.Role == grabbed.Role || c.sel.Contains(r.Item.ID)
	}
	var rest, moved []render.Row
	for _, r := range c.list.Sortable() {
		if moving(r) {
			moved = append(moved, r)
		} else {
			rest = append(rest, r)
		}
	}
	if index < 0 {
		index = 0
	}
	if index > len(rest) {
		index = len(rest)
	}

	post := make([]int64, 0, len(rest)+len(moved))
	for _, r := range rest[:index] {
		post = append(post, r.Item.ID)
	}
	for _, r := range moved {
		post = append(post, r.Item.ID)
	}
	for _, r := range rest[index:] {
		post = append(post, r.Item.ID)
	}
	c.sel.SortBy(post)
	c.persistLocked()

	req := item.MoveRequest{MovedItems: c.sel.Entries()}
	if index < len(rest) {
		anchor := rest[index]
		ref := anchor.Item.Ref(anchor.Role)
		if anchor.Role == item.RoleParent {
			if last, ok := c.list.LastChild(anchor.Item.ID); ok && last.Hidden {
				ref = last.Item.Ref(item.RoleChild)
			}
		}
		req.LastItem = &ref
	}
	return req, nil
}
