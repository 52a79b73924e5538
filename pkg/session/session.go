// Package session tracks the rows being edited. While any row is in edit the
// push listener is suspended so a remote change cannot rebuild the list under
// the user's unsaved drafts.
package session

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/backlog/pkg/item"
)

// ErrNotEditing is returned for operations on a row that is not in edit.
var ErrNotEditing = errors.New("session: row is not being edited")

// Listener is the push registration the session keeps in step with the
// editing set.
type Listener interface {
	Suspend()
	Resume()
}

// Entry identifies an editing row.
type Entry struct {
	ID   int64     `json:"id"`
	Type item.Type `json:"type"`
}

// Saver persists one edited item. push is set on the last save of a batch.
type Saver func(ctx context.Context, it item.Item, push bool) error

// Failure is a row whose save failed.
type Failure struct {
	ID  int64
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("save %d: %v", f.ID, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

type row struct {
	entry    Entry
	original item.Item
	draft    item.Item
	modified bool
}

// Manager is the editing set. It is not safe for concurrent use; the
// controller serialises access.
type Manager struct {
	listener Listener
	rows     []*row
	dirty    bool
}

// New returns an empty Manager keeping listener in step.
func New(listener Listener) *Manager {
	return &Manager{listener: listener}
}

func (m *Manager) find(id int64) int {
	for i, r := range m.rows {
		if r.entry.ID == id {
			return i
		}
	}
	return -1
}

// Editing reports whether id is in edit.
func (m *Manager) Editing(id int64) bool {
	return m.find(id) >= 0
}

// Len is the number of rows in edit.
func (m *Manager) Len() int {
	return len(m.rows)
}

// Entries returns the editing rows in the order they entered edit.
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.entry
	}
	return out
}

// IDs returns the editing ids in the order they entered edit.
func (m *Manager) IDs() []int64 {
	out := make([]int64, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.entry.ID
	}
	return out
}

// Draft returns the working copy of an editing row.
func (m *Manager) Draft(id int64) (item.Item, bool) {
	i := m.find(id)
	if i < 0 {
		return item.Item{}, false
	}
	return m.rows[i].draft.Clone(), true
}

// Begin puts it in edit. The first row entering edit suspends push. It
// returns false when the row is already in edit.
func (m *Manager) Begin(it item.Item) bool {
	if m.Editing(it.ID) {
		return false
	}
	m.rows = append(m.rows, &row{
		entry:    Entry{ID: it.ID, Type: it.Type},
		original: it.Clone(),
		draft:    it.Clone(),
	})
	if len(m.rows) == 1 {
		m.listener.Suspend()
	}
	return true
}

// Toggle begins editing it, or cancels the edit when it is already in edit.
// emptied is true when the toggle cancelled the last editing row.
func (m *Manager) Toggle(it item.Item) (editing, emptied bool) {
	if m.Begin(it) {
		return true, false
	}
	emptied, _ = m.Cancel(it.ID)
	return false, emptied
}

// Modify applies fn to the draft of id and arms its commit.
func (m *Manager) Modify(id int64, fn func(*item.Item) error) error {
	i := m.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotEditing, id)
	}
	draft := m.rows[i].draft.Clone()
	if err := fn(&draft); err != nil {
		return err
	}
	draft.ID = m.rows[i].entry.ID
	draft.Type = m.rows[i].entry.Type
	m.rows[i].draft = draft
	m.rows[i].modified = true
	m.dirty = true
	return nil
}

// Revert throws away the changes made to id since it entered edit or was
// last committed.
func (m *Manager) Revert(id int64) error {
	i := m.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotEditing, id)
	}
	m.rows[i].draft = m.rows[i].original.Clone()
	m.rows[i].modified = false
	return nil
}

// CommitEnabled reports whether the row commit of id is armed.
func (m *Manager) CommitEnabled(id int64) bool {
	i := m.find(id)
	return i >= 0 && m.rows[i].modified
}

// SaveEnabled reports whether the global save is armed: some row was
// modified since the session started.
func (m *Manager) SaveEnabled() bool {
	return m.dirty && len(m.rows) > 0
}

// Cancel drops the edit of id. When the session empties push resumes and
// emptied is true; the caller then resyncs.
func (m *Manager) Cancel(id int64) (emptied bool, err error) {
	i := m.find(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %d", ErrNotEditing, id)
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	if len(m.rows) == 0 {
		m.reset()
		return true, nil
	}
	return false, nil
}

// CancelAll drops every edit without touching the server. It reports whether
// anything was in edit.
func (m *Manager) CancelAll() bool {
	if len(m.rows) == 0 {
		return false
	}
	m.rows = nil
	m.reset()
	return true
}

// CommitOne saves the draft of id without a push and keeps it in edit.
func (m *Manager) CommitOne(ctx context.Context, id int64, save Saver) error {
	i := m.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotEditing, id)
	}
	r := m.rows[i]
	if err := save(ctx, r.draft.Clone(), false); err != nil {
		return Failure{ID: id, Err: err}
	}
	r.original = r.draft.Clone()
	r.modified = false
	return nil
}

// Commit saves every editing row in the order it entered edit, asking for a
// push on the last request only, then ends the session. Failed rows are
// reported together; the session ends either way.
func (m *Manager) Commit(ctx context.Context, save Saver) ([]int64, error) {
	if len(m.rows) == 0 {
		return nil, nil
	}
	rows := m.rows
	m.rows = nil
	defer m.reset()

	saved := make([]int64, 0, len(rows))
	var errs []error
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			errs = append(errs, Failure{ID: r.entry.ID, Err: err})
			continue
		}
		if err := save(ctx, r.draft.Clone(), i == len(rows)-1); err != nil {
			errs = append(errs, Failure{ID: r.entry.ID, Err: err})
			continue
		}
		saved = append(saved, r.entry.ID)
	}
	return saved, errors.Join(errs...)
}

// Retain drops editing rows that are no longer part of snap and refreshes the
// original of the others. Drafts are kept.
func (m *Manager) Retain(snap *item.Snapshot) {
	if len(m.rows) == 0 {
		return
	}
	kept := m.rows[:0]
	for _, r := range m.rows {
		it, ok := lookup(snap, r.entry)
		if !ok {
			continue
		}
		r.original = it.Clone()
		if !r.modified {
			r.draft = it.Clone()
		}
		kept = append(kept, r)
	}
	m.rows = kept
	if len(m.rows) == 0 {
		m.reset()
	}
}

func lookup(snap *item.Snapshot, e Entry) (item.Item, bool) {
	role, ok := snap.View.RoleOf(e.Type)
	if !ok {
		return item.Item{}, false
	}
	if role == item.RoleParent {
		return snap.Parent(e.ID)
	}
	return snap.Child(e.ID)
}

func (m *Manager) reset() {
	m.dirty = false
	m.listener.Resume()
}
