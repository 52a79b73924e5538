// Package cache is the reconciliation controller. It keeps the local picture
// of one backlog view (snapshot, visibility, selection, editing rows) and the
// render list derived from it, and rebuilds all of it from a full resync after
// every mutation and every push notification.
//
// Like an informer cache, state lives locally, watchers subscribe to the
// emitted events and readers get consistent copies without hitting the server.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tableflip.dev/backlog/pkg/api"
	"tableflip.dev/backlog/pkg/dispatch"
	"tableflip.dev/backlog/pkg/events"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/render"
	"tableflip.dev/backlog/pkg/selection"
	"tableflip.dev/backlog/pkg/session"
	"tableflip.dev/backlog/pkg/visibility"
)

var (
	// ErrNotLoaded is returned by operations that need a snapshot before the
	// first successful load.
	ErrNotLoaded = errors.New("cache: no snapshot loaded")
	// ErrUnknownRow is returned for rows that are not part of the snapshot.
	ErrUnknownRow = errors.New("cache: unknown row")
	// ErrReorderDisabled is returned for drops while the view is not ordered
	// by priority.
	ErrReorderDisabled = errors.New("cache: reordering needs priority order")
	// ErrMixedRoles is returned when parents and children are selected
	// together.
	ErrMixedRoles = errors.New("cache: parents and children can not be selected together")
)

// PrioOrder is the only order under which rows can be dragged.
const PrioOrder = "prio"

// API is the server surface the controller talks to.
type API interface {
	dispatch.API
	Fetch(ctx context.Context, view item.View, order string) (*item.Snapshot, error)
}

// Push is the change notification channel.
type Push interface {
	Register(fn func()) string
	Unregister(id string)
}

// SelectionStore persists the selection between runs.
type SelectionStore interface {
	Save(entries []item.TypedRef) error
	Load() []item.TypedRef
}

// Options configures a Controller.
type Options struct {
	Component    events.ComponentID
	View         item.View
	Order        string
	ShowArchived bool
	// Timeout bounds resyncs triggered by push notifications.
	Timeout time.Duration
	Logger  *slog.Logger
	// Push and Slot are optional.
	Push Push
	Slot SelectionStore
}

// Controller owns the client state of one view of one area. It is safe for
// concurrent use.
type Controller struct {
	component events.ComponentID
	api       API
	slot      SelectionStore
	logger    *slog.Logger
	timeout   time.Duration
	view      item.View

	mu           sync.Mutex
	order        string
	showArchived bool
	snap         *item.Snapshot
	sel          *selection.Set
	vis          *visibility.Map
	edit         *session.Manager
	list         render.List
	busy         bool
	lastAlert    *events.AlertMsg

	guard      *pushGuard
	dispatcher *dispatch.Dispatcher
	flight     singleflight.Group

	eventCh chan events.Msg
}

// New returns a Controller that has not loaded anything yet.
func New(client API, opts Options) *Controller {
	if opts.Component == "" {
		opts.Component = events.ComponentID("cache")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Order == "" {
		opts.Order = PrioOrder
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	c := &Controller{
		component:    opts.Component,
		api:          client,
		slot:         opts.Slot,
		logger:       opts.Logger,
		timeout:      opts.Timeout,
		view:         opts.View,
		order:        opts.Order,
		showArchived: opts.ShowArchived,
		sel:          selection.New(),
		vis:          visibility.New(),
		eventCh:      make(chan events.Msg, 64),
	}
	c.guard = &pushGuard{push: opts.Push, onChange: c.onPush}
	c.edit = session.New(c.guard)
	c.dispatcher = dispatch.New(client, c, opts.View, opts.Logger)
	return c
}

// Events exposes the controller event channel. Events are dropped when
// nobody drains it.
func (c *Controller) Events() <-chan events.Msg {
	return c.eventCh
}

// View returns the view the controller shows.
func (c *Controller) View() item.View {
	return c.view
}

// Dispatcher returns the mutation dispatcher bound to this controller.
func (c *Controller) Dispatcher() *dispatch.Dispatcher {
	return c.dispatcher
}

// Load performs the initial fetch: the first child of every group is shown,
// the stored selection is restored and push listening starts.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	order := c.order
	c.mu.Unlock()

	snap, err := c.api.Fetch(ctx, c.view, order)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked("load", err)
		return err
	}
	prev := c.snap
	c.snap = snap
	c.vis.SeedFirst(snap.Parents)
	if c.slot != nil {
		c.sel.Replace(selection.Restore(c.view, c.slot.Load(), snap.Parents)...)
	}
	c.sel.Prune(snap)
	c.rebuildLocked()
	if c.edit.Len() == 0 {
		c.guard.Resume()
	}
	c.finishLocked(prev)
	return nil
}

// Resync refetches the snapshot and rebuilds every derived structure. A
// failed fetch keeps the last good snapshot, alerts and returns the error.
func (c *Controller) Resync(ctx context.Context) error {
	c.mu.Lock()
	order := c.order
	c.mu.Unlock()

	snap, err := c.api.Fetch(ctx, c.view, order)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked("resync", err)
		return err
	}
	prev := c.snap
	c.snap = snap
	c.vis.Prune(snap.Parents)
	c.vis.Normalize(snap.Parents)
	if n := c.sel.Prune(snap); n > 0 {
		c.persistLocked()
	}
	c.edit.Retain(snap)
	c.rebuildLocked()
	if c.edit.Len() == 0 {
		c.guard.Resume()
	}
	c.finishLocked(prev)
	return nil
}

func (c *Controller) failLocked(op string, err error) {
	if errors.Is(err, api.ErrMalformedSnapshot) {
		c.logger.Error("malformed snapshot, keeping the last good state", "op", op, "err", err)
	} else {
		c.logger.Warn("fetch failed", "op", op, "err", err)
	}
	c.alertLocked(op, err)
	c.setBusyLocked(false)
}

// finishLocked ends a successful fetch: busy off and the change events.
func (c *Controller) finishLocked(prev *item.Snapshot) {
	c.setBusyLocked(false)
	for _, msg := range events.Diff(c.component, prev, c.snap) {
		c.emit(msg)
	}
	c.emit(events.ResyncedMsg{
		Component: c.component,
		View:      c.view,
		Order:     c.order,
		Parents:   len(c.snap.Parents),
		Rows:      len(c.list.Rows),
		Selected:  c.sel.Len(),
		Editing:   c.edit.Len(),
		At:        c.snap.FetchedAt,
	})
}

// onPush runs on the push client's read loop. Concurrent notifications share
// one resync.
func (c *Controller) onPush() {
	_, _, _ = c.flight.Do("resync", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		c.logger.Debug("push notification, resyncing")
		return nil, c.Resync(ctx)
	})
}

func (c *Controller) rebuildLocked() {
	c.list = render.Build(c.snap, c.vis, c.sel, c.edit, render.Options{ShowArchived: c.showArchived})
}

func (c *Controller) persistLocked() {
	if c.slot == nil {
		return
	}
	if err := c.slot.Save(selection.ToStored(c.view, c.sel.Entries())); err != nil {
		c.logger.Warn("failed to store selection", "err", err)
	}
}

func (c *Controller) emit(msg events.Msg) {
	select {
	case c.eventCh <- msg:
	default:
	}
}

// SetBusy toggles the busy indicator.
func (c *Controller) SetBusy(busy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setBusyLocked(busy)
}

func (c *Controller) setBusyLocked(busy bool) {
	if c.busy == busy {
		return
	}
	c.busy = busy
	c.emit(events.BusyMsg{Component: c.component, Busy: busy})
}

// SuspendPush stops listening for push notifications until the next resync
// that finds no row in edit.
func (c *Controller) SuspendPush() {
	c.guard.Suspend()
}

// Seed shows a freshly created row and makes it the only selection. Parent
// and child ids may collide, so only child rows touch the visibility map.
func (c *Controller) Seed(ref item.Ref) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ref.Role == item.RoleChild {
		c.vis.Set(ref.ID, true)
	}
	c.sel.Replace(ref)
	c.persistLocked()
	c.emit(events.SelectionMsg{Component: c.component, Selected: c.sel.Entries()})
}

// Alert reports a failed request.
func (c *Controller) Alert(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alertLocked(op, err)
}

func (c *Controller) alertLocked(op string, err error) {
	msg := events.AlertMsg{Component: c.component, Op: op, Message: err.Error()}
	c.lastAlert = &msg
	c.emit(msg)
}

// LastAlert returns the most recent alert, if any.
func (c *Controller) LastAlert() (events.AlertMsg, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastAlert == nil {
		return events.AlertMsg{}, false
	}
	return *c.lastAlert, true
}

// Busy reports whether a mutation or fetch is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Listening reports whether the push listener is registered.
func (c *Controller) Listening() bool {
	return c.guard.Registered()
}

// Snapshot returns a copy of the current snapshot, or nil before the first
// load.
func (c *Controller) Snapshot() *item.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return nil
	}
	cp := *c.snap
	cp.Parents = make([]item.Item, len(c.snap.Parents))
	for i, p := range c.snap.Parents {
		cp.Parents[i] = p.Clone()
	}
	return &cp
}

// Rows returns the current render list.
func (c *Controller) Rows() render.List {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := make([]render.Row, len(c.list.Rows))
	copy(rows, c.list.Rows)
	return render.List{View: c.list.View, Rows: rows}
}

// Selection returns the selected rows in selection order.
func (c *Controller) Selection() []item.Ref {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Entries()
}

// Editing returns the rows in edit.
func (c *Controller) Editing() []session.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edit.Entries()
}

// Order returns the current sort order.
func (c *Controller) Order() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

func (c *Controller) lookupLocked(id int64, role item.Role) (item.Item, error) {
	if c.snap == nil {
		return item.Item{}, ErrNotLoaded
	}
	var (
		it item.Item
		ok bool
	)
	switch role {
	case item.RoleParent:
		it, ok = c.snap.Parent(id)
	case item.RoleChild:
		it, ok = c.snap.Child(id)
	}
	if !ok {
		return item.Item{}, fmt.Errorf("%w: %s %d", ErrUnknownRow, role, id)
	}
	return it, nil
}

// Lookup returns the row id shown under role.
func (c *Controller) Lookup(id int64, role item.Role) (item.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(id, role)
}

// Resolve fills in the role of ref when it is empty. An id shown both as a
// parent and as a child resolves to the parent.
func (c *Controller) Resolve(ref item.Ref) (item.Ref, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ref.Role != "" {
		_, err := c.lookupLocked(ref.ID, ref.Role)
		return ref, err
	}
	if c.snap == nil {
		return ref, ErrNotLoaded
	}
	for _, role := range []item.Role{item.RoleParent, item.RoleChild} {
		if _, err := c.lookupLocked(ref.ID, role); err == nil {
			return item.Ref{ID: ref.ID, Role: role}, nil
		}
	}
	return ref, fmt.Errorf("%w: %d", ErrUnknownRow, ref.ID)
}

// pushGuard keeps the push registration in step with the editing session and
// in-flight mutations. It has its own lock so the session can call it while
// the controller lock is held.
type pushGuard struct {
	push     Push
	onChange func()

	mu sync.Mutex
	id string
}

// Suspend unregisters the listener.
func (g *pushGuard) Suspend() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.push == nil || g.id == "" {
		return
	}
	g.push.Unregister(g.id)
	g.id = ""
}

// Resume registers the listener unless it already is.
func (g *pushGuard) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.push == nil || g.id != "" {
		return
	}
	g.id = g.push.Register(g.onChange)
}

func (g *pushGuard) Registered() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id != ""
}
