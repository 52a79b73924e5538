// Package dispatch sends mutations to the server. Every mutation follows the
// same protocol: busy on, optionally suspend push, one request, seed the
// client state with the result, then a full resync that also clears busy.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"tableflip.dev/backlog/pkg/item"
)

var (
	// ErrBusy is returned when a mutation is attempted while another one is
	// in flight.
	ErrBusy = errors.New("dispatch: another change is in progress")
	// ErrUnsupported is returned for mutations the view cannot express.
	ErrUnsupported = errors.New("dispatch: unsupported")
)

// API is the subset of the server client the dispatcher needs.
type API interface {
	Create(ctx context.Context, t item.Type, body any) (*int64, error)
	Update(ctx context.Context, it item.Item, push bool) error
	Clone(ctx context.Context, t item.Type, id int64, withChildren bool) (*int64, error)
	Delete(ctx context.Context, t item.Type, id int64) error
	Move(ctx context.Context, view item.View, req item.MoveRequest) error
}

// Host is the owner of the client state the dispatcher reports back to.
type Host interface {
	// SetBusy toggles the busy indicator. Resync turns it off.
	SetBusy(busy bool)
	// SuspendPush unregisters the push listener until the next resync.
	SuspendPush()
	// Seed makes a freshly created row visible and the only selected row.
	Seed(ref item.Ref)
	// Alert shows a failed request to the user.
	Alert(op string, err error)
	// Resync refetches the snapshot and rebuilds everything.
	Resync(ctx context.Context) error
	// BeginEdit puts a row of the current snapshot in edit.
	BeginEdit(id int64, role item.Role) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

// Dispatcher runs mutations for one view of one area.
type Dispatcher struct {
	api    API
	host   Host
	view   item.View
	logger *slog.Logger
	now    func() time.Time

	busy atomic.Bool
}

// New returns a Dispatcher.
func New(api API, host Host, view item.View, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{api: api, host: host, view: view, logger: logger, now: time.Now}
}

// Busy reports whether a mutation is in flight.
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

// Run executes fn under the mutation protocol: it fails with ErrBusy when
// another mutation is running, alerts on failure and always resyncs once.
func (d *Dispatcher) Run(ctx context.Context, op string, suspend bool, fn func(context.Context) error) error {
	_, err := d.run(ctx, op, suspend, func(ctx context.Context) (*item.Ref, error) {
		return nil, fn(ctx)
	})
	return err
}

// run is Run for mutations that create a row; a non-nil ref is seeded before
// the resync.
func (d *Dispatcher) run(ctx context.Context, op string, suspend bool, fn func(context.Context) (*item.Ref, error)) (*item.Ref, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer d.busy.Store(false)

	d.host.SetBusy(true)
	if suspend {
		d.host.SuspendPush()
	}
	ref, err := fn(ctx)
	if err != nil {
		d.logger.Info("mutation failed", "op", op, "err", err)
		d.host.Alert(op, err)
		ref = nil
	} else if ref != nil {
		d.host.Seed(*ref)
	}
	if rerr := d.host.Resync(ctx); rerr != nil {
		d.logger.Warn("resync after mutation failed", "op", op, "err", rerr)
		if err == nil {
			err = rerr
		}
	}
	return ref, err
}

// create runs a create-like request and puts the new row in edit.
func (d *Dispatcher) create(ctx context.Context, op string, t item.Type, call func(context.Context) (*int64, error)) (*int64, error) {
	role, ok := d.view.RoleOf(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s rows are not part of %s", ErrUnsupported, t, d.view)
	}
	ref, err := d.run(ctx, op, true, func(ctx context.Context) (*item.Ref, error) {
		id, err := call(ctx)
		if err != nil || id == nil {
			// a null id is a refusal: nothing to seed
			return nil, err
		}
		return &item.Ref{ID: *id, Role: role}, nil
	})
	if err != nil || ref == nil {
		return nil, err
	}
	if err := d.host.BeginEdit(ref.ID, ref.Role); err != nil {
		d.logger.Debug("new row not editable", "id", ref.ID, "err", err)
	}
	id := ref.ID
	return &id, nil
}

// CreateTask adds a task under the story parentID.
func (d *Dispatcher) CreateTask(ctx context.Context, parentID int64) (*int64, error) {
	return d.create(ctx, "createtask", item.TypeTask, func(ctx context.Context) (*int64, error) {
		return d.api.Create(ctx, item.TypeTask, item.NewTask{ParentID: parentID})
	})
}

// CreateStory adds a story. With epic set the story joins that epic and its
// theme.
func (d *Dispatcher) CreateStory(ctx context.Context, epic *item.Item) (*int64, error) {
	body := item.NewStory{Added: item.NewTimestamp(d.now())}
	if epic != nil {
		body.EpicTitle = epic.Title
		body.ThemeTitle = epic.ThemeTitle
	}
	return d.create(ctx, "createstory", item.TypeStory, func(ctx context.Context) (*int64, error) {
		return d.api.Create(ctx, item.TypeStory, body)
	})
}

// CreateEpic adds an epic, inside theme when set.
func (d *Dispatcher) CreateEpic(ctx context.Context, theme *item.Item) (*int64, error) {
	body := item.NewEpic{}
	if theme != nil {
		body.ThemeTitle = theme.Title
	}
	return d.create(ctx, "createepic", item.TypeEpic, func(ctx context.Context) (*int64, error) {
		return d.api.Create(ctx, item.TypeEpic, body)
	})
}

// CreateTheme adds a theme.
func (d *Dispatcher) CreateTheme(ctx context.Context) (*int64, error) {
	return d.create(ctx, "createtheme", item.TypeTheme, func(ctx context.Context) (*int64, error) {
		return d.api.Create(ctx, item.TypeTheme, nil)
	})
}

// Update saves it without the mutation protocol. Callers batching updates
// wrap them in Run so the batch resyncs once.
func (d *Dispatcher) Update(ctx context.Context, it item.Item, push bool) error {
	return d.api.Update(ctx, it, push)
}

func (d *Dispatcher) updateTyped(ctx context.Context, t item.Type, it item.Item, push bool) error {
	if it.Type != t {
		return fmt.Errorf("dispatch: item %d is a %s, not a %s", it.ID, it.Type, t)
	}
	return d.Update(ctx, it, push)
}

// UpdateStory saves a story.
func (d *Dispatcher) UpdateStory(ctx context.Context, it item.Item, push bool) error {
	return d.updateTyped(ctx, item.TypeStory, it, push)
}

// UpdateTask saves a task.
func (d *Dispatcher) UpdateTask(ctx context.Context, it item.Item, push bool) error {
	return d.updateTyped(ctx, item.TypeTask, it, push)
}

// UpdateEpic saves an epic.
func (d *Dispatcher) UpdateEpic(ctx context.Context, it item.Item, push bool) error {
	return d.updateTyped(ctx, item.TypeEpic, it, push)
}

// UpdateTheme saves a theme.
func (d *Dispatcher) UpdateTheme(ctx context.Context, it item.Item, push bool) error {
	return d.updateTyped(ctx, item.TypeTheme, it, push)
}

// Clone duplicates it, shown under role, and puts the copy in edit.
// withChildren only applies to parent stories of story-task.
func (d *Dispatcher) Clone(ctx context.Context, it item.Item, role item.Role, withChildren bool) (*int64, error) {
	if it.Type == item.TypeTask {
		return nil, fmt.Errorf("%w: tasks cannot be cloned", ErrUnsupported)
	}
	withChildren = withChildren && d.view == item.ViewStoryTask && role == item.RoleParent && it.Type == item.TypeStory
	ref, err := d.run(ctx, "clone"+it.Type.Title(), true, func(ctx context.Context) (*item.Ref, error) {
		id, err := d.api.Clone(ctx, it.Type, it.ID, withChildren)
		if err != nil || id == nil {
			return nil, err
		}
		return &item.Ref{ID: *id, Role: role}, nil
	})
	if err != nil || ref == nil {
		return nil, err
	}
	if err := d.host.BeginEdit(ref.ID, ref.Role); err != nil {
		d.logger.Debug("clone not editable", "id", ref.ID, "err", err)
	}
	id := ref.ID
	return &id, nil
}

// Delete asks for confirmation and removes target. It reports false without
// doing anything when the user declines.
func (d *Dispatcher) Delete(ctx context.Context, target item.Item, confirm Confirmer) (bool, error) {
	// captured now; the snapshot may change while the prompt is open
	id, t := target.ID, target.Type
	if t == "" {
		return false, fmt.Errorf("dispatch: item %d has no type", id)
	}
	if confirm != nil {
		ok, err := confirm.Confirm(fmt.Sprintf("Are you sure you want to delete this %s?", t))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	err := d.Run(ctx, "delete"+string(t), true, func(ctx context.Context) error {
		return d.api.Delete(ctx, t, id)
	})
	return err == nil, err
}

// Move reorders the rows of req in front of req.LastItem, or to the end.
func (d *Dispatcher) Move(ctx context.Context, req item.MoveRequest) error {
	if len(req.MovedItems) == 0 {
		return nil
	}
	return d.Run(ctx, "move"+string(d.view), false, func(ctx context.Context) error {
		return d.api.Move(ctx, d.view, req)
	})
}
