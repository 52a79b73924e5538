// Package app wires one backlog client together: configuration, logging, the
// local store, the server API, push notifications and the controller.
// Commands and long running views share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/backlog/pkg/api"
	"tableflip.dev/backlog/pkg/cache"
	"tableflip.dev/backlog/pkg/config"
	"tableflip.dev/backlog/pkg/events"
	"tableflip.dev/backlog/pkg/logging"
	"tableflip.dev/backlog/pkg/push"
	"tableflip.dev/backlog/pkg/store"
)

var ErrNotStarted = errors.New("app: service not started")

// Options tunes New.
type Options struct {
	// Watch keeps a push connection and a store watcher open so the view
	// follows changes made elsewhere.
	Watch bool
	// ShowArchived includes the archived section in the render list.
	ShowArchived bool
	// Logger overrides the logger built from the config.
	Logger     *slog.Logger
	HTTPClient *http.Client
	// KV overrides the disk store, mainly for tests.
	KV store.KV
}

// Service provides high-level operations on one view of one area.
type Service struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      *store.DiskStore
	Slot       *store.SelectionSlot
	API        *api.Client
	Push       *push.Client
	Controller *cache.Controller

	watch   bool
	closers []io.Closer

	mu      sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
	started bool
}

// New builds the service. Nothing talks to the server until Start.
func New(cfg *config.Config, opts Options) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("app: no config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{Config: cfg, watch: opts.Watch}

	s.Logger = opts.Logger
	if s.Logger == nil {
		var closer io.Closer
		s.Logger, closer = logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
		s.closers = append(s.closers, closer)
	}
	s.Logger = s.Logger.With("area", cfg.Area, "view", cfg.View)

	kv := opts.KV
	if kv == nil {
		ds, err := store.Open(cfg)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Store = ds
		kv = ds
	}
	s.Slot = store.NewSelectionSlot(kv, cfg.Area, cfg.SelectionTTL, s.Logger)

	apiOpts := []api.Option{api.WithLogger(s.Logger)}
	if opts.HTTPClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(opts.HTTPClient))
	}
	s.API = api.New(cfg.Server, cfg.Area, apiOpts...)

	copts := cache.Options{
		Component:    events.ComponentID(string(cfg.View)),
		View:         cfg.View,
		Order:        cfg.Order,
		ShowArchived: opts.ShowArchived,
		Timeout:      cfg.Timeout,
		Logger:       s.Logger,
		Slot:         s.Slot,
	}
	if opts.Watch {
		s.Push = push.NewClient(cfg.Server, cfg.Area, s.Logger)
		copts.Push = s.Push
	}
	s.Controller = cache.New(s.API, copts)
	return s, nil
}

// Start loads the first snapshot. With Watch it also starts the push
// connection and the store watcher, which run until ctx is done or Close.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	if s.watch {
		ctx, cancel := context.WithCancel(ctx)
		g, gctx := errgroup.WithContext(ctx)
		s.mu.Lock()
		s.cancel, s.group = cancel, g
		s.mu.Unlock()

		g.Go(func() error {
			return s.Push.Run(gctx)
		})
		if s.Store != nil {
			ch, err := s.Store.Watch(gctx)
			if err != nil {
				s.Logger.Warn("store watch unavailable", "err", err)
			} else {
				g.Go(func() error {
					s.followStore(gctx, ch)
					return nil
				})
			}
		}
	}

	timeout := s.Config.Timeout
	if timeout <= 0 {
		return s.Controller.Load(ctx)
	}
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Controller.Load(lctx)
}

// followStore reloads the selection when another process rewrites the slot.
func (s *Service) followStore(ctx context.Context, ch <-chan store.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Type == store.EventKeyChanged && ev.Key != s.Slot.Key() {
				continue
			}
			s.Logger.Debug("stored selection changed", "key", ev.Key)
			s.Controller.ReloadSelection()
		}
	}
}

// Wait blocks until the background watchers stop.
func (s *Service) Wait() error {
	s.mu.Lock()
	g := s.group
	s.mu.Unlock()
	if g == nil {
		return ErrNotStarted
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Events is the controller event stream.
func (s *Service) Events() <-chan events.Msg {
	return s.Controller.Events()
}

// Themes suggests theme titles starting with term.
func (s *Service) Themes(ctx context.Context, term string) ([]string, error) {
	return s.API.AutocompleteThemes(ctx, term)
}

// Epics suggests epic titles of theme starting with term.
func (s *Service) Epics(ctx context.Context, theme, term string) ([]string, error) {
	return s.API.AutocompleteEpics(ctx, theme, term)
}

// Close stops the watchers and releases the log sink.
func (s *Service) Close() error {
	s.mu.Lock()
	cancel, g := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()

	var errs []error
	if cancel != nil {
		cancel()
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, fmt.Errorf("app: watchers: %w", err))
		}
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
