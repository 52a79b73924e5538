package fakeapi

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/push"
)

// Request is one call recorded by the server.
type Request struct {
	Method string
	Op     string
	Query  url.Values
	Body   string
}

type failure struct {
	status  int
	message string
}

// Server serves a Backlog over HTTP, with the push channel at
// {prefix}/push/{area}.
type Server struct {
	backlog *Backlog
	hub     *push.Hub
	logger  *slog.Logger
	prefix  string

	mu       sync.Mutex
	failures map[string]failure
	requests []Request
}

// Option configures a Server.
type Option func(*Server)

// WithPrefix mounts every route under prefix, e.g. "/backlogtool".
func WithPrefix(prefix string) Option {
	return func(s *Server) {
		s.prefix = "/" + strings.Trim(prefix, "/")
		if s.prefix == "/" {
			s.prefix = ""
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Server for b.
func New(b *Backlog, opts ...Option) *Server {
	s := &Server{backlog: b, logger: slog.Default(), failures: map[string]failure{}}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = push.NewHub(s.logger)
	return s
}

// Backlog returns the served data.
func (s *Server) Backlog() *Backlog {
	return s.backlog
}

// Hub returns the push hub.
func (s *Server) Hub() *push.Hub {
	return s.hub
}

// FailNext makes the next request of op fail with status and message.
func (s *Server) FailNext(op string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{status: status, message: message}
}

// Requests returns the recorded calls, oldest first.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many recorded calls were made to op.
func (s *Server) Count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets the recorded calls.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	routes := func(r chi.Router) {
		r.Get("/push/{area}", func(w http.ResponseWriter, r *http.Request) {
			s.hub.Serve(w, r, chi.URLParam(r, "area"))
		})
		r.Get("/json/{op}/{area}", s.handle)
		r.Post("/json/{op}/{area}", s.handle)
	}
	if s.prefix == "" {
		routes(r)
	} else {
		r.Route(s.prefix, routes)
	}
	return r
}

// Close disconnects the push clients.
func (s *Server) Close() {
	s.hub.Close()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "op")
	area := chi.URLParam(r, "area")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Op: op, Query: r.URL.Query(), Body: string(body)})
	f, fail := s.failures[op]
	delete(s.failures, op)
	s.mu.Unlock()

	if fail {
		s.logger.Debug("injected failure", "op", op, "status", f.status)
		http.Error(w, f.message, f.status)
		return
	}
	if area != s.backlog.Area() {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	res, notify, err := s.dispatch(r, op, body)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, errNotFound):
			status = http.StatusNotFound
		case errors.Is(err, errConflict):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	if notify {
		s.hub.Notify(area)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.Warn("encode response", "op", op, "err", err)
	}
}

// dispatch runs op and reports the response and whether the other clients
// need a push.
func (s *Server) dispatch(r *http.Request, op string, body []byte) (any, bool, error) {
	b := s.backlog
	q := r.URL.Query()
	switch {
	case op == "readArea":
		return b.ReadArea(), false, nil
	case strings.HasPrefix(op, "read"):
		view, err := item.ParseView(strings.TrimPrefix(op, "read"))
		if err != nil {
			return nil, false, err
		}
		order := q.Get("order")
		if order == "" {
			order = "prio"
		}
		out, err := b.Read(view, order)
		return out, false, err
	case op == "autocompletethemes":
		return b.Themes(q.Get("term")), false, nil
	case op == "autocompleteepics":
		return b.Epics(q.Get("theme"), q.Get("term")), false, nil
	case strings.HasPrefix(op, "create"):
		return s.create(strings.TrimPrefix(op, "create"), body)
	case strings.HasPrefix(op, "update"):
		notify := q.Get("pushUpdate") == "true"
		return true, notify, s.update(strings.TrimPrefix(op, "update"), body)
	case strings.HasPrefix(op, "clone"):
		return s.clone(strings.TrimPrefix(op, "clone"), body)
	case strings.HasPrefix(op, "delete"):
		t, err := item.ParseType(strings.TrimPrefix(op, "delete"))
		if err != nil {
			return nil, false, err
		}
		id, err := strconv.ParseInt(strings.Trim(strings.TrimSpace(string(body)), `"`), 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("bad id: %w", err)
		}
		return true, true, b.Delete(t, id)
	case strings.HasPrefix(op, "move"):
		view, err := item.ParseView(strings.TrimPrefix(op, "move"))
		if err != nil {
			return nil, false, err
		}
		var req item.MoveRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, false, err
		}
		return true, true, b.Move(view, req)
	}
	return nil, false, fmt.Errorf("%w: %s", errNotFound, op)
}

func (s *Server) create(kind string, body []byte) (any, bool, error) {
	b := s.backlog
	decode := func(v any) error {
		if len(strings.TrimSpace(string(body))) == 0 {
			return nil
		}
		return json.Unmarshal(body, v)
	}
	var id *int64
	switch kind {
	case "task":
		var req item.NewTask
		if err := decode(&req); err != nil {
			return nil, false, err
		}
		id = b.CreateTask(req)
	case "story":
		var req item.NewStory
		if err := decode(&req); err != nil {
			return nil, false, err
		}
		id = b.CreateStory(req)
	case "epic":
		var req item.NewEpic
		if err := decode(&req); err != nil {
			return nil, false, err
		}
		id = b.CreateEpic(req)
	case "theme":
		id = b.CreateTheme()
	default:
		return nil, false, fmt.Errorf("%w: create%s", errNotFound, kind)
	}
	return id, id != nil, nil
}

func (s *Server) update(kind string, body []byte) error {
	b := s.backlog
	switch kind {
	case "story":
		var u item.StoryUpdate
		if err := json.Unmarshal(body, &u); err != nil {
			return err
		}
		return b.UpdateStory(u)
	case "task":
		var u item.TaskUpdate
		if err := json.Unmarshal(body, &u); err != nil {
			return err
		}
		return b.UpdateTask(u)
	case "epic":
		var u item.EpicUpdate
		if err := json.Unmarshal(body, &u); err != nil {
			return err
		}
		return b.UpdateEpic(u)
	case "theme":
		var u item.ThemeUpdate
		if err := json.Unmarshal(body, &u); err != nil {
			return err
		}
		return b.UpdateTheme(u)
	}
	return fmt.Errorf("%w: update%s", errNotFound, kind)
}

func (s *Server) clone(kind string, body []byte) (any, bool, error) {
	t, err := item.ParseType(kind)
	if err != nil {
		return nil, false, err
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, false, err
	}
	id, err := strconv.ParseInt(form.Get("id"), 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("bad id: %w", err)
	}
	newID, err := s.backlog.Clone(t, id, form.Get("withChildren") == "true")
	return newID, err == nil, err
}
