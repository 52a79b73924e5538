package app

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tableflip.dev/backlog/pkg/api"
	"tableflip.dev/backlog/pkg/config"
	"tableflip.dev/backlog/pkg/fakeapi"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/logging"
	"tableflip.dev/backlog/pkg/store"
)

const fixture = `
area: team
themes:
  - title: Platform
    epics:
      - title: Login
        stories:
          - title: Reset
            tasks: [mail, expiry]
          - title: SSO
`

func serve(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	b, err := fakeapi.ReadFixture(strings.NewReader(fixture))
	if err != nil {
		t.Fatal(err)
	}
	srv := fakeapi.New(b, fakeapi.WithLogger(logging.Discard()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts.URL
}

func testConfig(server, path string) *config.Config {
	return &config.Config{
		Server:       server,
		Area:         "team",
		View:         item.ViewStoryTask,
		Order:        "prio",
		Path:         path,
		LogLevel:     "error",
		SelectionTTL: time.Hour,
		Timeout:      5 * time.Second,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Fatal("nil config should fail")
	}
	cfg := testConfig("http://localhost", t.TempDir())
	cfg.Area = ""
	if _, err := New(cfg, Options{Logger: logging.Discard()}); err == nil {
		t.Fatal("missing area should fail")
	}
}

func TestStartLoadsSnapshot(t *testing.T) {
	_, url := serve(t)
	s, err := New(testConfig(url, t.TempDir()), Options{Logger: logging.Discard(), KV: store.NewMemory()})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Wait(); err != ErrNotStarted {
		t.Fatalf("wait before start = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Store != nil || s.Push != nil {
		t.Fatalf("memory service should not open a disk store or a push client")
	}
	l := s.Controller.Rows()
	if got := len(l.Rows); got != 4 {
		t.Fatalf("rows = %d, %+v", got, l.Rows)
	}

	names, err := s.Epics(context.Background(), "Platform", "lo")
	if err != nil || len(names) != 1 || names[0] != "Login" {
		t.Fatalf("epics = %v, %v", names, err)
	}
}

func TestWatchFollowsPushAndStore(t *testing.T) {
	_, url := serve(t)
	dir := t.TempDir()
	s, err := New(testConfig(url, dir), Options{Logger: logging.Discard(), Watch: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, s.Push.Connected)

	// a change made by another client arrives through the push channel
	other := api.New(url, "team")
	if err := other.Update(ctx, item.Item{ID: 4, Type: item.TypeTask, Title: "renamed"}, true); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		r, ok := s.Controller.Rows().Row(4)
		return ok && r.Item.Title == "renamed"
	})

	// a selection stored by another process is picked up
	time.Sleep(50 * time.Millisecond)
	ds, err := store.Open(store.PathConfig(dir))
	if err != nil {
		t.Fatal(err)
	}
	slot := store.NewSelectionSlot(ds, "team", time.Hour, logging.Discard())
	if err := slot.Save([]item.TypedRef{{ID: 6, Type: item.TypeStory}}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		sel := s.Controller.Selection()
		return len(sel) == 1 && sel[0] == item.Ref{ID: 6, Role: item.RoleParent}
	})

	if err := s.Close(); err != nil {
		t.Fatalf("close = %v", err)
	}
}
