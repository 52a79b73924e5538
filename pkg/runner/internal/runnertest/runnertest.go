// Package runnertest starts a demo backlog server and a client service on it
// for runner tests.
package runnertest

import (
	"net/http/httptest"
	"testing"
	"time"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/config"
	"tableflip.dev/backlog/pkg/fakeapi"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/logging"
	"tableflip.dev/backlog/pkg/store"
)

// Demo row ids, in the order fakeapi.Demo creates them.
const (
	Platform      int64 = 1
	Login         int64 = 2
	PasswordReset int64 = 3
	MailTemplate  int64 = 4
	TokenExpiry   int64 = 5
	SingleSignOn  int64 = 6
	Billing       int64 = 7
	Invoices      int64 = 8
	ExportCSV     int64 = 9
	Mobile        int64 = 10
	Sync          int64 = 11
	OfflineMode   int64 = 12
)

// Env is one demo server.
type Env struct {
	Server *fakeapi.Server
	URL    string
	KV     store.KV
}

// New serves fakeapi.Demo("team") until the test ends.
func New(t *testing.T) *Env {
	t.Helper()
	srv := fakeapi.New(fakeapi.Demo("team"), fakeapi.WithLogger(logging.Discard()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return &Env{Server: srv, URL: ts.URL, KV: store.NewMemory()}
}

// Service returns a client of the server for view. Services of one Env share
// their stored selection.
func (e *Env) Service(t *testing.T, view item.View) *app.Service {
	t.Helper()
	cfg := &config.Config{
		Server:  e.URL,
		Area:    "team",
		View:    view,
		Order:   "prio",
		Timeout: 5 * time.Second,
	}
	s, err := app.New(cfg, app.Options{Logger: logging.Discard(), KV: e.KV})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Titles lists the parent titles of the server's view, with the child titles
// after a slash.
func (e *Env) Titles(t *testing.T, view item.View) []string {
	t.Helper()
	parents, err := e.Server.Backlog().Read(view, "prio")
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, p := range parents {
		out = append(out, p.Title)
		for _, c := range p.Children {
			out = append(out, p.Title+"/"+c.Title)
		}
	}
	return out
}
