package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"tableflip.dev/backlog/pkg/fakeapi"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/logging"
)

type env struct {
	srv  *fakeapi.Server
	args []string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BACKLOG_CONFIG_PATH", "")

	srv := fakeapi.New(fakeapi.Demo("team"), fakeapi.WithLogger(logging.Discard()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return &env{
		srv: srv,
		args: []string{
			"--server", ts.URL,
			"--area", "team",
			"--path", t.TempDir(),
			"--log-level", "error",
		},
	}
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, e.args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSelectIsStoredAcrossInvocations(t *testing.T) {
	e := newEnv(t)

	if _, err := e.run(t, "select", "4", "5"); err != nil {
		t.Fatal(err)
	}
	out, err := e.run(t, "get", "--ids")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != "4,5" {
		t.Fatalf("ids = %q", got)
	}

	if _, err := e.run(t, "select", "--clear"); err != nil {
		t.Fatal(err)
	}
	out, err = e.run(t, "get", "--ids")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != "" {
		t.Fatalf("ids after clear = %q", got)
	}
}

func TestEditSavesFields(t *testing.T) {
	e := newEnv(t)

	if _, err := e.run(t, "edit", "child:4", "--set", "title=Mail body"); err != nil {
		t.Fatal(err)
	}
	parents, err := e.srv.Backlog().Read(item.ViewStoryTask, "prio")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range parents {
		for _, c := range p.Children {
			if c.ID == 4 && c.Title != "Mail body" {
				t.Fatalf("title = %q", c.Title)
			}
		}
	}
}

func TestGetPrintsRows(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "get", "--expand", "-k")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Password reset", "Mail template", "Offline mode"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestBadArguments(t *testing.T) {
	e := newEnv(t)

	tests := map[string][]string{
		"bad view":       {"get", "--view", "home"},
		"bad row":        {"select", "story:x"},
		"missing row":    {"edit", "--set", "title=x"},
		"bad assignment": {"edit", "4", "--set", "title"},
		"task no story":  {"create", "task"},
		"bad suggestion": {"suggest", "tasks"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := e.run(t, args...); err == nil {
				t.Fatalf("%v should fail", args)
			}
		})
	}
}
