package remove

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/backlog/pkg/dispatch"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
	"tableflip.dev/backlog/pkg/runner/internal/runnertest"
)

func init() {
	color.NoColor = true
}

func TestRemove(t *testing.T) {
	env := runnertest.New(t)
	var asked string
	var buf bytes.Buffer
	r := Remove{
		Service: env.Service(t, item.ViewStoryTask),
		Printer: printers.Printer{Out: &buf},
		Ref:     item.Ref{ID: runnertest.SingleSignOn},
		Confirm: dispatch.ConfirmFunc(func(q string) (bool, error) {
			asked = q
			return false, nil
		}),
	}
	if err := r.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if asked != "Are you sure you want to delete this story?" || env.Server.Count("deletestory") != 0 {
		t.Fatalf("declined delete: asked %q, requests %v", asked, env.Server.Requests())
	}
	if !strings.Contains(buf.String(), "kept parent:6") {
		t.Fatalf("output:\n%s", buf.String())
	}

	r.Confirm = nil
	buf.Reset()
	if err := r.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, title := range env.Titles(t, item.ViewStoryTask) {
		if title == "Single sign-on" {
			t.Fatalf("story still served")
		}
	}
	if !strings.Contains(buf.String(), "deleted parent:6") {
		t.Fatalf("output:\n%s", buf.String())
	}
}

func TestRemoveConflictKeepsRow(t *testing.T) {
	env := runnertest.New(t)
	env.Server.FailNext("deletetask", 409, "Conflict")
	r := Remove{
		Service: env.Service(t, item.ViewStoryTask),
		Printer: printers.Printer{Out: &bytes.Buffer{}},
		Ref:     item.Ref{ID: runnertest.ExportCSV},
	}
	err := r.Do(context.Background())
	if err == nil || err.Error() != "Conflict" {
		t.Fatalf("err = %v", err)
	}
	alert, ok := r.Service.Controller.LastAlert()
	if !ok || alert.Message != "Conflict" {
		t.Fatalf("alert = %+v", alert)
	}
}

func TestRemoveStructuredOutput(t *testing.T) {
	env := runnertest.New(t)
	var buf bytes.Buffer
	r := Remove{
		Service: env.Service(t, item.ViewStoryTask),
		Printer: printers.Printer{Out: &buf, Format: printers.FormatJSON},
		Ref:     item.Ref{ID: runnertest.SingleSignOn},
	}
	if err := r.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "deleted") || !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("output:\n%s", out)
	}
}
