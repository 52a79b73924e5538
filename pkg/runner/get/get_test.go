package get

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/logging"
	"tableflip.dev/backlog/pkg/printers"
	"tableflip.dev/backlog/pkg/runner/internal/runnertest"
	"tableflip.dev/backlog/pkg/store"
)

func init() {
	color.NoColor = true
}

func TestGetPrintsView(t *testing.T) {
	env := runnertest.New(t)
	var buf bytes.Buffer
	g := Get{Service: env.Service(t, item.ViewStoryTask), Printer: printers.Printer{Out: &buf}, Expand: true}
	if err := g.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Stories - 4 rows", "Password reset", "Token expiry", "Export CSV"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestGetPrintsSelectedIDs(t *testing.T) {
	env := runnertest.New(t)
	slot := store.NewSelectionSlot(env.KV, "team", 0, logging.Discard())
	// the theme entry selects its stories in the story-task view
	if err := slot.Save([]item.TypedRef{
		{ID: runnertest.SingleSignOn, Type: item.TypeStory},
		{ID: runnertest.Mobile, Type: item.TypeTheme},
	}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	g := Get{Service: env.Service(t, item.ViewStoryTask), Printer: printers.Printer{Out: &buf}, IDs: true}
	if err := g.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "6,12\n" {
		t.Fatalf("ids = %q", got)
	}

	buf.Reset()
	g = Get{Service: env.Service(t, item.ViewStoryTask), Printer: printers.Printer{Out: &buf, Format: printers.FormatJSON}, IDs: true}
	if err := g.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); !strings.Contains(got, `"type": "parent"`) {
		t.Fatalf("json ids = %s", got)
	}
}

func TestGetToggleUnknownGroup(t *testing.T) {
	env := runnertest.New(t)
	g := Get{Service: env.Service(t, item.ViewStoryTask), Printer: printers.Printer{Out: &bytes.Buffer{}}, Toggle: []int64{runnertest.MailTemplate}}
	if err := g.Do(context.Background()); err == nil {
		t.Fatal("a task is not a group")
	}
}
