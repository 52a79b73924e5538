package clone

import (
	"bytes"
	"context"
	"slices"
	"testing"

	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
	"tableflip.dev/backlog/pkg/runner/internal/runnertest"
)

func TestCloneWithChildren(t *testing.T) {
	env := runnertest.New(t)
	c := Clone{
		Service:      env.Service(t, item.ViewStoryTask),
		Printer:      printers.Printer{Out: &bytes.Buffer{}},
		Ref:          item.Ref{ID: runnertest.PasswordReset},
		WithChildren: true,
		Fields:       []item.Assignment{{Field: "title", Value: "Password change"}},
	}
	if err := c.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	titles := env.Titles(t, item.ViewStoryTask)
	for _, want := range []string{"Password change/Mail template", "Password change/Token expiry", "Password reset/Mail template"} {
		if !slices.Contains(titles, want) {
			t.Errorf("%q not in %v", want, titles)
		}
	}
	if n := env.Server.Count("cloneStory"); n != 1 {
		t.Fatalf("clone requests = %d", n)
	}
}

func TestCloneTaskUnsupported(t *testing.T) {
	env := runnertest.New(t)
	c := Clone{
		Service: env.Service(t, item.ViewStoryTask),
		Printer: printers.Printer{Out: &bytes.Buffer{}},
		Ref:     item.Ref{ID: runnertest.MailTemplate},
	}
	if err := c.Do(context.Background()); err == nil {
		t.Fatal("tasks cannot be cloned")
	}
}
