package complete

import (
	"bytes"
	"context"
	"testing"

	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
	"tableflip.dev/backlog/pkg/runner/internal/runnertest"
)

func TestComplete(t *testing.T) {
	env := runnertest.New(t)
	s := env.Service(t, item.ViewStoryTask)
	tests := []struct {
		kind, theme, term string
		format            printers.Format
		want              string
	}{
		{Themes, "", "", printers.FormatPretty, "Platform\nMobile\n"},
		{Epics, "Platform", "b", printers.FormatPretty, "Billing\n"},
		{Epics, "Mobile", "zz", printers.FormatJSON, "[]\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		c := Complete{Service: s, Printer: printers.Printer{Out: &buf, Format: tt.format}, Kind: tt.kind, Theme: tt.theme, Term: tt.term}
		if err := c.Do(context.Background()); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != tt.want {
			t.Errorf("%s %q = %q, want %q", tt.kind, tt.term, got, tt.want)
		}
	}
	if err := (&Complete{Service: s, Kind: "stories"}).Do(context.Background()); err == nil {
		t.Fatal("unknown kind should fail")
	}
}
