package serve

import (
	"bytes"
	"context"
	"testing"
	"time"

	"tableflip.dev/backlog/pkg/api"
	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/logging"
)

func TestServeDemo(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan string, 1)
	var out bytes.Buffer
	s := Serve{
		Addr:   "127.0.0.1:0",
		Prefix: "/backlogtool",
		Area:   "demo",
		Logger: logging.Discard(),
		Out:    &out,
		Ready:  func(base string) { ready <- base },
	}
	done := make(chan error, 1)
	go func() { done <- s.Do(ctx) }()

	var base string
	select {
	case base = <-ready:
	case err := <-done:
		t.Fatalf("serve stopped: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not start")
	}

	snap, err := api.New(base, "demo").Fetch(ctx, item.ViewThemeEpic, "prio")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Parents) != 2 || snap.Area.Name != "demo" {
		t.Fatalf("snapshot = %+v", snap)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeMissingFixture(t *testing.T) {
	s := Serve{Addr: "127.0.0.1:0", Fixture: "testdata/nope.yaml", Logger: logging.Discard(), Out: &bytes.Buffer{}}
	if err := s.Do(context.Background()); err == nil {
		t.Fatal("missing fixture should fail")
	}
}
