package store

import (
	"context"
	"testing"
	"time"
)

func TestDiskStoreWatchEmitsKeyChanges(t *testing.T) {
	s, err := Open(PathConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before writing.
	time.Sleep(50 * time.Millisecond)

	key := SelectionKeyFor("Main")
	if err := s.Save(key, []byte(`[]`), time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventInvalidated {
				continue
			}
			if evt.Key != key {
				t.Fatalf("expected key %q, got %q", key, evt.Key)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for key change event")
		}
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	th := newEventThrottle(20 * time.Millisecond)
	defer th.Stop()

	got := make(chan Event, 8)
	send := func(ev Event) { got <- ev }
	for i := 0; i < 5; i++ {
		th.Enqueue(Event{Type: EventKeyChanged, Key: "a"}, send)
	}
	th.Enqueue(Event{Type: EventInvalidated}, send)
	th.Enqueue(Event{Type: EventInvalidated}, send)

	deadline := time.After(time.Second)
	seen := map[EventType]int{}
	for seen[EventKeyChanged]+seen[EventInvalidated] < 2 {
		select {
		case ev := <-got:
			seen[ev.Type]++
		case <-deadline:
			t.Fatalf("timed out, seen %v", seen)
		}
	}
	select {
	case ev := <-got:
		t.Fatalf("unexpected extra event %+v", ev)
	case <-time.After(60 * time.Millisecond):
	}
	if seen[EventKeyChanged] != 1 || seen[EventInvalidated] != 1 {
		t.Fatalf("expected one of each, got %v", seen)
	}
}
