package store

import (
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"

	"tableflip.dev/backlog/pkg/item"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func stores(t *testing.T, clock *fakeClock) map[string]KV {
	disk, err := Open(PathConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	disk.SetClock(clock.Now)
	mem := NewMemory()
	mem.SetClock(clock.Now)
	return map[string]KV{"disk": disk, "memory": mem}
}

func TestKVExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	for name, kv := range stores(t, clock) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Load("missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := kv.Save("k", []byte("v"), time.Hour); err != nil {
				t.Fatalf("save: %v", err)
			}
			if got, err := kv.Load("k"); err != nil || string(got) != "v" {
				t.Fatalf("load = %q, %v", got, err)
			}
			clock.now = clock.now.Add(time.Hour)
			if _, err := kv.Load("k"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected expiry, got %v", err)
			}
			if err := kv.Clear("k"); err != nil {
				t.Fatalf("clear of absent key: %v", err)
			}
		})
	}
}

func TestSelectionSlotMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":     `{{{`,
		"wrong shape":  `{"id":1}`,
		"unknown type": `[{"id":1,"type":"galaxy"}]`,
		"null":         `null`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			kv := NewMemory()
			slot := NewSelectionSlot(kv, "Main", 0, nil)
			if err := kv.Save(slot.Key(), []byte(raw), time.Hour); err != nil {
				t.Fatalf("save: %v", err)
			}
			got := slot.Load()
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil selection, got %#v", got)
			}
		})
	}
}

func TestSelectionSlotStringIDs(t *testing.T) {
	kv := NewMemory()
	slot := NewSelectionSlot(kv, "Main", 0, nil)
	_ = kv.Save(slot.Key(), []byte(`[{"id":"12","type":"story"}]`), time.Hour)
	got := slot.Load()
	if len(got) != 1 || got[0].ID != 12 || got[0].Type != item.TypeStory {
		t.Fatalf("unexpected %#v", got)
	}
}

func TestSelectionSlotScopedByArea(t *testing.T) {
	kv := NewMemory()
	a := NewSelectionSlot(kv, "A", 0, nil)
	b := NewSelectionSlot(kv, "B", 0, nil)
	if err := a.Save([]item.TypedRef{{ID: 1, Type: item.TypeTask}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(b.Load()) != 0 {
		t.Fatalf("area B must not see area A's selection")
	}
	if err := a.Clear(); err != nil || len(a.Load()) != 0 {
		t.Fatalf("clear failed: %v", err)
	}
}

func TestSelectionSlotExpiresAfterADay(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	disk, err := Open(PathConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	disk.SetClock(clock.Now)
	slot := NewSelectionSlot(disk, "Main", 0, nil)
	if err := slot.Save([]item.TypedRef{{ID: 3, Type: item.TypeEpic}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	clock.now = clock.now.Add(23 * time.Hour)
	if len(slot.Load()) != 1 {
		t.Fatalf("selection should survive 23h")
	}
	clock.now = clock.now.Add(time.Hour)
	if len(slot.Load()) != 0 {
		t.Fatalf("selection should expire after 24h")
	}
}

func TestSelectionSlotRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		slot := NewSelectionSlot(NewMemory(), "Main", 0, nil)
		n := rapid.IntRange(0, 10).Draw(t, "n")
		want := make([]item.TypedRef, 0, n)
		for i := 0; i < n; i++ {
			want = append(want, item.TypedRef{
				ID:   rapid.Int64Range(1, 1<<40).Draw(t, "id"),
				Type: rapid.SampledFrom(item.AllTypes()).Draw(t, "type"),
			})
		}
		if err := slot.Save(want); err != nil {
			t.Fatalf("save: %v", err)
		}
		got := slot.Load()
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})
}
