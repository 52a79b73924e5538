package store

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"tableflip.dev/backlog/pkg/item"
)

const (
	// SelectionKey is the fixed name of the persisted selection slot.
	SelectionKey = "backlogtool-selectedItems"
	// SelectionTTL is how long a persisted selection survives.
	SelectionTTL = 24 * time.Hour
)

// SelectionKeyFor scopes the selection slot to an area. All views of the
// area share the slot.
func SelectionKeyFor(area string) string {
	area = strings.TrimSpace(area)
	if area == "" {
		return SelectionKey
	}
	return SelectionKey + "." + area
}

// SelectionSlot persists the selection of one area as a JSON array of
// {id, type} entries.
type SelectionSlot struct {
	kv     KV
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewSelectionSlot returns the slot for area in kv. A ttl of zero uses
// SelectionTTL.
func NewSelectionSlot(kv KV, area string, ttl time.Duration, logger *slog.Logger) *SelectionSlot {
	if ttl <= 0 {
		ttl = SelectionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SelectionSlot{kv: kv, key: SelectionKeyFor(area), ttl: ttl, logger: logger}
}

// Key is the storage key of the slot.
func (s *SelectionSlot) Key() string {
	return s.key
}

// Save replaces the slot content with entries.
func (s *SelectionSlot) Save(entries []item.TypedRef) error {
	if entries == nil {
		entries = []item.TypedRef{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := s.kv.Clear(s.key); err != nil {
		return err
	}
	return s.kv.Save(s.key, data, s.ttl)
}

// Load returns the persisted entries. An absent, expired or malformed slot
// yields an empty selection.
func (s *SelectionSlot) Load() []item.TypedRef {
	data, err := s.kv.Load(s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Debug("selection slot unreadable", "key", s.key, "err", err)
		}
		return []item.TypedRef{}
	}
	var entries []item.TypedRef
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Debug("selection slot malformed", "key", s.key, "err", err)
		return []item.TypedRef{}
	}
	out := make([]item.TypedRef, 0, len(entries))
	for _, e := range entries {
		if _, err := item.ParseType(string(e.Type)); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Clear removes the slot.
func (s *SelectionSlot) Clear() error {
	return s.kv.Clear(s.key)
}
