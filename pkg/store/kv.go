package store

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Load when the key is absent or expired.
var ErrNotFound = errors.New("store: not found")

// KV is a small key-value store with per-key expiry. A zero ttl means the
// value never expires.
type KV interface {
	Save(key string, value []byte, ttl time.Duration) error
	Load(key string) ([]byte, error)
	Clear(key string) error
}

// Memory is an in-process KV, used by tests and one-shot invocations that
// should not touch disk.
type Memory struct {
	mu   sync.Mutex
	data map[string]memoryValue
	now  func() time.Time
}

type memoryValue struct {
	value   []byte
	expires time.Time
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]memoryValue), now: time.Now}
}

// SetClock replaces the time source used for expiry.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *Memory) Save(key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := memoryValue{value: append([]byte(nil), value...)}
	if ttl > 0 {
		v.expires = m.now().Add(ttl)
	}
	m.data[key] = v
	return nil
}

func (m *Memory) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !v.expires.IsZero() && !m.now().Before(v.expires) {
		delete(m.data, key)
		return nil, ErrNotFound
	}
	return append([]byte(nil), v.value...), nil
}

func (m *Memory) Clear(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
