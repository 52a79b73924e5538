package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/peterbourgon/diskv/v3"
)

const slotDir = "slots"

// DiskStore is a KV backed by diskv. Each value is written inside an envelope
// carrying its expiry, and expired values are erased on read.
type DiskStore struct {
	d        *diskv.Diskv
	basePath string
	now      func() time.Time
}

type envelope struct {
	Value   []byte    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

// Open creates a DiskStore rooted at cfg.BasePath().
func Open(cfg Config) (*DiskStore, error) {
	if cfg == nil {
		return nil, errors.New("store: config required")
	}
	basePath := strings.TrimSpace(cfg.BasePath())
	if basePath == "" {
		return nil, errors.New("store: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &DiskStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,

		// other invocations rewrite slots; reads must hit disk
		CacheSizeMax: 0,
	}), basePath: basePath, now: time.Now}, nil
}

// SetClock replaces the time source used for expiry.
func (s *DiskStore) SetClock(now func() time.Time) {
	s.now = now
}

// BasePath is the directory the store writes to.
func (s *DiskStore) BasePath() string {
	return s.basePath
}

func (s *DiskStore) Save(key string, value []byte, ttl time.Duration) error {
	env := envelope{Value: value}
	if ttl > 0 {
		env.Expires = s.now().Add(ttl).UTC()
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

func (s *DiskStore) Load(key string) ([]byte, error) {
	data, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", key, err)
	}
	if !env.Expires.IsZero() && !s.now().Before(env.Expires) {
		_ = s.Clear(key)
		return nil, ErrNotFound
	}
	return env.Value, nil
}

func (s *DiskStore) Clear(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys, expired or not.
func (s *DiskStore) Keys() []string {
	cancel := make(chan struct{})
	defer close(cancel)
	var keys []string
	for key := range s.d.Keys(cancel) {
		keys = append(keys, key)
	}
	return keys
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{slotDir},
		FileName: base64.RawURLEncoding.EncodeToString([]byte(key)),
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return keyFromFileName(pathKey.FileName)
}

func keyFromFileName(name string) string {
	key, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return ""
	}
	return string(key)
}
