package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/goliatone/go-blockform/internal/filelock"
)

// Entry is a cached catalog and the time it was fetched.
type Entry struct {
	Catalog   Catalog   `json:"catalog"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store persists a single cache entry.
type Store interface {
	Load(ctx context.Context) (Entry, bool, error)
	Save(ctx context.Context, entry Entry) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the entry in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	entry *Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil {
		return Entry{}, false, nil
	}
	return *s.entry, true, nil
}

func (s *MemoryStore) Save(_ context.Context, entry Entry) error {
	s.mu.Lock()
	s.entry = &entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.entry = nil
	s.mu.Unlock()
	return nil
}

// FileStore keeps the entry as JSON on disk so it survives between CLI runs.
// Reads and writes go through a sidecar file lock.
type FileStore struct {
	path string
}

// NewFileStore stores the entry at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(context.Context) (Entry, bool, error) {
	data, err := filelock.LockAndRead(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("i18n: read cache: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// a corrupt cache is a miss
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (s *FileStore) Save(_ context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("i18n: encode cache: %w", err)
	}
	if err := filelock.LockAndWrite(s.path, data); err != nil {
		return fmt.Errorf("i18n: write cache: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(context.Context) error {
	err := filelock.WithLock(s.path, func() error {
		return os.Remove(s.path)
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("i18n: clear cache: %w", err)
	}
	return nil
}
