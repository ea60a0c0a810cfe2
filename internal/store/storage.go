package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/nakachan-ing/jmt-cli/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// Backend is the host key/value storage: whole string values by key.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Stamper is implemented by backends that know when a key last changed.
type Stamper interface {
	ModTime(key string) (t time.Time, ok bool, err error)
}

// OpenBackend picks the configured backend, creating the data directory.
func OpenBackend(config model.Config) (Backend, error) {
	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("❌ Failed to create data directory: %w", err)
	}
	switch config.Backend {
	case "sqlite":
		return OpenSQLiteBackend(filepath.Join(config.DataDir, "jmt.db"))
	default:
		return NewFileBackend(config.DataDir), nil
	}
}

// FileBackend keeps every key in its own `<key>.json` file under dir.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

func (b *FileBackend) Get(key string) (string, bool, error) {
	path := b.Path(key)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("❌ Failed to check %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("❌ Failed to read %s: %w", path, err)
	}
	return string(data), true, nil
}

// Set replaces the file atomically so a crash never leaves half a list.
func (b *FileBackend) Set(key, value string) error {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("❌ Failed to create data directory: %w", err)
	}
	path := b.Path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return fmt.Errorf("❌ Failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("❌ Failed to replace %s: %w", path, err)
	}
	return nil
}

func (b *FileBackend) ModTime(key string) (time.Time, bool, error) {
	info, err := os.Stat(b.Path(key))
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("❌ Failed to check %s: %w", b.Path(key), err)
	}
	return info.ModTime(), true, nil
}

// MemoryBackend is an in-process map, used by tests and dry runs.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string
	stamps map[string]time.Time
	// SetErr, when non-nil, is returned by every Set.
	SetErr error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: map[string]string{}, stamps: map[string]time.Time{}}
}

func (b *MemoryBackend) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SetErr != nil {
		return b.SetErr
	}
	b.values[key] = value
	b.stamps[key] = time.Now()
	return nil
}

func (b *MemoryBackend) ModTime(key string) (time.Time, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.stamps[key]
	return t, ok, nil
}
