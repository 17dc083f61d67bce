package localcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileBackend stores every entry in a single CBOR-encoded map on disk.
// Each write replaces the file atomically through a temp file and rename,
// so a crash leaves either the previous or the new snapshot.
type FileBackend struct {
	path string

	mu      sync.Mutex
	loaded  bool
	entries map[string][]byte
}

// NewFileBackend returns a backend persisting to path. The parent directory
// is created on first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the snapshot file location.
func (f *FileBackend) Path() string { return f.path }

// load reads the snapshot once. Caller holds f.mu.
func (f *FileBackend) load() error {
	if f.loaded {
		return nil
	}
	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.entries = make(map[string][]byte)
	case err != nil:
		return fmt.Errorf("read cache file: %w", err)
	default:
		entries := make(map[string][]byte)
		if err := cbor.Unmarshal(data, &entries); err != nil {
			// A corrupt snapshot is treated as empty; the next write replaces it.
			entries = make(map[string][]byte)
		}
		f.entries = entries
	}
	f.loaded = true
	return nil
}

// flush writes the snapshot. Caller holds f.mu.
func (f *FileBackend) flush() error {
	data, err := cbor.Marshal(f.entries)
	if err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return nil, err
	}
	v, ok := f.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return slices.Clone(v), nil
}

func (f *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	f.entries[key] = slices.Clone(value)
	return f.flush()
}

func (f *FileBackend) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := f.entries[k]; ok {
			delete(f.entries, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.flush()
}

func (f *FileBackend) Close() error { return nil }

var _ Backend = (*FileBackend)(nil)
