package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a Store persisted to a single MessagePack file. Every write
// rewrites the file through a temporary sibling and a rename, so a crash
// leaves either the old or the new contents.
type FileStore struct {
	path       string
	mem        *MemoryStore
	serializer *MsgPackSerializer
	mu         sync.Mutex
}

// OpenFileStore loads path if it exists. A missing file is an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	store := &FileStore{
		path:       path,
		mem:        NewMemoryStore(),
		serializer: NewMsgPackSerializer(),
	}

	if err := store.load(); err != nil {
		store.mem.Close()
		return nil, err
	}
	return store, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}

	var snapshot map[string][]byte
	if err := s.serializer.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	s.mem.Restore(snapshot)
	return nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get retrieves a value.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.mem.Get(ctx, key)
}

// Set stores a value and flushes the file.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mem.Set(ctx, key, value); err != nil {
		return err
	}
	return s.flush()
}

// Delete removes a key and flushes the file.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mem.Delete(ctx, key); err != nil {
		return err
	}
	return s.flush()
}

// Close releases the in-memory copy. The file is already up to date.
func (s *FileStore) Close() error {
	return s.mem.Close()
}

func (s *FileStore) flush() error {
	data, err := s.serializer.Marshal(s.mem.Snapshot())
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
