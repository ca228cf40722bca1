package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/nibzard/todoapp-go/internal/datadir"
	"github.com/nibzard/todoapp-go/internal/logging"
	"github.com/nibzard/todoapp-go/internal/todo"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStore keeps the collection in a JSON file.
type FileStore struct {
	path   string
	flk    *flock.Flock // nil when locking is disabled
	logger *log.Logger
}

// NewFileStore returns a store for path. When lock is true every
// load-mutate-save cycle holds an exclusive flock on the path's lock file.
func NewFileStore(path string, lock bool, logger *log.Logger) (*FileStore, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &FileStore{path: path, logger: logger}
	if lock {
		s.flk = flock.New(datadir.LockPath(path))
	}
	return s, nil
}

// Path returns the data file path.
func (s *FileStore) Path() string {
	return s.path
}

// Lock acquires the cross-process lock, retrying until ctx is done.
func (s *FileStore) Lock(ctx context.Context) (func() error, error) {
	if s.flk == nil {
		return func() error { return nil }, nil
	}
	locked, err := s.flk.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.flk.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: not acquired", s.flk.Path())
	}
	return s.flk.Unlock, nil
}

// Load reads the collection. A missing file is created holding an empty
// array first. Unreadable or malformed content yields an empty collection.
func (s *FileStore) Load(ctx context.Context) ([]todo.Task, error) {
	if err := s.ensureFile(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn("read data file, using empty collection", "path", s.path, "err", err)
		return []todo.Task{}, nil
	}

	res := todo.ValidateData(data)
	if !res.Valid {
		s.logger.Warn("invalid data file, using empty collection", "path", s.path, "err", res.Err())
		return []todo.Task{}, nil
	}
	for _, w := range res.Warnings {
		s.logger.Debug("data file warning", "path", s.path, "warning", w)
	}

	var tasks []todo.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		s.logger.Warn("parse data file, using empty collection", "path", s.path, "err", err)
		return []todo.Task{}, nil
	}
	if tasks == nil {
		tasks = []todo.Task{}
	}
	return tasks, nil
}

// Save writes the collection with 2-space indentation, replacing the file atomically.
func (s *FileStore) Save(ctx context.Context, tasks []todo.Task) error {
	if tasks == nil {
		tasks = []todo.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) ensureFile() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat data file: %w", err)
	}
	if err := writeFileAtomic(s.path, []byte("[]\n"), 0o644); err != nil {
		return fmt.Errorf("create data file: %w", err)
	}
	s.logger.Info("created data file", "path", s.path)
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it and renames it over path, then syncs the directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
