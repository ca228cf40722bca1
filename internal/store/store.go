package store

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todoapp-go/internal/logging"
	"github.com/nibzard/todoapp-go/internal/todo"
	"github.com/nibzard/todoapp-go/internal/utils"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// ParseBackend parses a backend name. An empty string means BackendFile.
func ParseBackend(s string) (Backend, error) {
	if s == "" {
		return BackendFile, nil
	}
	v, ok := utils.OneOf(s, string(BackendFile), string(BackendSQLite))
	if !ok {
		return "", fmt.Errorf("invalid store %q, must be one of: file, sqlite", s)
	}
	return Backend(v), nil
}

// Store is a task collection store that owns resources.
type Store interface {
	todo.Store
	// Path returns the location of the underlying data.
	Path() string
	Close() error
}

// Options configures Open.
type Options struct {
	Backend  Backend
	Path     string
	FileLock bool // file backend only
	Logger   *log.Logger
}

// Open opens the store selected by opts.Backend.
func Open(opts Options) (Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Path, opts.FileLock, logger)
	case BackendSQLite:
		return OpenSQLite(opts.Path, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
