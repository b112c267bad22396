package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/rustybrain/internal/brainpath"
	"github.com/nibzard/rustybrain/internal/logging"
)

// Store reads and writes the task list file.
type Store struct {
	path          string
	backupCorrupt bool
	logger        *log.Logger
	now           func() time.Time

	// corrupt holds the raw bytes of an unreadable store seen by the last
	// Load, so the first Save can set them aside.
	corrupt []byte
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCorruptBackup controls whether an unreadable store is copied aside
// before being overwritten.
func WithCorruptBackup(enabled bool) StoreOption {
	return func(s *Store) {
		s.backupCorrupt = enabled
	}
}

// WithClock sets the clock used to name corrupt backups.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a store backed by the file at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:          path,
		backupCorrupt: true,
		logger:        logging.Discard(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the task list. A missing, empty or unparseable file yields an
// empty list. A file that exists but cannot be read is an error, and the
// caller must not save over it. Load never creates or modifies the file.
func (s *Store) Load() (List, error) {
	s.corrupt = nil

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("store file does not exist", "path", s.path)
			return List{}, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}

	list, err := Decode(data)
	if err != nil {
		s.logger.Warn("store file is unreadable, starting with an empty list", "path", s.path, "err", err)
		s.corrupt = data
		return List{}, nil
	}

	s.logger.Debug("loaded store", "path", s.path, "tasks", len(list))
	return list, nil
}

// Save writes the list to the store file, replacing it atomically.
func (s *Store) Save(list List) error {
	if list == nil {
		list = List{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	data = append(data, '\n')

	if s.corrupt != nil && s.backupCorrupt {
		backup := brainpath.CorruptBackupPath(s.path, s.now())
		if err := os.WriteFile(backup, s.corrupt, 0644); err != nil {
			return fmt.Errorf("back up unreadable store: %w", err)
		}
		s.logger.Warn("backed up unreadable store", "path", backup)
	}
	s.corrupt = nil

	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}

	s.logger.Debug("saved store", "path", s.path, "tasks", len(list))
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place so readers never observe a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	name := tmp.Name()
	tmp = nil
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
