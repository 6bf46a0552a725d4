// Package file persists section documents as formatted JSON files, one file
// per section, inside a content directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	content "github.com/goliatone/go-content"
)

// TierName is reported by Store.Name.
const TierName = content.SourceFile

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for misses and watcher events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.Named("file")
		}
	}
}

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode fs.FileMode) Option {
	return func(s *Store) {
		s.fileMode = mode
	}
}

// Store is the file tier. It satisfies content.Tier.
type Store struct {
	dir      string
	fileMode fs.FileMode
	logger   *zap.Logger

	mu      sync.Mutex
	written map[content.Section]time.Time
}

// New returns a Store rooted at dir. An empty dir yields an unconfigured
// tier.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:      dir,
		fileMode: 0o644,
		logger:   zap.NewNop(),
		written:  map[content.Section]time.Time{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Name() string { return TierName }

// Configured reports whether a content directory was given.
func (s *Store) Configured() bool { return s.dir != "" }

// Dir returns the content directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file backing section.
func (s *Store) Path(section content.Section) string {
	return filepath.Join(s.dir, section.FileName())
}

// Get reads and decodes the section file. A missing file is Absent; a file
// that does not parse into the section shape is Malformed.
func (s *Store) Get(ctx context.Context, section content.Section) content.Lookup {
	if err := ctx.Err(); err != nil {
		return content.AbsentLookup(err)
	}
	path := s.Path(section)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return content.AbsentLookup(nil)
		}
		return content.AbsentLookup(err)
	}
	doc, err := content.Decode(section, raw, content.WithSource(path))
	if err != nil {
		return content.MalformedLookup(err)
	}
	return content.FoundLookup(doc)
}

// Set writes doc to a temporary file in the content directory and renames
// it over the section file. Failures that stem from the deployment (read-only
// filesystem, missing permissions, no directory to write into) wrap
// content.ErrReadOnly.
func (s *Store) Set(ctx context.Context, section content.Section, doc content.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Configured() {
		return content.ErrTierUnavailable
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("file: encode %s: %w", section, err)
	}
	payload = append(payload, '\n')

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return classify("create content dir", err)
	}
	target := s.Path(section)
	if err := writeAtomic(target, payload, s.fileMode); err != nil {
		return classify("write "+filepath.Base(target), err)
	}

	s.mu.Lock()
	s.written[section] = time.Now()
	s.mu.Unlock()
	return nil
}

func writeAtomic(target string, payload []byte, mode fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// IsReadOnly reports whether err means the filesystem cannot be written by
// this process.
func IsReadOnly(err error) bool {
	return errors.Is(err, syscall.EROFS) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.ENOTDIR)
}

func classify(op string, err error) error {
	if IsReadOnly(err) {
		return fmt.Errorf("file: %s: %w: %w", op, content.ErrReadOnly, err)
	}
	return fmt.Errorf("file: %s: %w", op, err)
}

// writtenRecently reports whether this Store itself wrote section within
// window.
func (s *Store) writtenRecently(section content.Section, window time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.written[section]
	return ok && time.Since(at) < window
}
