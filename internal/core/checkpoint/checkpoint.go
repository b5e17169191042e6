// Package checkpoint persists the time up to which bookmarks have been
// fetched. The value lives in a small sidecar file owned by the local user,
// outside of any database file.
package checkpoint

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrMalformed is returned when the checkpoint file does not hold a number.
var ErrMalformed = errors.New("malformed checkpoint")

// Store reads and writes the last sync time.
type Store interface {
	// Read returns the stored time. ok is false when no checkpoint exists yet.
	Read() (t time.Time, ok bool, err error)
	// Write stores t and reports whether it did. Implementations never move
	// the checkpoint backward: an earlier t is ignored and wrote is false.
	Write(t time.Time) (wrote bool, err error)
}

// FileStore keeps the checkpoint as seconds since the epoch in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path. The file is created on
// the first Write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the per-user checkpoint location, name joined to the
// user's home directory.
func DefaultPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, name), nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// Read parses the checkpoint file. Both integer and fractional seconds are
// accepted; fractions are truncated to whole seconds.
func (s *FileStore) Read() (time.Time, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("reading checkpoint: %w", err)
	}

	t, err := parse(string(data))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %q: %w", ErrMalformed, s.path, err)
	}
	return t, true, nil
}

// Write stores t unless the current checkpoint is already later. The file is
// replaced atomically, and a malformed file is overwritten.
func (s *FileStore) Write(t time.Time) (bool, error) {
	current, ok, err := s.Read()
	if err != nil && !errors.Is(err, ErrMalformed) {
		return false, err
	}
	if ok && t.Before(current) {
		return false, nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating checkpoint dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return false, fmt.Errorf("creating checkpoint temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(format(t)); err != nil {
		_ = tmp.Close()
		return false, fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("closing checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return false, fmt.Errorf("replacing checkpoint: %w", err)
	}

	return true, nil
}

func parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty")
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("not a finite number: %s", s)
	}
	return time.Unix(int64(f), 0).UTC(), nil
}

func format(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + "\n"
}
