package matchdata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	// ErrStaleVersion is returned when a write names a snapshot version that
	// is no longer current.
	ErrStaleVersion = errors.New("match table changed since it was loaded")
	// ErrRowNotFound is returned for a row index outside the table.
	ErrRowNotFound = errors.New("match row not found")
)

// Edit describes one successful write to the store.
type Edit struct {
	Action string
	Row    int
	Label  string
}

// Edit actions.
const (
	ActionAppend  = "append"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionReplace = "replace"
	ActionClear   = "clear"
)

// EditRecorder is notified after every successful write.
type EditRecorder interface {
	RecordEdit(ctx context.Context, e Edit) error
}

// Store is the CSV file backing the dashboard. Reads are served from a parsed
// snapshot that is valid for exactly one version; every write, and every
// external change picked up by Refresh, bumps the version.
type Store struct {
	path     string
	logger   *slog.Logger
	recorder EditRecorder

	mu      sync.RWMutex
	version uint64
	cached  *Dataset
	stamp   fileStamp
}

type fileStamp struct {
	mod  time.Time
	size int64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithRecorder sets the recorder notified of writes.
func WithRecorder(r EditRecorder) Option {
	return func(s *Store) { s.recorder = r }
}

// NewStore returns a store backed by the CSV file at path. The file does not
// need to exist yet.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path, logger: slog.Default(), version: 1}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Version returns the current store version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns the parsed dataset for the current version. The returned
// value is shared and must not be modified.
func (s *Store) Snapshot(ctx context.Context) (*Dataset, error) {
	s.mu.RLock()
	if ds := s.cached; ds != nil && ds.Version == s.version {
		s.mu.RUnlock()
		return ds, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if ds := s.cached; ds != nil && ds.Version == s.version {
		return ds, nil
	}

	t, err := s.readTable()
	if err != nil {
		return nil, err
	}
	if st, err := s.statFile(); err == nil {
		s.stamp = st
	}
	ds, err := Parse(t)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	ds.Version = s.version
	for _, re := range ds.Rejected {
		s.logger.WarnContext(ctx, "skipping match row", "file", s.path, "row", re.Row+1, "error", re.Err)
	}
	s.logger.DebugContext(ctx, "loaded match table", "file", s.path, "matches", len(ds.Matches), "version", ds.Version)
	s.cached = ds
	return ds, nil
}

// Refresh bumps the version if the file changed behind the store's back.
// It reports whether the snapshot was invalidated.
func (s *Store) Refresh() bool {
	st, err := s.statFile()
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st == s.stamp {
		return false
	}
	s.stamp = st
	s.invalidateLocked()
	return true
}

// Append adds a match to the end of the table.
func (s *Store) Append(ctx context.Context, m Match) error {
	return s.mutate(ctx, 0, func(t *Table) (Edit, error) {
		t.AppendMatch(m)
		return Edit{Action: ActionAppend, Row: len(t.Rows) - 1, Label: m.Label()}, nil
	})
}

// Update overwrites the match at row. version must be the Version of the
// snapshot the caller edited.
func (s *Store) Update(ctx context.Context, version uint64, row int, m Match) error {
	return s.mutate(ctx, version, func(t *Table) (Edit, error) {
		return Edit{Action: ActionUpdate, Row: row, Label: m.Label()}, t.UpdateMatch(row, m)
	})
}

// Delete removes the match at row. version must be the Version of the
// snapshot the caller selected the row from.
func (s *Store) Delete(ctx context.Context, version uint64, row int) error {
	return s.mutate(ctx, version, func(t *Table) (Edit, error) {
		label := t.Cell(row, ColOpponent)
		return Edit{Action: ActionDelete, Row: row, Label: label}, t.DeleteRow(row)
	})
}

// Replace overwrites the whole table with the CSV read from r. The input
// must parse before anything is written.
func (s *Store) Replace(ctx context.Context, r io.Reader) error {
	in, err := ReadTable(r)
	if err != nil {
		return err
	}
	if _, err := Parse(in); err != nil {
		return err
	}
	return s.mutate(ctx, 0, func(t *Table) (Edit, error) {
		*t = *in
		return Edit{Action: ActionReplace, Row: -1, Label: fmt.Sprintf("%d rows", len(in.Rows))}, nil
	})
}

// Clear removes every match, keeping the header.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, 0, func(t *Table) (Edit, error) {
		n := len(t.Rows)
		t.Rows = nil
		return Edit{Action: ActionClear, Row: -1, Label: fmt.Sprintf("%d rows", n)}, nil
	})
}

// Export writes the raw table, including columns the loader ignores.
func (s *Store) Export(_ context.Context, w io.Writer) error {
	s.mu.RLock()
	t, err := s.readTable()
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return t.Write(w)
}

// mutate applies fn to a fresh read of the file and writes the result back.
// A non-zero version is checked against the current one first.
func (s *Store) mutate(ctx context.Context, version uint64, fn func(*Table) (Edit, error)) error {
	s.mu.Lock()
	if version != 0 && version != s.version {
		s.mu.Unlock()
		return ErrStaleVersion
	}
	t, err := s.readTable()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	e, err := fn(t)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.writeTable(t); err != nil {
		s.mu.Unlock()
		return err
	}
	s.invalidateLocked()
	if st, err := s.statFile(); err == nil {
		s.stamp = st
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "match table updated", "action", e.Action, "row", e.Row)
	if s.recorder != nil {
		if err := s.recorder.RecordEdit(ctx, e); err != nil {
			s.logger.WarnContext(ctx, "failed to record edit", "action", e.Action, "error", err)
		}
	}
	return nil
}

func (s *Store) invalidateLocked() {
	s.version++
	s.cached = nil
}

func (s *Store) readTable() (*Table, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Table{Header: DefaultHeader()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return ReadTable(bytes.NewReader(data))
}

// writeTable replaces the file atomically via a temp file in the same
// directory.
func (s *Store) writeTable(t *Table) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".matches-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := t.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) statFile() (fileStamp, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{mod: fi.ModTime(), size: fi.Size()}, nil
}
