package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"salvo-backend/internal/model"
)

// ErrDuplicateID is returned by Append when the id is already registered.
var ErrDuplicateID = errors.New("catalog: duplicate id")

// ErrInvalidRecord is returned by Append for records failing CheckNew.
var ErrInvalidRecord = errors.New("catalog: invalid record")

// FileSource reads the catalog from a sellers.json document on local disk.
// Every Snapshot call re-reads the file.
type FileSource struct {
	path string
	mu   sync.Mutex // serialises Append
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the backing file path.
func (s *FileSource) Path() string {
	return s.path
}

// Snapshot reads the catalog. A missing file yields an empty snapshot.
func (s *FileSource) Snapshot(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	return Parse(data)
}

// Append registers rec at the end of the catalog. The file is rewritten
// through a temp file and rename so readers never see a partial document.
func (s *FileSource) Append(ctx context.Context, rec model.BusinessRecord) error {
	if ok, reason := CheckNew(rec); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, reason)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, e := range snap.Entries() {
		existing, err := e.Decode()
		if err == nil && existing.ID == rec.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
	}

	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	next, err := snap.with(rec)
	if err != nil {
		return err
	}
	data, err := next.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".sellers-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
