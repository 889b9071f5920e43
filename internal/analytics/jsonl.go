package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"salvo-backend/internal/model"
)

// JSONLWriter appends events to one file per day,
// <dir>/interactions_YYYY-MM-DD.jsonl, one JSON object per line.
type JSONLWriter struct {
	dir string
	now func() time.Time

	mu sync.Mutex
}

// NewJSONLWriter writes under dir, creating it on first use.
func NewJSONLWriter(dir string) *JSONLWriter {
	return &JSONLWriter{dir: dir, now: time.Now}
}

// FileFor returns the file an event written at t lands in.
func (w *JSONLWriter) FileFor(t time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("interactions_%s.jsonl", t.UTC().Format("2006-01-02")))
}

func (w *JSONLWriter) Publish(_ context.Context, evt model.SearchPerformed) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "encode search event")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.Wrap(err, "create analytics dir")
	}

	fpath := w.FileFor(w.now())
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", fpath)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return errors.Wrapf(err, "append to %s", fpath)
	}
	return nil
}
