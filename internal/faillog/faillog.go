// Package faillog persists identifiers that could not be resolved, one per
// line, so a run's failures can be retried by hand later.
package faillog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Writer flushes failed identifiers to a timestamped file in Dir.
type Writer struct {
	dir string
	now func() time.Time
}

// New creates a Writer targeting the given directory. An empty dir writes to
// the working directory.
func New(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Flush writes the identifiers to a new timestamped file and returns its
// path. An empty sequence is a no-op returning an empty path. The filename
// embeds the generation time with colons and periods replaced, so it never
// collides with a prior run's log at second granularity.
func (w *Writer) Flush(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}

	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(w.now().Format(time.RFC3339))
	path := filepath.Join(w.dir, fmt.Sprintf("failed-isbns-%s.txt", stamp))

	content := strings.Join(ids, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write failure log: %w", err)
	}
	return path, nil
}
