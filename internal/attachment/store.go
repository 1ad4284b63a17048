package attachment

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"tasklist/internal/model"
)

// ErrUnavailable reports that an attachment source vanished or could not be
// read while materializing. Existing task data is unaffected.
var ErrUnavailable = errors.New("attachment source unavailable")

// Store keeps durable copies of attached files under a single directory.
// De-duplication is by display name only, not content hash: a file that
// already exists under the suggested name counts as materialized.
type Store struct {
	dir string
	log *logrus.Logger

	// mu serializes sweeps against copies so a sweep never deletes a file
	// another command is materializing.
	mu sync.Mutex
}

func NewStore(dir string, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Dir returns the directory holding materialized files.
func (s *Store) Dir() string {
	return s.dir
}

// Materialize copies the file at src into the store under name and returns
// the stable local path. Calling it again with the same name returns the
// existing copy without touching the source.
func (s *Store) Materialize(src, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dest := filepath.Join(s.dir, filepath.Base(name))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, src)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create attachment copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("%w: %s", ErrUnavailable, src)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("close attachment copy: %w", err)
	}
	return dest, nil
}

// SweepUnused deletes every stored file not referenced by any attachment of
// the given tasks. Failures are logged per file and the sweep continues;
// this is best-effort maintenance, triggered explicitly, never on a timer.
func (s *Store) SweepUnused(allTasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := make(map[string]struct{})
	for _, task := range allTasks {
		for _, att := range task.Attachments {
			used[att.Reference] = struct{}{}
		}
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read attachment dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if _, ok := used[path]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.log.Warnf("sweep: remove %s: %v", path, err)
			continue
		}
		s.log.Debugf("sweep: removed %s", path)
	}
	return nil
}
