package attachment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "attachments"), logrus.New())
	require.NoError(t, err)
	return store
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestMaterializeCopiesBytes(t *testing.T) {
	store := newTestStore(t)
	src := writeSource(t, "report.pdf", "pdf bytes")

	ref, err := store.Materialize(src, "report.pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestMaterializeSameNameReturnsExistingCopy(t *testing.T) {
	store := newTestStore(t)
	src := writeSource(t, "report.pdf", "original")

	first, err := store.Materialize(src, "report.pdf")
	require.NoError(t, err)

	// Dedup is by name, not content: the second call must not recopy.
	changed := writeSource(t, "report2.pdf", "changed")
	second, err := store.Materialize(changed, "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, listFiles(t, store.Dir()), 1)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestMaterializeMissingSource(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Materialize(filepath.Join(t.TempDir(), "gone.txt"), "gone.txt")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, listFiles(t, store.Dir()))
}

func TestSweepUnusedKeepsReferencedFiles(t *testing.T) {
	store := newTestStore(t)

	keepRef, err := store.Materialize(writeSource(t, "keep.txt", "keep"), "keep.txt")
	require.NoError(t, err)
	_, err = store.Materialize(writeSource(t, "orphan.txt", "orphan"), "orphan.txt")
	require.NoError(t, err)

	tasks := []model.Task{
		{Title: "t", Attachments: []model.Attachment{{Name: "keep.txt", Reference: keepRef}}},
	}
	require.NoError(t, store.SweepUnused(tasks))

	assert.Equal(t, []string{"keep.txt"}, listFiles(t, store.Dir()))
}

func TestSweepUnusedWithNoTasksClearsStore(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Materialize(writeSource(t, "a.txt", "a"), "a.txt")
	require.NoError(t, err)

	require.NoError(t, store.SweepUnused(nil))
	assert.Empty(t, listFiles(t, store.Dir()))
}
