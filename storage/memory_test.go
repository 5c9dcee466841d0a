package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageSetGetDelete(t *testing.T) {
	m := NewMemoryStorage()

	_, ok := m.Get("missing")
	assert.False(t, ok)

	require.NoError(t, m.Set("k", "v"))
	got, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	require.NoError(t, m.Delete("k"))
	_, ok = m.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStorageWatchFiresOnChange(t *testing.T) {
	m := NewMemoryStorage()

	var seen []string
	cancel := m.Watch("k", func(v string) { seen = append(seen, v) })
	defer cancel()

	require.NoError(t, m.Set("k", "one"))
	require.NoError(t, m.Set("k", "one")) // unchanged, no notification
	require.NoError(t, m.Set("k", "two"))
	require.NoError(t, m.Set("other", "x")) // different key

	assert.Equal(t, []string{"one", "two"}, seen)
}

func TestMemoryStorageWatchCancel(t *testing.T) {
	m := NewMemoryStorage()

	calls := 0
	cancel := m.Watch("k", func(string) { calls++ })
	require.NoError(t, m.Set("k", "one"))
	cancel()
	require.NoError(t, m.Set("k", "two"))

	assert.Equal(t, 1, calls)
}

func TestFileStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	defer fs.Close()

	require.NoError(t, fs.Set("clinicmock:users", `[{"id":"u1"}]`))
	got, ok := fs.Get("clinicmock:users")
	require.True(t, ok)
	assert.Equal(t, `[{"id":"u1"}]`, got)

	// keys map to sanitized file names
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))

	require.NoError(t, fs.Delete("clinicmock:users"))
	_, ok = fs.Get("clinicmock:users")
	assert.False(t, ok)
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Set("k", "persisted"))
	fs.Close()

	fs2, err := NewFileStorage(dir)
	require.NoError(t, err)
	defer fs2.Close()

	got, ok := fs2.Get("k")
	require.True(t, ok)
	assert.Equal(t, "persisted", got)
}

func TestFileStorageWatch(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewFileStorage(dir)
	require.NoError(t, err)
	defer writer.Close()
	reader, err := NewFileStorage(dir)
	require.NoError(t, err)
	defer reader.Close()

	seen := make(chan string, 1)
	cancel := reader.Watch("k", func(v string) { seen <- v })
	defer cancel()

	require.NoError(t, writer.Set("k", "hello"))

	select {
	case v := <-seen:
		assert.Equal(t, "hello", v)
	case <-time.After(2 * time.Second):
		t.Fatal("watch never fired across instances")
	}
}
