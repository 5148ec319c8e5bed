package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	fs := NewFileStore(path, zerolog.Nop())

	snap := sampleSnapshot()
	require.NoError(t, fs.Save(snap))

	got, found, err := fs.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, snap, got)

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), zerolog.Nop())

	_, found, err := fs.Load()
	require.NoError(t, err)
	assert.False(t, found, "a missing file is not an error, it just means seed")
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	fs := NewFileStore(path, zerolog.Nop())
	_, found, err := fs.Load()
	assert.True(t, found)
	assert.Error(t, err)
}

func TestFileStore_SaveReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	fs := NewFileStore(path, zerolog.Nop())

	require.NoError(t, fs.Save(sampleSnapshot()))

	next := sampleSnapshot()
	next.Songs[0].Downloads = 9999
	require.NoError(t, fs.Save(next))

	got, _, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, got.Songs[0].Downloads)
}

func TestFileStore_Check(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "data.json"), zerolog.Nop())
	assert.NoError(t, fs.Check())

	bad := NewFileStore("/nonexistent-root-dir/data.json", zerolog.Nop())
	assert.Error(t, bad.Check())
}
