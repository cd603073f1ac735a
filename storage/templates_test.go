package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAvailableFiltersArchives(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basic.zip"), []byte("zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("txt"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.zip.d"), 0o755))

	store := NewTemplateStore(dir)
	names, err := store.ListAvailable()
	require.NoError(t, err)
	assert.Equal(t, []string{"basic.zip"}, names)
}

func TestListAvailableMissingDir(t *testing.T) {
	store := NewTemplateStore(filepath.Join(t.TempDir(), "nope"))
	names, err := store.ListAvailable()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSaveOverwrites(t *testing.T) {
	store := NewTemplateStore(t.TempDir())

	require.NoError(t, store.Save("basic.zip", strings.NewReader("v1")))
	require.NoError(t, store.Save("basic.zip", strings.NewReader("v2")))

	data, err := os.ReadFile(store.FilePath("basic.zip"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
	assert.True(t, store.Exists("basic.zip"))
}

func TestFilePathStaysInsideStore(t *testing.T) {
	store := NewTemplateStore("/srv/templates")
	assert.Equal(t, filepath.Join("/srv/templates", "basic.zip"), store.FilePath("../../etc/basic.zip"))
}

func TestDeleteToleratesAbsence(t *testing.T) {
	store := NewTemplateStore(t.TempDir())
	require.NoError(t, store.Save("basic.zip", strings.NewReader("zip")))

	require.NoError(t, store.Delete("basic.zip"))
	assert.False(t, store.Exists("basic.zip"))
	assert.NoError(t, store.Delete("basic.zip"))
}
