package storage

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeZip builds a zip archive from name→content pairs. Names ending in "/"
// become directory entries.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	w := zip.NewWriter(out)
	for name, content := range entries {
		if name[len(name)-1] == '/' {
			_, err := w.Create(name)
			require.NoError(t, err)
			continue
		}
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "basic.zip")
	writeZip(t, archive, map[string]string{
		"index.html":   "<html></html>",
		"css/":         "",
		"css/main.css": "body{}",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, ExtractArchive(archive, dest))

	data, err := os.ReadFile(filepath.Join(dest, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
	assert.FileExists(t, filepath.Join(dest, "css", "main.css"))
}

func TestExtractArchiveRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	writeZip(t, archive, map[string]string{
		"../escape.html": "gotcha",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	err := ExtractArchive(archive, dest)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "escape.html"))
}

func TestExtractArchiveRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	rar := filepath.Join(dir, "site.rar")
	require.NoError(t, os.WriteFile(rar, []byte("not a zip"), 0o644))

	err := ExtractArchive(rar, dir)
	assert.Error(t, err)
}
