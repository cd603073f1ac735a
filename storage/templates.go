package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArchiveExt is the only archive format the template store accepts.
const ArchiveExt = ".zip"

// TemplateStore is a flat directory of uploaded template archives, addressed
// by file name. Disk is the source of truth for availability: database rows
// referencing a vanished archive are flagged by the catalog view.
type TemplateStore struct {
	dir string
}

func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir}
}

// FilePath returns the on-disk path for an archive file name. The name is
// reduced to its base to keep lookups inside the store directory.
func (s *TemplateStore) FilePath(fileName string) string {
	return filepath.Join(s.dir, filepath.Base(fileName))
}

// ListAvailable returns the archive file names present on disk.
func (s *TemplateStore) ListAvailable() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ArchiveExt) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Save writes the archive bytes verbatim under fileName, overwriting any
// existing file.
func (s *TemplateStore) Save(fileName string, r io.Reader) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	out, err := os.Create(s.FilePath(fileName))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Exists reports whether the archive file is present on disk.
func (s *TemplateStore) Exists(fileName string) bool {
	info, err := os.Stat(s.FilePath(fileName))
	return err == nil && !info.IsDir()
}

// Delete removes the backing archive, tolerating absence.
func (s *TemplateStore) Delete(fileName string) error {
	err := os.Remove(s.FilePath(fileName))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
