package storage

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"webforge/util/common"
)

// ExtractArchive decompresses a zip archive into destPath. Entries resolving
// outside destPath are rejected.
func ExtractArchive(archivePath, destPath string) error {
	if !strings.EqualFold(filepath.Ext(archivePath), ArchiveExt) {
		return common.NewErrorf("unsupported archive format: %s", filepath.Ext(archivePath))
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		targetPath, err := safeJoin(destPath, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return err
		}
		if err := extractFile(file, targetPath); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(file *zip.File, targetPath string) error {
	in, err := file.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// safeJoin joins an archive entry name onto dest, rejecting names that
// escape it ("../", absolute paths).
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", common.NewErrorf("illegal archive entry path: %s", name)
	}
	return target, nil
}
