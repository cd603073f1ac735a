// Package storage owns the on-disk state of the panel: per-website directory
// subtrees, the template archive store, and zip extraction.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupState classifies the outcome of a best-effort filesystem cleanup.
type CleanupState int

const (
	CleanupRemoved CleanupState = iota
	CleanupPartial
	CleanupNotFound
)

// CleanupResult reports how much of a subtree a clear or delete actually
// removed. Callers decide whether to log-and-continue or surface the cause.
type CleanupResult struct {
	State CleanupState
	Err   error
}

// FileEntry is a leaf in a site tree listing.
type FileEntry struct {
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// SiteManager creates, clears and deletes one directory subtree per
// (user, subdomain) pair under an injected root path.
type SiteManager struct {
	root string
}

func NewSiteManager(root string) *SiteManager {
	return &SiteManager{root: root}
}

// SitePath derives the subtree path for a (user, subdomain) pair. Pure; no
// filesystem access.
func (m *SiteManager) SitePath(userId int, subdomain string) string {
	return filepath.Join(m.root, fmt.Sprintf("%d-%s", userId, subdomain))
}

// Create makes the subtree directory, idempotently, and returns its path.
func (m *SiteManager) Create(userId int, subdomain string) (string, error) {
	path := m.SitePath(userId, subdomain)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// Exists reports whether the subtree directory is present.
func (m *SiteManager) Exists(userId int, subdomain string) bool {
	info, err := os.Stat(m.SitePath(userId, subdomain))
	return err == nil && info.IsDir()
}

// Clear removes every immediate child of the subtree, keeping the root
// directory itself. A missing subtree is CleanupNotFound.
func (m *SiteManager) Clear(userId int, subdomain string) CleanupResult {
	path := m.SitePath(userId, subdomain)
	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) {
		return CleanupResult{State: CleanupNotFound}
	}
	if err != nil {
		return CleanupResult{State: CleanupPartial, Err: err}
	}

	var firstErr error
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(path, entry.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return CleanupResult{State: CleanupPartial, Err: firstErr}
	}
	return CleanupResult{State: CleanupRemoved}
}

// Delete removes the subtree root and everything beneath it.
func (m *SiteManager) Delete(userId int, subdomain string) CleanupResult {
	path := m.SitePath(userId, subdomain)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CleanupResult{State: CleanupNotFound}
	}
	if err := os.RemoveAll(path); err != nil {
		return CleanupResult{State: CleanupPartial, Err: err}
	}
	return CleanupResult{State: CleanupRemoved}
}

// ListTree walks the subtree and returns a nested mapping: directories map
// to nested mappings, files to a FileEntry. Display only.
func (m *SiteManager) ListTree(userId int, subdomain string) (map[string]any, error) {
	return listDir(m.SitePath(userId, subdomain))
}

func listDir(path string) (map[string]any, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	tree := make(map[string]any, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			sub, err := listDir(filepath.Join(path, entry.Name()))
			if err != nil {
				return nil, err
			}
			tree[entry.Name()] = sub
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		tree[entry.Name()] = FileEntry{Size: info.Size(), ModTime: info.ModTime()}
	}
	return tree, nil
}

// Stage creates a temporary sibling directory under the root for assembling
// new site content before an atomic swap.
func (m *SiteManager) Stage(userId int, subdomain string) (string, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return "", err
	}
	return os.MkdirTemp(m.root, fmt.Sprintf(".stage-%d-%s-", userId, subdomain))
}

// Swap atomically replaces the live subtree with the staged directory. The
// previous content is renamed aside first and only removed after the staged
// directory is in place, so a failed swap never leaves the site empty.
func (m *SiteManager) Swap(userId int, subdomain string, stagedPath string) error {
	live := m.SitePath(userId, subdomain)
	old := live + ".old"

	_ = os.RemoveAll(old)
	hadLive := true
	if err := os.Rename(live, old); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		hadLive = false
	}

	if err := os.Rename(stagedPath, live); err != nil {
		if hadLive {
			// Roll the previous content back into place.
			_ = os.Rename(old, live)
		}
		return err
	}

	_ = os.RemoveAll(old)
	return nil
}

// DiscardStage removes a staged directory after a failed application.
func (m *SiteManager) DiscardStage(stagedPath string) {
	_ = os.RemoveAll(stagedPath)
}

// SweepStale removes leftover `.stage-*` and `*.old` directories under the
// root. A crash between Stage and Swap can strand them, and the root is
// served publicly. Run at startup.
func (m *SiteManager) SweepStale() error {
	entries, err := os.ReadDir(m.root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var firstErr error
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, ".stage-") && !strings.HasSuffix(name, ".old") {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.root, name)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
