// Package cachefile provides the file-based local cache. State is kept in
// a single JSON file next to a small sidecar holding the dirty flag and the
// dismissed-notification keys, guarded by an flock so concurrent processes
// (CLI and daemon) never interleave writes.
package cachefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/mvdberg/klusplan/internal/domain"
)

// Ensure Cache implements domain.BundleCache.
var _ domain.BundleCache = (*Cache)(nil)

// sidecar holds the per-session bookkeeping next to the bundle.
// Fields are ordered to minimize memory padding.
type sidecar struct {
	DismissedDate string   `json:"dismissedDate,omitempty"`
	Dismissed     []string `json:"dismissed,omitempty"`
	Dirty         bool     `json:"dirty"`
}

// Cache stores the bundle and sidecar as JSON files under a directory.
type Cache struct {
	bundlePath  string
	sidecarPath string
	lockPath    string
}

// New creates a Cache rooted at dir. The directory does not need to exist;
// it is created on first write.
func New(dir string) *Cache {
	return &Cache{
		bundlePath:  filepath.Join(dir, "bundle.json"),
		sidecarPath: filepath.Join(dir, "session.json"),
		lockPath:    filepath.Join(dir, ".lock"),
	}
}

// LoadBundle restores the cached bundle. Returns domain.ErrNotFound when no
// cache file exists yet.
func (c *Cache) LoadBundle() (*domain.Bundle, error) {
	var b domain.Bundle
	found := false
	err := c.withLock(syscall.LOCK_SH, func() error {
		content, err := os.ReadFile(c.bundlePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("read cache file: %w", err)
		}
		if err := json.Unmarshal(content, &b); err != nil {
			return fmt.Errorf("parse cache file: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

// SaveBundle persists the bundle.
func (c *Cache) SaveBundle(b *domain.Bundle) error {
	content, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	return c.withLock(syscall.LOCK_EX, func() error {
		return writeAtomic(c.bundlePath, content)
	})
}

// LoadDirty reports whether uncommitted edits were cached.
func (c *Cache) LoadDirty() (bool, error) {
	sc, err := c.loadSidecar()
	if err != nil {
		return false, err
	}
	return sc.Dirty, nil
}

// SaveDirty persists the dirty flag.
func (c *Cache) SaveDirty(dirty bool) error {
	return c.updateSidecar(func(sc *sidecar) {
		sc.Dirty = dirty
	})
}

// LoadDismissed restores the dismissed-notification keys and their date stamp.
func (c *Cache) LoadDismissed() (string, []string, error) {
	sc, err := c.loadSidecar()
	if err != nil {
		return "", nil, err
	}
	return sc.DismissedDate, sc.Dismissed, nil
}

// SaveDismissed persists the dismissed keys under a date stamp.
func (c *Cache) SaveDismissed(date string, keys []string) error {
	return c.updateSidecar(func(sc *sidecar) {
		sc.DismissedDate = date
		sc.Dismissed = keys
	})
}

func (c *Cache) loadSidecar() (sidecar, error) {
	var sc sidecar
	err := c.withLock(syscall.LOCK_SH, func() error {
		content, err := os.ReadFile(c.sidecarPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("read session file: %w", err)
		}
		if err := json.Unmarshal(content, &sc); err != nil {
			return fmt.Errorf("parse session file: %w", err)
		}
		return nil
	})
	return sc, err
}

func (c *Cache) updateSidecar(fn func(*sidecar)) error {
	return c.withLock(syscall.LOCK_EX, func() error {
		var sc sidecar
		if content, err := os.ReadFile(c.sidecarPath); err == nil {
			if err := json.Unmarshal(content, &sc); err != nil {
				return fmt.Errorf("parse session file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("read session file: %w", err)
		}

		fn(&sc)

		content, err := json.MarshalIndent(sc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal session data: %w", err)
		}
		return writeAtomic(c.sidecarPath, content)
	})
}

func (c *Cache) withLock(lockType int, fn func() error) error {
	dir := filepath.Dir(c.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	lock, err := os.OpenFile(c.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lock.Close() }()

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN) }()

	return fn()
}

// writeAtomic writes to a temp file first, then renames over the target.
func writeAtomic(path string, content []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
