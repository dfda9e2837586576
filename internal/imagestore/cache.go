package imagestore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/llehouerou/folio/internal/cellsize"
)

const (
	cacheDirName = "folio/images"
	cacheMaxAge  = 30 * 24 * time.Hour // 30 days
)

// Cache keeps resized bitmaps on disk as PNG files. A nil *Cache is valid
// and caches nothing.
type Cache struct {
	dir string
}

// NewCache creates a cache below baseDir, or below the XDG cache directory
// when baseDir is empty. Stale entries are pruned in the background.
func NewCache(baseDir string) (*Cache, error) {
	if baseDir == "" {
		baseDir = xdg.CacheHome
	}

	dir := filepath.Join(baseDir, cacheDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	c := &Cache{dir: dir}
	go c.prune(time.Now().Add(-cacheMaxAge))

	return c, nil
}

// Dir returns the directory entries are written to.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// cacheKey identifies a source file revision resized for a given layout.
func cacheKey(path string, mtime int64, rows int, cell cellsize.Size) string {
	data := fmt.Sprintf("%s:%d:%d:%dx%d", path, mtime, rows, cell.Width, cell.Height)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// Get returns the cached PNG data for key, or nil.
func (c *Cache) Get(key string) []byte {
	if c == nil {
		return nil
	}

	path := filepath.Join(c.dir, key+".png")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	// Keep frequently used entries out of the prune window.
	now := time.Now()
	_ = os.Chtimes(path, now, now) //nolint:errcheck // best-effort

	return data
}

// Put stores PNG data under key.
func (c *Cache) Put(key string, data []byte) error {
	if c == nil {
		return nil
	}
	return os.WriteFile(filepath.Join(c.dir, key+".png"), data, 0o600)
}

// prune removes entries last used before cutoff.
func (c *Cache) prune(cutoff time.Time) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(c.dir, entry.Name())) //nolint:errcheck // best-effort cleanup
		}
	}
}
