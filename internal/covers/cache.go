// Package covers resolves stored cover blobs into local files that the
// presentation layer can display without handling binary payloads.
//
// Files are keyed by book id plus content hash, so re-running a search
// reuses the same file instead of leaking a fresh temp file per call,
// and replacing a cover naturally produces a new path.
package covers

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Cache materializes cover image blobs into a managed directory.
type Cache struct {
	cacheDir string
}

// NewCache creates a cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{cacheDir: cacheDir}, nil
}

// Materialize writes the cover blob for a book to the cache (if not
// already present) and returns the file path. Returns "" for an empty
// blob.
func (c *Cache) Materialize(bookID uint, image []byte) (string, error) {
	if len(image) == 0 {
		return "", nil
	}

	cachePath := filepath.Join(c.cacheDir, c.coverFilename(bookID, image))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	// Write via temp file + rename so readers never see a partial file
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return "", err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // no-op after successful rename
	}()

	if _, err := tmpFile.Write(image); err != nil {
		return "", err
	}
	tmpFile.Close()

	if err := os.Rename(tmpPath, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// Invalidate removes all cached cover files for a book.
func (c *Cache) Invalidate(bookID uint) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("cover_%d_*", bookID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Sweep removes cached cover files whose book id is not in live.
// Returns the number of files removed.
func (c *Cache) Sweep(live map[uint]bool) (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.cacheDir, "cover_*_*.img"))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, match := range matches {
		id, ok := bookIDFromFilename(filepath.Base(match))
		if !ok || live[id] {
			continue
		}
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}

// coverFilename generates a unique filename from book id and blob hash.
func (c *Cache) coverFilename(bookID uint, image []byte) string {
	hash := sha256.Sum256(image)
	return fmt.Sprintf("cover_%d_%x.img", bookID, hash[:8])
}

func bookIDFromFilename(name string) (uint, bool) {
	parts := strings.SplitN(strings.TrimPrefix(name, "cover_"), "_", 2)
	if len(parts) != 2 {
		return 0, false
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
