package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type FilesystemCache struct {
	root string
}

func NewFilesystemCache(root string) (*FilesystemCache, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}
	return &FilesystemCache{root: root}, nil
}

var _ TileCache = (*FilesystemCache)(nil)

func (c *FilesystemCache) Get(k TileCacheKey) (TileCacheValue, bool, error) {
	content, err := os.ReadFile(c.keyToPath(k))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return content, true, nil
}

func (c *FilesystemCache) Set(k TileCacheKey, v TileCacheValue) error {
	path := c.keyToPath(k)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, v, 0644)
}

func (c *FilesystemCache) keyToPath(k TileCacheKey) string {
	return filepath.Join(c.root, fmt.Sprintf("%d/%d/%d", k.Z, k.X, k.Y))
}
