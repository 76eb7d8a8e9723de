// Package assets locates texture files for a mesh across a list of search
// directories, the way Oolite expansion packs split Models/ and Textures/.
package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/drydock/internal/logger"
)

// Manager resolves texture references against search directories.
// Directories are searched in reverse order (last added = highest priority).
type Manager struct {
	dirs  []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// ForMesh returns a manager for a mesh file. It searches the Textures
// directory of the expansion pack the mesh belongs to, a Textures directory
// beside the mesh, and finally the mesh's own directory.
func ForMesh(meshPath string) *Manager {
	dir := filepath.Dir(meshPath)
	m := NewManager()
	m.AddDir(dir)
	m.AddDir(filepath.Join(dir, "Textures"))
	m.AddDir(filepath.Join(dir, "..", "Textures"))
	return m
}

// AddDir adds a search directory. Missing directories are skipped at lookup
// time, not rejected here.
func (m *Manager) AddDir(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, filepath.Clean(dir))
	m.mu.Unlock()
	m.cache.Clear()
}

// Dirs returns the search directories in priority order.
func (m *Manager) Dirs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.dirs))
	for i := len(m.dirs) - 1; i >= 0; i-- {
		out = append(out, m.dirs[i])
	}
	return out
}

// Locate finds the file for a slash-separated texture reference.
func (m *Manager) Locate(ref string) (string, error) {
	if path, ok := m.cache.Get(ref); ok {
		return path, nil
	}

	rel := filepath.FromSlash(ref)
	if filepath.IsAbs(rel) {
		if _, err := os.Stat(rel); err != nil {
			return "", err
		}
		m.cache.Set(ref, rel)
		return rel, nil
	}

	for _, dir := range m.Dirs() {
		path := filepath.Join(dir, rel)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			logger.Debug("texture located", zap.String("ref", ref), zap.String("path", path))
			m.cache.Set(ref, path)
			return path, nil
		}
	}

	return "", fmt.Errorf("texture %s: %w", ref, fs.ErrNotExist)
}

// Cache remembers resolved texture paths.
type Cache struct {
	data map[string]string
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]string),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return path, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = path
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]string)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
