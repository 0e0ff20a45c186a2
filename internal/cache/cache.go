package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/codelens/internal/config"
)

const (
	defaultMemoryEntries = 256
	entryExt             = ".json"
)

// Entry is one cached generation result as stored on disk.
type Entry struct {
	Digest    string    `json:"digest"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

func (e Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Cache is a two-tier response cache. A disabled Cache misses on every Get
// and ignores every Put.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	mem     *lru.Cache[string, Entry]
	now     func() time.Time
}

// New creates a Cache rooted at dir, or the XDG cache directory when dir is
// empty. A ttlSeconds of zero keeps entries forever; memoryEntries bounds the
// in-memory tier and zero selects a default.
func New(enabled bool, dir string, ttlSeconds, memoryEntries int) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if dir == "" {
		dir = config.CacheDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if memoryEntries <= 0 {
		memoryEntries = defaultMemoryEntries
	}
	mem, err := lru.New[string, Entry](memoryEntries)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
		mem:     mem,
		now:     time.Now,
	}, nil
}

// FromConfig creates a Cache from the cache section of cfg.
func FromConfig(cfg config.CacheConfig) (*Cache, error) {
	return New(cfg.Enabled, cfg.Dir, cfg.TTLSeconds, cfg.MemoryEntries)
}

// Get returns the response stored under key.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	digest := HashKey(key)

	entry, ok := c.mem.Get(digest)
	if !ok {
		entry, ok = c.readEntry(c.entryPath(digest))
		if !ok {
			return "", false
		}
	}
	if entry.expired(c.now()) {
		c.mem.Remove(digest)
		_ = os.Remove(c.entryPath(digest))
		return "", false
	}
	c.mem.Add(digest, entry)
	return entry.Response, true
}

// Put stores response under key in both tiers. The disk write is atomic so a
// concurrent reader never sees a partial entry.
func (c *Cache) Put(key, response string) error {
	if !c.enabled {
		return nil
	}
	now := c.now()
	entry := Entry{
		Digest:    HashKey(key),
		Response:  response,
		CreatedAt: now.UTC(),
	}
	if c.ttl > 0 {
		entry.ExpiresAt = now.Add(c.ttl).UTC()
	}
	c.mem.Add(entry.Digest, entry)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	path := c.entryPath(entry.Digest)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache shard: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many disk entries were deleted.
func (c *Cache) Clear() (int, error) {
	if !c.enabled {
		return 0, nil
	}
	c.mem.Purge()
	var removed int
	err := c.walkEntries(func(path string, _ fs.DirEntry) {
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// Stats describes the contents of the cache.
type Stats struct {
	Dir           string `json:"dir"`
	Entries       int    `json:"entries"`
	MemoryEntries int    `json:"memoryEntries"`
	TotalBytes    int64  `json:"totalBytes"`
	Expired       int    `json:"expired"`
}

// GetStats scans the disk tier.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled {
		return stats, nil
	}
	stats.MemoryEntries = c.mem.Len()
	now := c.now()
	err := c.walkEntries(func(path string, d fs.DirEntry) {
		info, err := d.Info()
		if err != nil {
			return
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
		if e, ok := c.readEntry(path); ok && e.expired(now) {
			stats.Expired++
		}
	})
	return stats, err
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashKey returns the hex SHA-256 digest of key.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// BuildKey creates a cache key from the model name and the rendered prompt.
func BuildKey(model, prompt string) string {
	return model + ":" + prompt
}

// entryPath shards entries by the first two digest characters.
func (c *Cache) entryPath(digest string) string {
	return filepath.Join(c.dir, digest[:2], digest+entryExt)
}

func (c *Cache) readEntry(path string) (Entry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

func (c *Cache) walkEntries(fn func(path string, d fs.DirEntry)) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), entryExt) {
			fn(path, d)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning cache directory: %w", err)
	}
	return nil
}
