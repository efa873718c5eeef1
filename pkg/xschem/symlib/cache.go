package symlib

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
)

// Current schema version - increment when symbolPayload format changes
const cacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content hash used as the cache key.
type Digest [sha256.Size]byte

// DigestOf hashes raw symbol file content.
func DigestOf(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// Cache stores parsed symbols on disk keyed by content digest, so a
// symbol file only has to be parsed once per content revision.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// symbolPayload wraps the cached symbol with a schema tag for safe
// invalidation when the model changes.
type symbolPayload struct {
	Schema uint16
	Symbol *sch.Symbol
}

// OpenCache initializes and returns a cache at the standard location
// for the given application name.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "syms", hex.EncodeToString(key[:])+".mp")
}

// Put serializes a symbol into the cache, replacing the entry
// atomically.
func (c *Cache) Put(key Digest, sym *sch.Symbol) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&symbolPayload{Schema: cacheSchemaVersion, Symbol: sym}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a cached symbol. A missing entry, a decode failure, or a
// stale schema all report a miss.
func (c *Cache) Get(key Digest) (*sch.Symbol, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload symbolPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, nil
	}
	if payload.Schema != cacheSchemaVersion || payload.Symbol == nil {
		return nil, false, nil
	}
	return payload.Symbol, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
