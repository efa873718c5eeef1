package symlib

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/boltdb/bolt"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/prop"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
)

var symbolsBucket = []byte("symbols")

// Catalog is an on-disk index of the symbols found in library
// directories, keyed by symbol file name.
type Catalog struct {
	db *bolt.DB
}

// CatalogEntry describes one indexed symbol.
type CatalogEntry struct {
	Name        string
	Path        string
	Type        string
	Description string
	Pins        int
}

// OpenCatalog creates or opens a catalog database.
func OpenCatalog(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(symbolsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Catalog{db: db}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Scan walks the given directories and indexes every .sym file found.
// Files that fail to parse are skipped. Returns the number of symbols
// indexed.
func (c *Catalog) Scan(dirs []string) (int, error) {
	var entries []CatalogEntry
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".sym") {
				return nil
			}
			sym, err := sch.LoadSymbol(path, filepath.Base(path))
			if err != nil {
				return nil
			}
			entries = append(entries, CatalogEntry{
				Name:        filepath.Base(path),
				Path:        path,
				Type:        sym.Type,
				Description: prop.GetTokValue(sym.Prop, "description", false),
				Pins:        sym.PinCount(),
			})
			return nil
		})
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return 0, err
		}
	}

	err := c.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(symbolsBucket)
		for i := range entries {
			data, err := msgpack.Marshal(&entries[i])
			if err != nil {
				return err
			}
			if err := bkt.Put([]byte(entries[i].Name), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Find looks up a symbol by file name.
func (c *Catalog) Find(name string) (*CatalogEntry, bool) {
	var entry CatalogEntry
	found := false
	c.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(symbolsBucket).Get([]byte(name))
		if data == nil {
			return nil
		}
		if err := msgpack.Unmarshal(data, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found {
		return nil, false
	}
	return &entry, true
}

// Each calls fn for every catalog entry in key order.
func (c *Catalog) Each(fn func(*CatalogEntry) error) error {
	return c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(symbolsBucket).ForEach(func(k, v []byte) error {
			var entry CatalogEntry
			if err := msgpack.Unmarshal(v, &entry); err != nil {
				return err
			}
			return fn(&entry)
		})
	})
}
