package symlib

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
)

// Loader resolves the symbol references of a drawing's instances and
// loads the definitions into the drawing's symbol table.
type Loader struct {
	resolver *Resolver
	cache    *Cache
	logger   *log.Logger
}

// NewLoader returns a loader over the given resolver, without a cache.
func NewLoader(resolver *Resolver) *Loader {
	return &Loader{resolver: resolver, logger: log.Default()}
}

// SetCache enables the parsed-symbol disk cache.
func (l *Loader) SetCache(c *Cache) {
	l.cache = c
}

// SetLogger redirects resolution diagnostics.
func (l *Loader) SetLogger(logger *log.Logger) {
	l.logger = logger
}

// ResolveInstances loads the symbol definition of every instance and
// links it through SymIdx. References that cannot be resolved or parsed
// are logged and left unresolved; the drawing stays usable. Returns the
// number of instances left unresolved.
func (l *Loader) ResolveInstances(d *sch.Drawing, docDir string) int {
	missing := 0
	for i := range d.Instances {
		inst := &d.Instances[i]
		if inst.SymIdx >= 0 {
			continue
		}
		if inst.Embed != nil {
			inst.SymIdx = d.AddSymbol(inst.Embed)
			continue
		}
		if idx, ok := d.SymbolIndex(inst.SymName); ok {
			inst.SymIdx = idx
			continue
		}
		sym, err := l.loadSymbol(inst.SymName, docDir)
		if err != nil {
			l.logger.Printf("cannot resolve symbol %s: %v", inst.SymName, err)
			missing++
			continue
		}
		inst.SymIdx = d.AddSymbol(sym)
	}
	for i := range d.Instances {
		inst := &d.Instances[i]
		if sym := d.SymbolOf(inst); sym != nil {
			if n := sym.PinCount(); len(inst.Nodes) != n {
				inst.Nodes = make([]string, n)
			}
		}
	}
	return missing
}

// loadSymbol parses the symbol file behind a reference, going through
// the disk cache when one is attached.
func (l *Loader) loadSymbol(ref, docDir string) (*sch.Symbol, error) {
	path, err := l.resolver.Resolve(ref, docDir)
	if err != nil {
		return nil, err
	}
	if l.cache == nil {
		return sch.LoadSymbol(path, ref)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	key := DigestOf(data)
	if sym, ok, err := l.cache.Get(key); err != nil {
		return nil, err
	} else if ok {
		return sym, nil
	}
	sym, err := sch.ReadSymbol(bytes.NewReader(data), ref)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := l.cache.Put(key, sym); err != nil {
		l.logger.Printf("symbol cache write failed: %v", err)
	}
	return sym, nil
}
