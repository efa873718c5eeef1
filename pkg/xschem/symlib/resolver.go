// Package symlib resolves and loads the symbol definitions referenced by
// schematic instances: path resolution over the library search path, a
// parsed-symbol disk cache, and an on-disk catalog of library contents.
package symlib

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a symbol reference matches no file on the
// search path.
var ErrNotFound = errors.New("symbol not found")

// DefaultDirs are the install locations searched after any configured
// library directories.
var DefaultDirs = []string{
	"/usr/local/share/ots/library",
	"/usr/share/ots/library",
}

// Resolver maps symbol references to files. The search order is the
// document directory, then every configured directory, then the entries
// of OTS_LIBRARY_PATH, then the default install locations.
type Resolver struct {
	Dirs []string
}

// NewResolver builds a resolver over the given library directories plus
// the environment and default locations.
func NewResolver(dirs ...string) *Resolver {
	r := &Resolver{Dirs: append([]string{}, dirs...)}
	for _, d := range filepath.SplitList(os.Getenv("OTS_LIBRARY_PATH")) {
		if d != "" {
			r.Dirs = append(r.Dirs, d)
		}
	}
	r.Dirs = append(r.Dirs, DefaultDirs...)
	return r
}

// Resolve returns the path of the file a symbol reference names. An
// absolute reference is taken as is when the file exists. A relative
// reference is tried against the document directory first, then against
// each library directory in order; the first existing file wins.
func (r *Resolver) Resolve(ref, docDir string) (string, error) {
	if filepath.IsAbs(ref) {
		if fileExists(ref) {
			return ref, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if docDir != "" {
		if p := filepath.Join(docDir, ref); fileExists(p) {
			return p, nil
		}
	}
	for _, dir := range r.Dirs {
		if p := filepath.Join(dir, ref); fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
