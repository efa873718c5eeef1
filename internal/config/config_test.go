package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindWalksUpward(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if !ok || got != path {
		t.Errorf("Find() = (%q, %v), want (%q, true)", got, ok, path)
	}
}

func TestFindMissing(t *testing.T) {
	_, ok, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if ok {
		t.Error("Find() = true, want false in empty tree")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[library]
dirs = ["/opt/ots/library", "lib"]
catalog = "/tmp/cat.db"

[netlist]
format = "spice"
name = "board"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Library.Dirs) != 2 || cfg.Library.Dirs[0] != "/opt/ots/library" {
		t.Errorf("Library.Dirs = %v", cfg.Library.Dirs)
	}
	if cfg.Library.Catalog != "/tmp/cat.db" {
		t.Errorf("Library.Catalog = %q", cfg.Library.Catalog)
	}
	if cfg.Netlist.Format != "spice" || cfg.Netlist.Name != "board" {
		t.Errorf("Netlist = %+v, want spice/board", cfg.Netlist)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[library]\ndirs = [\"lib\"]\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Netlist.Format != "json" || cfg.Netlist.Name != "netlist" {
		t.Errorf("Netlist defaults = %+v, want json/netlist", cfg.Netlist)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[netlist]\nformat = \"edif\"\n")

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want format validation error")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, used, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if used != "" {
		t.Errorf("used = %q, want empty for defaults", used)
	}
	if cfg.Netlist.Format != "json" {
		t.Errorf("default format = %q, want json", cfg.Netlist.Format)
	}
}

func TestCatalogPath(t *testing.T) {
	cfg := Config{}
	cfg.Library.Catalog = "/explicit/cat.db"
	got, err := cfg.CatalogPath()
	if err != nil {
		t.Fatalf("CatalogPath() error = %v", err)
	}
	if got != "/explicit/cat.db" {
		t.Errorf("CatalogPath() = %q, want explicit setting", got)
	}

	cfg.Library.Catalog = ""
	got, err = cfg.CatalogPath()
	if err != nil {
		t.Fatalf("CatalogPath() error = %v", err)
	}
	if filepath.Base(got) != "catalog.db" {
		t.Errorf("CatalogPath() = %q, want .../catalog.db", got)
	}
}
