package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchem/internal/config"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/symlib"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ots",
	Short: "OpenTraceSchem - xschem schematic and symbol tools",
	Long: `OpenTraceSchem (ots) works with xschem schematic and symbol files:
  - Schematic statistics and property queries
  - Netlist extraction (JSON, SPICE, tEDAx)
  - Bill of materials export (CSV, XLSX)
  - Symbol library resolution and cataloging

Examples:
  ots sch info board.sch              # Show schematic summary
  ots net extract board.sch           # Extract the netlist as JSON
  ots bom board.sch --xlsx bom.xlsx   # Export a BOM workbook
  ots lib find res.sym                # Look a symbol up in the catalog`,
	Version: "0.9.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the nearest ots.toml, falling back to defaults.
func loadConfig() (config.Config, error) {
	cfg, path, err := config.LoadOrDefault(".")
	if err != nil {
		return config.Config{}, err
	}
	if verbose && path != "" {
		fmt.Fprintf(os.Stderr, "using config %s\n", path)
	}
	return cfg, nil
}

// loadDrawing parses a schematic and resolves its instances against the
// library search path. Unresolvable symbols are reported but do not
// fail the load.
func loadDrawing(path string, cfg config.Config) (*sch.Drawing, error) {
	d, err := sch.LoadDrawing(path)
	if err != nil {
		return nil, err
	}

	loader := symlib.NewLoader(symlib.NewResolver(cfg.Library.Dirs...))
	if cache, err := symlib.OpenCache("ots"); err == nil {
		loader.SetCache(cache)
	}
	if missing := loader.ResolveInstances(d, filepath.Dir(path)); missing > 0 && verbose {
		fmt.Fprintf(os.Stderr, "%d symbol reference(s) unresolved\n", missing)
	}
	return d, nil
}
