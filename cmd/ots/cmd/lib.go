package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/symlib"
)

var libCmd = &cobra.Command{
	Use:   "lib",
	Short: "Symbol library operations",
	Long:  `Commands for indexing and querying symbol libraries`,
}

var libScanCmd = &cobra.Command{
	Use:   "scan [dir...]",
	Short: "Index symbol libraries into the catalog",
	Long: `Walk the given directories (or the configured library
directories) and index every .sym file into the catalog database.`,
	RunE: runLibScan,
}

var libFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Look a symbol up in the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibFind,
}

var libPathCmd = &cobra.Command{
	Use:   "path <reference>",
	Short: "Resolve a symbol reference to a file path",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibPath,
}

func init() {
	rootCmd.AddCommand(libCmd)
	libCmd.AddCommand(libScanCmd)
	libCmd.AddCommand(libFindCmd)
	libCmd.AddCommand(libPathCmd)
}

func openCatalog() (*symlib.Catalog, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path, err := cfg.CatalogPath()
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "catalog: %s\n", path)
	}
	return symlib.OpenCatalog(path)
}

func runLibScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dirs := args
	if len(dirs) == 0 {
		dirs = symlib.NewResolver(cfg.Library.Dirs...).Dirs
	}

	catalog, err := openCatalog()
	if err != nil {
		return err
	}
	defer catalog.Close()

	n, err := catalog.Scan(dirs)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d symbols\n", n)
	return nil
}

func runLibFind(cmd *cobra.Command, args []string) error {
	catalog, err := openCatalog()
	if err != nil {
		return err
	}
	defer catalog.Close()

	name := args[0]
	if entry, ok := catalog.Find(name); ok {
		printEntry(entry)
		return nil
	}

	// No exact hit: list entries whose name contains the query.
	matches := 0
	catalog.Each(func(e *symlib.CatalogEntry) error {
		if strings.Contains(e.Name, name) {
			printEntry(e)
			matches++
		}
		return nil
	})
	if matches == 0 {
		return fmt.Errorf("symbol '%s' not found in catalog", name)
	}
	return nil
}

func printEntry(e *symlib.CatalogEntry) {
	fmt.Printf("%s\n", headingColor.Sprint(e.Name))
	fmt.Printf("  Path: %s\n", e.Path)
	if e.Type != "" {
		fmt.Printf("  Type: %s\n", e.Type)
	}
	if e.Description != "" {
		fmt.Printf("  Description: %s\n", e.Description)
	}
	fmt.Printf("  Pins: %d\n", e.Pins)
}

func runLibPath(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	resolver := symlib.NewResolver(cfg.Library.Dirs...)
	if verbose {
		for _, dir := range resolver.Dirs {
			fmt.Fprintf(os.Stderr, "search: %s\n", dir)
		}
	}

	path, err := resolver.Resolve(args[0], "")
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
