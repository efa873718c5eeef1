package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/netlist"
)

var (
	netFormat string
	netOutput string
)

var netCmd = &cobra.Command{
	Use:   "net",
	Short: "Netlist operations",
	Long:  `Commands for extracting connectivity from schematics`,
}

var netExtractCmd = &cobra.Command{
	Use:   "extract <schematic.sch>",
	Short: "Extract the connectivity netlist",
	Long: `Group the schematic's wires into nets, name them from labels,
resolve instance pins, and write the result in the chosen format.`,
	Args: cobra.ExactArgs(1),
	RunE: runNetExtract,
}

func init() {
	rootCmd.AddCommand(netCmd)
	netCmd.AddCommand(netExtractCmd)

	netExtractCmd.Flags().StringVarP(&netFormat, "format", "f", "",
		"output format: json, spice or tedax (default from ots.toml)")
	netExtractCmd.Flags().StringVarP(&netOutput, "output", "o", "",
		"write to a file instead of stdout")
}

func runNetExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := loadDrawing(args[0], cfg)
	if err != nil {
		return err
	}

	nl := netlist.Analyze(d)
	if verbose {
		fmt.Fprintf(os.Stderr, "extracted %d nets\n", nl.NetCount())
	}

	var out io.Writer = os.Stdout
	if netOutput != "" {
		f, err := os.Create(netOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	format := netFormat
	if format == "" {
		format = cfg.Netlist.Format
	}
	switch format {
	case "json":
		data, err := nl.ExportJSON(d)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	case "spice":
		return netlist.ExportSpice(out, d)
	case "tedax":
		return netlist.ExportTedax(out, d, nl, cfg.Netlist.Name)
	default:
		return fmt.Errorf("unknown netlist format %q", format)
	}
}
