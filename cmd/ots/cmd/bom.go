package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/bom"
)

var bomXLSX string

var bomCmd = &cobra.Command{
	Use:   "bom <schematic.sch>",
	Short: "Export a bill of materials",
	Long: `Aggregate the schematic's instances by symbol, value and
footprint into BOM rows. Writes CSV on stdout, or an XLSX workbook
with --xlsx.`,
	Args: cobra.ExactArgs(1),
	RunE: runBOM,
}

func init() {
	rootCmd.AddCommand(bomCmd)

	bomCmd.Flags().StringVar(&bomXLSX, "xlsx", "", "write an XLSX workbook to this path")
}

func runBOM(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := loadDrawing(args[0], cfg)
	if err != nil {
		return err
	}

	rows := bom.Build(d)
	if bomXLSX != "" {
		if err := bom.WriteXLSX(bomXLSX, rows); err != nil {
			return err
		}
		fmt.Printf("wrote %d rows to %s\n", len(rows), bomXLSX)
		return nil
	}
	return bom.WriteCSV(os.Stdout, rows)
}
