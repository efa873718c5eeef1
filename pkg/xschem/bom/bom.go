// Package bom aggregates the placed instances of a schematic into bill
// of materials rows and writes them as CSV or XLSX.
package bom

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/prop"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
)

// Row is one BOM line: every instance sharing a symbol, value and
// footprint, with the reference designators in natural order.
type Row struct {
	Refdes    []string
	SymName   string
	Value     string
	Footprint string
}

// Quantity returns the number of instances on the row.
func (r *Row) Quantity() int {
	return len(r.Refdes)
}

// Build aggregates the drawing's instances into BOM rows. Net labels
// and port pins are excluded, as are instances without a name=
// designator. Rows are ordered by their first designator.
func Build(d *sch.Drawing) []*Row {
	byKey := make(map[string]*Row)
	var rows []*Row
	for i := range d.Instances {
		inst := &d.Instances[i]
		sym := d.SymbolOf(inst)
		if sym != nil && sym.IsPinOrLabel() {
			continue
		}
		ref := inst.Refdes()
		if ref == "" {
			continue
		}
		value := instAttr(inst, sym, "value")
		footprint := instAttr(inst, sym, "footprint")
		key := inst.SymName + "\x00" + value + "\x00" + footprint
		row, ok := byKey[key]
		if !ok {
			row = &Row{SymName: inst.SymName, Value: value, Footprint: footprint}
			byKey[key] = row
			rows = append(rows, row)
		}
		row.Refdes = append(row.Refdes, ref)
	}

	for _, row := range rows {
		sort.Slice(row.Refdes, func(i, j int) bool {
			return naturalLess(row.Refdes[i], row.Refdes[j])
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return naturalLess(rows[i].Refdes[0], rows[j].Refdes[0])
	})
	return rows
}

// instAttr reads an instance attribute with symbol template fallback.
func instAttr(inst *sch.Instance, sym *sch.Symbol, key string) string {
	if v := prop.GetTokValue(inst.Prop, key, false); v != "" {
		return v
	}
	if sym != nil {
		return prop.GetTokValue(sym.Template, key, false)
	}
	return ""
}

var csvHeader = []string{"Designator", "Quantity", "Symbol", "Value", "Footprint"}

// WriteCSV writes the rows in CSV form with a header line.
func WriteCSV(w io.Writer, rows []*Row) error {
	cw := csv.NewWriter(w)
	cw.Write(csvHeader)
	for _, row := range rows {
		cw.Write([]string{
			strings.Join(row.Refdes, ","),
			strconv.Itoa(row.Quantity()),
			row.SymName,
			row.Value,
			row.Footprint,
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the rows to an Excel workbook with a single BOM
// sheet.
func WriteXLSX(path string, rows []*Row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "BOM"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell := "A" + strconv.Itoa(i+2)
		err := f.SetSheetRow(sheet, cell, &[]interface{}{
			strings.Join(row.Refdes, ","),
			row.Quantity(),
			row.SymName,
			row.Value,
			row.Footprint,
		})
		if err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// naturalLess orders designators so R2 sorts before R10.
func naturalLess(a, b string) bool {
	pa, na := splitRefdes(a)
	pb, nb := splitRefdes(b)
	if pa != pb {
		return pa < pb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

// splitRefdes separates the letter prefix from the first digit run, so
// U1A compares as ("U", 1).
func splitRefdes(ref string) (string, int) {
	start := -1
	for i, c := range ref {
		if c >= '0' && c <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return ref, 0
	}
	end := start
	for end < len(ref) && ref[end] >= '0' && ref[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(ref[start:end])
	return ref[:start], n
}
