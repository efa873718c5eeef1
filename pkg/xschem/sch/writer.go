package sch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// braceEscaper escapes the characters that are significant inside a
// braced free-text field.
var braceEscaper = strings.NewReplacer(`\`, `\\`, "{", `\{`, "}", `\}`)

// Writer serializes a Drawing back to the record text format. Output is
// deterministic: records are grouped by type, per-layer collections come
// out in ascending layer order, and floats carry 16 significant digits
// so a written file parses back to identical values.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteDrawing serializes d to w.
func WriteDrawing(w io.Writer, d *Drawing) error {
	return NewWriter(w).Write(d)
}

// SaveDrawing writes d to the file at path.
func SaveDrawing(path string, d *Drawing) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := NewWriter(f).Write(d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write emits every record of the drawing. Any underlying I/O failure is
// reported by the final flush.
func (wr *Writer) Write(d *Drawing) error {
	wr.writeBraceLine('v', d.Version)
	wr.writeBraceLine('G', d.VHDLProp)
	wr.writeBraceLine('K', d.SymProp)
	wr.writeBraceLine('V', d.VerilogProp)
	wr.writeBraceLine('S', d.SchProp)
	wr.writeBraceLine('E', d.TedaxProp)
	// The F record is a later format addition; older tools reject it, so
	// it is only written when the property is present.
	if d.SpectreProp != "" {
		wr.writeBraceLine('F', d.SpectreProp)
	}

	wr.writeLayers(&d.Lines, &d.Rects, &d.Arcs, &d.Polygons)

	for i := range d.Texts {
		wr.writeText(&d.Texts[i])
	}

	for i := range d.Wires {
		w := &d.Wires[i]
		fmt.Fprintf(wr.w, "N %.16g %.16g %.16g %.16g ", w.X1, w.Y1, w.X2, w.Y2)
		wr.writeBraced(w.Prop)
		wr.w.WriteByte('\n')
	}

	for i := range d.Instances {
		wr.writeInstance(&d.Instances[i])
	}

	return wr.w.Flush()
}

// WriteSymbol serializes a symbol definition: its global attribute string
// as a K record followed by the geometry. The output parses back through
// ReadSymbol.
func (wr *Writer) WriteSymbol(s *Symbol) error {
	wr.writeSymbolBody(s)
	return wr.w.Flush()
}

func (wr *Writer) writeSymbolBody(s *Symbol) {
	wr.writeBraceLine('K', s.Prop)
	wr.writeLayers(&s.Lines, &s.Rects, &s.Arcs, &s.Polygons)
	for i := range s.Texts {
		wr.writeText(&s.Texts[i])
	}
}

// writeLayers emits the per-layer collections grouped by record type,
// each type in ascending layer order.
func (wr *Writer) writeLayers(lines *[NLayers][]Line, rects *[NLayers][]Rect, arcs *[NLayers][]Arc, polygons *[NLayers][]Polygon) {
	for layer := 0; layer < NLayers; layer++ {
		for i := range lines[layer] {
			l := &lines[layer][i]
			fmt.Fprintf(wr.w, "L %d %.16g %.16g %.16g %.16g ", layer, l.X1, l.Y1, l.X2, l.Y2)
			wr.writeBraced(l.Prop)
			wr.w.WriteByte('\n')
		}
	}
	for layer := 0; layer < NLayers; layer++ {
		for i := range rects[layer] {
			r := &rects[layer][i]
			fmt.Fprintf(wr.w, "B %d %.16g %.16g %.16g %.16g ", layer, r.X1, r.Y1, r.X2, r.Y2)
			wr.writeBraced(r.Prop)
			wr.w.WriteByte('\n')
		}
	}
	for layer := 0; layer < NLayers; layer++ {
		for i := range arcs[layer] {
			a := &arcs[layer][i]
			fmt.Fprintf(wr.w, "A %d %.16g %.16g %.16g %.16g %.16g ", layer, a.X, a.Y, a.R, a.Start, a.Sweep)
			wr.writeBraced(a.Prop)
			wr.w.WriteByte('\n')
		}
	}
	for layer := 0; layer < NLayers; layer++ {
		for i := range polygons[layer] {
			p := &polygons[layer][i]
			fmt.Fprintf(wr.w, "P %d %d ", layer, len(p.Points))
			for _, pt := range p.Points {
				fmt.Fprintf(wr.w, "%.16g %.16g ", pt.X, pt.Y)
			}
			wr.writeBraced(p.Prop)
			wr.w.WriteByte('\n')
		}
	}
}

func (wr *Writer) writeText(t *Text) {
	wr.w.WriteString("T ")
	wr.writeBraced(t.Txt)
	fmt.Fprintf(wr.w, " %.16g %.16g %d %d %.16g %.16g ", t.X, t.Y, t.Rot, t.Flip, t.XScale, t.YScale)
	wr.writeBraced(t.Prop)
	wr.w.WriteByte('\n')
}

func (wr *Writer) writeInstance(inst *Instance) {
	wr.w.WriteString("C ")
	wr.writeBraced(inst.SymName)
	fmt.Fprintf(wr.w, " %.16g %.16g %d %d ", inst.X, inst.Y, inst.Rot, inst.Flip)
	wr.writeBraced(inst.Prop)
	wr.w.WriteByte('\n')
	// A self-contained placement carries its definition as an embedded
	// block right after the placement record.
	if inst.Embed != nil {
		wr.w.WriteString("[\n")
		wr.writeSymbolBody(inst.Embed)
		wr.w.WriteString("]\n")
	}
}

func (wr *Writer) writeBraceLine(tag byte, text string) {
	wr.w.WriteByte(tag)
	wr.w.WriteByte(' ')
	wr.writeBraced(text)
	wr.w.WriteByte('\n')
}

func (wr *Writer) writeBraced(s string) {
	wr.w.WriteByte('{')
	braceEscaper.WriteString(wr.w, s)
	wr.w.WriteByte('}')
}
