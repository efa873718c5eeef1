// Package sch provides the in-memory model and the record-format codec for
// xschem schematic and symbol files (.sch / .sym).
package sch

import (
	"strconv"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/prop"
)

// Layer constants. Graphical primitives are grouped by an integer layer
// index; indices outside [0, NLayers) are rejected by the reader.
const (
	NLayers   = 45 // number of drawing layers
	BackLayer = 0  // background
	WireLayer = 1  // electrical wires
	TextLayer = 3  // default text layer
	PinLayer  = 5  // symbol pin rectangles
)

// Selection bitmask values. Selection state is an editor concern carried on
// every primitive; it is never persisted to disk.
const (
	Selected     uint16 = 1 << iota // whole object selected
	SelectedEnd1                    // first endpoint selected
	SelectedEnd2                    // second endpoint selected
)

// Symbol type tags, stored in a symbol's type= attribute.
const (
	TypeSubcircuit = "subcircuit"
	TypePrimitive  = "primitive"
	TypeLabel      = "label"
	TypeInputPin   = "ipin"
	TypeOutputPin  = "opin"
	TypeBidirPin   = "iopin"
)

// Point is a coordinate pair on the drawing plane.
type Point struct {
	X, Y float64
}

// Wire is one electrical wire segment. Endpoints are canonicalized on
// store so that the first endpoint is lexicographically smaller (x, then
// y), which keeps written output deterministic.
type Wire struct {
	X1, Y1 float64 // first endpoint
	X2, Y2 float64 // second endpoint
	Prop   string  // raw property string
	Node   string  // assigned net name, written by connectivity analysis
	Bus    int     // bus width multiplier from the bus= attribute
	Sel    uint16  // selection bitmask, not persisted
}

// Line is a purely graphical segment on some layer.
type Line struct {
	X1, Y1 float64
	X2, Y2 float64
	Prop   string
	Dash   int // dash= attribute
	Bus    int // bus= attribute
	Fill   bool
	Sel    uint16
}

// Rect is a rectangle or box on some layer. On the pin layer of a symbol,
// rectangles double as pin definitions carrying name= and dir= attributes.
type Rect struct {
	X1, Y1 float64 // one corner
	X2, Y2 float64 // opposite corner
	Prop   string
	Dash   int
	Bus    int
	Fill   bool
	Sel    uint16
}

// Arc is a circular arc (a full circle when Sweep is 360).
type Arc struct {
	X, Y  float64 // center
	R     float64 // radius
	Start float64 // start angle in degrees
	Sweep float64 // sweep angle in degrees
	Prop  string
	Dash  int
	Bus   int
	Fill  bool
	Sel   uint16
}

// Polygon is an open or closed point sequence on some layer.
type Polygon struct {
	Points []Point
	Prop   string
	Dash   int
	Bus    int
	Fill   bool
	Sel    uint16
}

// Text is a text annotation. Content may span multiple lines.
type Text struct {
	Txt     string  // content
	X, Y    float64 // anchor position
	Rot     int     // quarter turns, 0..3
	Flip    int     // horizontal mirror flag
	XScale  float64
	YScale  float64
	Prop    string
	Layer   int    // layer= attribute, TextLayer when absent
	Font    string // font= attribute
	HCenter bool   // hcenter= attribute
	VCenter bool   // vcenter= attribute
	Sel     uint16
}

// Symbol is a named, reusable graphical definition referenced by
// instances. Its geometry is grouped per layer in insertion order; pin
// rectangles live on PinLayer and their order defines pin indices.
type Symbol struct {
	Name     string               // reference name, normally ending in .sym
	Type     string               // type= attribute (subcircuit, label, ipin, ...)
	Prop     string               // the symbol's global attribute string
	Template string               // template= attribute: default instance attributes
	Formats  map[string]string    // netlist format templates keyed by dialect
	Lines    [NLayers][]Line      //
	Rects    [NLayers][]Rect      //
	Arcs     [NLayers][]Arc       //
	Polygons [NLayers][]Polygon   //
	Texts    []Text               //
	BBox     Box                  // extent of the symbol geometry
}

// Format dialect keys used in Symbol.Formats.
const (
	FormatSpice   = "spice"
	FormatVHDL    = "vhdl"
	FormatVerilog = "verilog"
	FormatTedax   = "tedax"
	FormatSpectre = "spectre"
)

// formatAttrs maps a symbol attribute name to its Formats dialect key.
var formatAttrs = map[string]string{
	"format":         FormatSpice,
	"vhdl_format":    FormatVHDL,
	"verilog_format": FormatVerilog,
	"tedax_format":   FormatTedax,
	"spectre_format": FormatSpectre,
}

// Instance is a placement of a symbol on the drawing.
type Instance struct {
	SymName string   // symbol reference as written in the file
	SymIdx  int      // index into Drawing.Symbols, -1 until resolved
	X, Y    float64  // origin
	Rot     int      // quarter turns, 0..3
	Flip    int      // horizontal mirror flag
	Prop    string   // raw property string
	Lab     string   // lab= attribute, cached for label instances
	Nodes   []string // per-pin net names, sized to the symbol pin count
	Embed   *Symbol  // embedded symbol definition, emitted as a [...] block
	Sel     uint16
}

// Drawing is one complete schematic or symbol document: every primitive,
// the placed instances, the resolved symbol definitions, and the six
// per-document global property strings.
type Drawing struct {
	Wires     []Wire
	Lines     [NLayers][]Line
	Rects     [NLayers][]Rect
	Arcs      [NLayers][]Arc
	Polygons  [NLayers][]Polygon
	Texts     []Text
	Symbols   []*Symbol
	Instances []Instance

	SchProp     string // S record: schematic global attributes
	SymProp     string // K record: symbol global attributes
	VHDLProp    string // G record
	VerilogProp string // V record
	TedaxProp   string // E record
	SpectreProp string // F record

	Version     string // raw contents of the v record
	FileVersion string // file_version attribute extracted from Version

	symbolIndex map[string]int // symbol name -> Symbols index
}

// NewDrawing returns an empty drawing.
func NewDrawing() *Drawing {
	return &Drawing{symbolIndex: make(map[string]int)}
}

// SetVersion stores the raw v record payload and extracts its
// file_version attribute.
func (d *Drawing) SetVersion(v string) {
	d.Version = v
	d.FileVersion = prop.GetTokValue(v, "file_version", false)
}

// AddWire canonicalizes the endpoints and appends a wire. The first
// endpoint always compares lexicographically smaller than the second.
func (d *Drawing) AddWire(x1, y1, x2, y2 float64, props string) *Wire {
	if x2 < x1 || (x1 == x2 && y2 < y1) {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
	}
	w := Wire{X1: x1, Y1: y1, X2: x2, Y2: y2}
	w.SetProp(props)
	d.Wires = append(d.Wires, w)
	return &d.Wires[len(d.Wires)-1]
}

// AddLine appends a graphical line to a layer. The x coordinates are
// ordered per axis; the y coordinates are ordered only when the segment is
// vertical, so non-vertical lines keep their y orientation.
func (d *Drawing) AddLine(layer int, x1, y1, x2, y2 float64, props string) *Line {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if x1 == x2 && y2 < y1 {
		y1, y2 = y2, y1
	}
	l := Line{X1: x1, Y1: y1, X2: x2, Y2: y2}
	l.SetProp(props)
	d.Lines[layer] = append(d.Lines[layer], l)
	return &d.Lines[layer][len(d.Lines[layer])-1]
}

// AddRect normalizes the corners per axis and appends a rectangle to a
// layer.
func (d *Drawing) AddRect(layer int, x1, y1, x2, y2 float64, props string) *Rect {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	r := Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
	r.SetProp(props)
	d.Rects[layer] = append(d.Rects[layer], r)
	return &d.Rects[layer][len(d.Rects[layer])-1]
}

// AddArc appends an arc to a layer.
func (d *Drawing) AddArc(layer int, x, y, r, start, sweep float64, props string) *Arc {
	a := Arc{X: x, Y: y, R: r, Start: start, Sweep: sweep}
	a.SetProp(props)
	d.Arcs[layer] = append(d.Arcs[layer], a)
	return &d.Arcs[layer][len(d.Arcs[layer])-1]
}

// AddPolygon appends a polygon to a layer. The point slice is stored as
// given, without copying.
func (d *Drawing) AddPolygon(layer int, points []Point, props string) *Polygon {
	p := Polygon{Points: points}
	p.SetProp(props)
	d.Polygons[layer] = append(d.Polygons[layer], p)
	return &d.Polygons[layer][len(d.Polygons[layer])-1]
}

// AddText appends a text annotation.
func (d *Drawing) AddText(txt string, x, y float64, rot, flip int, xscale, yscale float64, props string) *Text {
	t := Text{Txt: txt, X: x, Y: y, Rot: rot, Flip: flip, XScale: xscale, YScale: yscale}
	t.SetProp(props)
	d.Texts = append(d.Texts, t)
	return &d.Texts[len(d.Texts)-1]
}

// AddInstance appends a symbol placement. The symbol reference is not
// resolved here; see SymbolIndex and AddSymbol.
func (d *Drawing) AddInstance(symName string, x, y float64, rot, flip int, props string) *Instance {
	inst := Instance{SymName: symName, SymIdx: -1, X: x, Y: y, Rot: rot, Flip: flip}
	inst.SetProp(props)
	d.Instances = append(d.Instances, inst)
	return &d.Instances[len(d.Instances)-1]
}

// SymbolIndex returns the index of a loaded symbol definition by name.
func (d *Drawing) SymbolIndex(name string) (int, bool) {
	idx, ok := d.symbolIndex[name]
	return idx, ok
}

// AddSymbol registers a symbol definition, de-duplicating by name: adding
// a name that is already present returns the existing index.
func (d *Drawing) AddSymbol(sym *Symbol) int {
	if d.symbolIndex == nil {
		d.symbolIndex = make(map[string]int)
	}
	if idx, ok := d.symbolIndex[sym.Name]; ok {
		return idx
	}
	d.Symbols = append(d.Symbols, sym)
	idx := len(d.Symbols) - 1
	d.symbolIndex[sym.Name] = idx
	return idx
}

// SymbolOf returns the resolved symbol definition for an instance, or nil
// when the reference has not been resolved.
func (d *Drawing) SymbolOf(inst *Instance) *Symbol {
	if inst.SymIdx < 0 || inst.SymIdx >= len(d.Symbols) {
		return nil
	}
	return d.Symbols[inst.SymIdx]
}

// SetProp stores the property string and refreshes the derived bus
// multiplier.
func (w *Wire) SetProp(props string) {
	w.Prop = props
	w.Bus = busMultiplier(props)
}

// SetProp stores the property string and refreshes the derived attributes.
func (l *Line) SetProp(props string) {
	l.Prop = props
	l.Dash = intAttr(props, "dash")
	l.Bus = busMultiplier(props)
	l.Fill = boolAttr(props, "fill")
}

// SetProp stores the property string and refreshes the derived attributes.
func (r *Rect) SetProp(props string) {
	r.Prop = props
	r.Dash = intAttr(props, "dash")
	r.Bus = busMultiplier(props)
	r.Fill = boolAttr(props, "fill")
}

// SetProp stores the property string and refreshes the derived attributes.
func (a *Arc) SetProp(props string) {
	a.Prop = props
	a.Dash = intAttr(props, "dash")
	a.Bus = busMultiplier(props)
	a.Fill = boolAttr(props, "fill")
}

// SetProp stores the property string and refreshes the derived attributes.
func (p *Polygon) SetProp(props string) {
	p.Prop = props
	p.Dash = intAttr(props, "dash")
	p.Bus = busMultiplier(props)
	p.Fill = boolAttr(props, "fill")
}

// SetProp stores the property string and refreshes the derived layer,
// font, and alignment attributes.
func (t *Text) SetProp(props string) {
	t.Prop = props
	t.Layer = TextLayer
	if v := prop.GetTokValue(props, "layer", false); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < NLayers {
			t.Layer = n
		}
	}
	t.Font = prop.GetTokValue(props, "font", false)
	t.HCenter = boolAttr(props, "hcenter")
	t.VCenter = boolAttr(props, "vcenter")
}

// SetProp stores the property string and refreshes the cached label.
func (inst *Instance) SetProp(props string) {
	inst.Prop = props
	inst.Lab = prop.GetTokValue(props, "lab", false)
}

// Refdes returns the instance's name= attribute, its reference designator.
func (inst *Instance) Refdes() string {
	return prop.GetTokValue(inst.Prop, "name", false)
}

// SetGlobals populates a symbol's derived fields from its global
// attribute string: the type tag, the instance template, and the
// per-dialect netlist format templates.
func (s *Symbol) SetGlobals(props string) {
	s.Prop = props
	s.Type = prop.GetTokValue(props, "type", false)
	s.Template = prop.GetTokValue(props, "template", false)
	for attr, dialect := range formatAttrs {
		if v := prop.GetTokValue(props, attr, false); v != "" {
			if s.Formats == nil {
				s.Formats = make(map[string]string)
			}
			s.Formats[dialect] = v
		}
	}
}

// IsPinOrLabel reports whether the symbol acts as a net label or port pin
// rather than a real component.
func (s *Symbol) IsPinOrLabel() bool {
	switch s.Type {
	case TypeLabel, TypeInputPin, TypeOutputPin, TypeBidirPin:
		return true
	}
	return false
}

// PinCount returns the number of pin rectangles on the pin layer.
func (s *Symbol) PinCount() int {
	return len(s.Rects[PinLayer])
}

// PinName returns the name= attribute of pin i, or the empty string.
func (s *Symbol) PinName(i int) string {
	if i < 0 || i >= s.PinCount() {
		return ""
	}
	return prop.GetTokValue(s.Rects[PinLayer][i].Prop, "name", false)
}

// PinPos returns the local coordinates of pin i, the center of its pin
// rectangle.
func (s *Symbol) PinPos(i int) (float64, float64) {
	r := &s.Rects[PinLayer][i]
	return (r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2
}

// Transform maps local symbol coordinates to world coordinates for this
// instance: horizontal flip about the origin, then a quarter-turn
// rotation, then translation to the instance origin.
func (inst *Instance) Transform(x, y float64) (float64, float64) {
	if inst.Flip != 0 {
		x = -x
	}
	switch inst.Rot & 3 {
	case 1:
		x, y = -y, x
	case 2:
		x, y = -x, -y
	case 3:
		x, y = y, -x
	}
	return x + inst.X, y + inst.Y
}

// busMultiplier derives the bus width multiplier from a bus= attribute.
// Numeric values are taken as-is; a bare or boolean bus attribute counts
// as 1; anything else is 0.
func busMultiplier(props string) int {
	v := prop.GetTokValue(props, "bus", false)
	if v == "" {
		if prop.HasToken(props, "bus") {
			return 1
		}
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	if v == "true" {
		return 1
	}
	return 0
}

// intAttr parses an integer attribute, returning 0 when absent or
// malformed.
func intAttr(props, key string) int {
	v := prop.GetTokValue(props, key, false)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// boolAttr reports whether an attribute is "true" or a nonzero integer.
func boolAttr(props, key string) bool {
	v := prop.GetTokValue(props, key, false)
	if v == "true" {
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n != 0
}
