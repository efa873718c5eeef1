package sch

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

// buildSample exercises every record type with awkward property content.
func buildSample() *Drawing {
	d := NewDrawing()
	d.SetVersion("xschem version=3.4.4 file_version=1.2")
	d.VHDLProp = "architecture arch_top of top is"
	d.SymProp = "type=subcircuit"
	d.VerilogProp = "module top;"
	d.SchProp = "value=\"10 k\" dotted.name=1"
	d.TedaxProp = "tEDAx v1"
	d.SpectreProp = "simulator lang=spectre"

	d.AddLine(4, -40, 0, 40, 0, "dash=2")
	d.AddLine(6, 0, 0, 12.5, 97.25, "")
	d.AddRect(2, -100, -50, 100, 50, "fill=true")
	d.AddRect(5, -2.5, -22.5, 2.5, -17.5, "name=p dir=inout")
	d.AddArc(3, 0, 0, 28.5, 45, 270, "")
	d.AddPolygon(3, []Point{{0, 0}, {10, 0}, {10, 10}, {0.25, 10}}, "fill=true")
	d.AddText("hello {braced} \\ world", 50, -10, 2, 1, 0.4, 0.2, "layer=7 font=Sans")
	d.AddText("multi\nline", 0, 100, 0, 0, 1, 1, "")
	d.AddWire(10, 0, 0, 0, "lab=a value=\"10 k\"")
	d.AddWire(160.123456789012, -30, 110, -30, "bus=8")
	d.AddInstance("devices/res.sym", 70.5, -40.25, 3, 1, "name=R1 value={1k {5%}}")
	return d
}

func roundTrip(t *testing.T, want *Drawing) *Drawing {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteDrawing(&buf, want); err != nil {
		t.Fatalf("WriteDrawing failed: %v", err)
	}
	got, err := ReadDrawing(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadDrawing of written output failed: %v\noutput:\n%s", err, buf.String())
	}
	return got
}

func TestRoundTripEveryRecordType(t *testing.T) {
	want := buildSample()
	got := roundTrip(t, want)

	if got.Version != want.Version || got.FileVersion != want.FileVersion {
		t.Errorf("version = %q/%q, want %q/%q", got.Version, got.FileVersion, want.Version, want.FileVersion)
	}
	if got.VHDLProp != want.VHDLProp || got.SymProp != want.SymProp ||
		got.VerilogProp != want.VerilogProp || got.SchProp != want.SchProp ||
		got.TedaxProp != want.TedaxProp || got.SpectreProp != want.SpectreProp {
		t.Errorf("global props did not round trip")
	}

	if !reflect.DeepEqual(got.Wires, want.Wires) {
		t.Errorf("Wires = %+v, want %+v", got.Wires, want.Wires)
	}
	if !reflect.DeepEqual(got.Lines, want.Lines) {
		t.Errorf("Lines did not round trip")
	}
	if !reflect.DeepEqual(got.Rects, want.Rects) {
		t.Errorf("Rects did not round trip")
	}
	if !reflect.DeepEqual(got.Arcs, want.Arcs) {
		t.Errorf("Arcs did not round trip")
	}
	if !reflect.DeepEqual(got.Polygons, want.Polygons) {
		t.Errorf("Polygons did not round trip")
	}
	if !reflect.DeepEqual(got.Texts, want.Texts) {
		t.Errorf("Texts = %+v, want %+v", got.Texts, want.Texts)
	}
	if !reflect.DeepEqual(got.Instances, want.Instances) {
		t.Errorf("Instances = %+v, want %+v", got.Instances, want.Instances)
	}
}

func TestRoundTripPropertyEscapes(t *testing.T) {
	props := `name=R1 note={uses \{special\} chars} path=C:\temp value="10 k"`
	d := NewDrawing()
	d.AddWire(0, 0, 10, 0, props)

	got := roundTrip(t, d)
	if len(got.Wires) != 1 {
		t.Fatalf("len(Wires) = %d, want 1", len(got.Wires))
	}
	if got.Wires[0].Prop != props {
		t.Errorf("Prop = %q, want %q", got.Wires[0].Prop, props)
	}
}

func TestWriteEscapesBracedText(t *testing.T) {
	d := NewDrawing()
	d.AddText("hello {braced} \\ world", 0, 0, 0, 0, 1, 1, "")

	var buf bytes.Buffer
	if err := WriteDrawing(&buf, d); err != nil {
		t.Fatalf("WriteDrawing failed: %v", err)
	}
	if !strings.Contains(buf.String(), `{hello \{braced\} \\ world}`) {
		t.Errorf("escaped text not found in output:\n%s", buf.String())
	}
}

func TestWriteFloatPrecision(t *testing.T) {
	coords := []float64{0.1, 123456.789012345, 1e+20, -0.000244140625, 28.5}
	d := NewDrawing()
	for _, c := range coords {
		d.AddWire(c, 0, c+1, 0, "")
	}

	got := roundTrip(t, d)
	if len(got.Wires) != len(coords) {
		t.Fatalf("len(Wires) = %d, want %d", len(got.Wires), len(coords))
	}
	for i, c := range coords {
		if got.Wires[i].X1 != c {
			t.Errorf("Wires[%d].X1 = %v, want %v", i, got.Wires[i].X1, c)
		}
	}
}

func TestWriteDeterministic(t *testing.T) {
	d := buildSample()

	var a, b bytes.Buffer
	if err := WriteDrawing(&a, d); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteDrawing(&b, d); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("two writes of the same drawing differ")
	}
}

func TestWriteLayerOrder(t *testing.T) {
	d := NewDrawing()
	d.AddLine(7, 0, 0, 1, 1, "")
	d.AddLine(2, 0, 0, 1, 1, "")

	var buf bytes.Buffer
	if err := WriteDrawing(&buf, d); err != nil {
		t.Fatalf("WriteDrawing failed: %v", err)
	}
	out := buf.String()
	low := strings.Index(out, "L 2 ")
	high := strings.Index(out, "L 7 ")
	if low < 0 || high < 0 || low > high {
		t.Errorf("layers not written in ascending order:\n%s", out)
	}
}

func TestWriteSpectrePropOnlyWhenSet(t *testing.T) {
	d := NewDrawing()
	var buf bytes.Buffer
	if err := WriteDrawing(&buf, d); err != nil {
		t.Fatalf("WriteDrawing failed: %v", err)
	}
	if strings.Contains(buf.String(), "F {") {
		t.Errorf("empty spectre prop written:\n%s", buf.String())
	}

	d.SpectreProp = "simulator lang=spectre"
	buf.Reset()
	if err := WriteDrawing(&buf, d); err != nil {
		t.Fatalf("WriteDrawing failed: %v", err)
	}
	if !strings.Contains(buf.String(), "F {simulator lang=spectre}") {
		t.Errorf("spectre prop missing:\n%s", buf.String())
	}
}

func TestEmbeddedSymbolWrittenButNotReadBack(t *testing.T) {
	d := NewDrawing()
	inst := d.AddInstance("res.sym", 0, 0, 0, 0, "name=R1 embed=true")
	emb := &Symbol{Name: "res.sym"}
	emb.SetGlobals("type=resistor")
	emb.Lines[4] = []Line{{X1: 0, Y1: -20, X2: 0, Y2: 20}}
	inst.Embed = emb

	var buf bytes.Buffer
	if err := WriteDrawing(&buf, d); err != nil {
		t.Fatalf("WriteDrawing failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[\n") || !strings.Contains(out, "]\n") {
		t.Fatalf("embedded block markers missing:\n%s", out)
	}
	if !strings.Contains(out, "K {type=resistor}") {
		t.Errorf("embedded symbol globals missing:\n%s", out)
	}

	got, err := ReadDrawing(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ReadDrawing of embedded output failed: %v", err)
	}
	if len(got.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(got.Instances))
	}
	// Blocks are skipped on read; the embedded definition does not
	// survive a round trip.
	if got.Instances[0].Embed != nil {
		t.Errorf("Embed survived round trip, want nil")
	}
	for layer := 0; layer < NLayers; layer++ {
		if len(got.Lines[layer]) != 0 {
			t.Errorf("embedded geometry leaked into drawing")
		}
	}
}

func TestWriteSymbolRoundTrip(t *testing.T) {
	s := &Symbol{Name: "res.sym"}
	s.SetGlobals(`type=resistor format="@name @pinlist @value" template="name=R1 value=1k"`)
	s.Lines[4] = []Line{{X1: 0, Y1: -20, X2: 0, Y2: 20}}
	s.Rects[PinLayer] = []Rect{
		{X1: -2.5, Y1: -22.5, X2: 2.5, Y2: -17.5, Prop: "name=p dir=inout"},
		{X1: -2.5, Y1: 17.5, X2: 2.5, Y2: 22.5, Prop: "name=m dir=inout"},
	}
	s.Texts = []Text{{Txt: "R", X: 5, Y: -5, XScale: 0.3, YScale: 0.3, Layer: TextLayer}}
	s.ComputeBBox()

	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteSymbol(s); err != nil {
		t.Fatalf("WriteSymbol failed: %v", err)
	}
	got, err := ReadSymbol(&buf, "res.sym")
	if err != nil {
		t.Fatalf("ReadSymbol of written output failed: %v", err)
	}

	if got.Type != s.Type || got.Template != s.Template {
		t.Errorf("globals = %q/%q, want %q/%q", got.Type, got.Template, s.Type, s.Template)
	}
	if !reflect.DeepEqual(got.Formats, s.Formats) {
		t.Errorf("Formats = %v, want %v", got.Formats, s.Formats)
	}
	if !reflect.DeepEqual(got.Lines, s.Lines) {
		t.Errorf("Lines did not round trip")
	}
	if !reflect.DeepEqual(got.Rects, s.Rects) {
		t.Errorf("Rects did not round trip")
	}
	if !reflect.DeepEqual(got.Texts, s.Texts) {
		t.Errorf("Texts = %+v, want %+v", got.Texts, s.Texts)
	}
	if got.BBox != s.BBox {
		t.Errorf("BBox = %+v, want %+v", got.BBox, s.BBox)
	}
}
