package netlist

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
)

func TestMemberKindString(t *testing.T) {
	if got := MemberWire.String(); got != "wire" {
		t.Errorf("MemberWire.String() = %q, want %q", got, "wire")
	}
	if got := MemberPin.String(); got != "pin" {
		t.Errorf("MemberPin.String() = %q, want %q", got, "pin")
	}
}

func TestNetLookup(t *testing.T) {
	d := sch.NewDrawing()
	d.AddWire(0, 0, 100, 0, "lab=CLK")
	nl := Analyze(d)

	if nl.Net("CLK") == nil {
		t.Error("Net(CLK) = nil, want net")
	}
	if nl.Net("nope") != nil {
		t.Error("Net(nope) != nil, want nil")
	}
}

func TestExportJSON(t *testing.T) {
	d := sch.NewDrawing()
	place(d, resSym(), 100, 50, 0, 0, "name=R1 value=1k")
	d.AddWire(100, 30, 200, 30, "lab=IN")
	d.AddWire(100, 70, 200, 70, "lab=OUT")
	nl := Analyze(d)

	data, err := nl.ExportJSON(d)
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	var out struct {
		Version  string `json:"version"`
		NetCount int    `json:"net_count"`
		Nets     []struct {
			Name  string `json:"name"`
			Wires []int  `json:"wires"`
			Pins  []struct {
				Refdes string `json:"refdes"`
				Pin    string `json:"pin"`
			} `json:"pins"`
		} `json:"nets"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if out.Version != "1.0" {
		t.Errorf("version = %q, want %q", out.Version, "1.0")
	}
	if out.NetCount != 2 || len(out.Nets) != 2 {
		t.Fatalf("net_count = %d with %d nets, want 2", out.NetCount, len(out.Nets))
	}
	in := out.Nets[0]
	if in.Name != "IN" {
		t.Errorf("nets[0].name = %q, want %q", in.Name, "IN")
	}
	if len(in.Wires) != 1 || in.Wires[0] != 0 {
		t.Errorf("nets[0].wires = %v, want [0]", in.Wires)
	}
	if len(in.Pins) != 1 || in.Pins[0].Refdes != "R1" || in.Pins[0].Pin != "p" {
		t.Errorf("nets[0].pins = %v, want [{R1 p}]", in.Pins)
	}
	if out.Nets[1].Name != "OUT" {
		t.Errorf("nets[1].name = %q, want %q", out.Nets[1].Name, "OUT")
	}
}

func TestExportSpice(t *testing.T) {
	d := sch.NewDrawing()
	place(d, resSym(), 100, 50, 0, 0, "name=R1 value=1k")
	place(d, labelSym(), 100, 30, 0, 0, "name=l1 lab=IN")
	d.AddWire(100, 30, 200, 30, "")
	d.AddWire(100, 70, 200, 70, "lab=OUT")
	d.SchProp = ".probe"
	Analyze(d)

	var buf bytes.Buffer
	if err := ExportSpice(&buf, d); err != nil {
		t.Fatalf("ExportSpice() error = %v", err)
	}

	want := "** spice netlist\n" +
		"R1 IN OUT 1k\n" +
		".probe\n" +
		".end\n"
	if got := buf.String(); got != want {
		t.Errorf("ExportSpice() =\n%s\nwant\n%s", got, want)
	}
}

func TestExportSpiceDefaultFormat(t *testing.T) {
	d := sch.NewDrawing()
	sym := &sch.Symbol{Name: "conn.sym"}
	sym.Rects[sch.PinLayer] = append(sym.Rects[sch.PinLayer], sch.Rect{
		X1: -2.5, Y1: -2.5, X2: 2.5, Y2: 2.5, Prop: "name=1 dir=inout",
	})
	sym.SetGlobals("type=connector")
	place(d, sym, 0, 0, 0, 0, "name=J1")
	d.AddWire(0, 0, 100, 0, "lab=N")
	Analyze(d)

	var buf bytes.Buffer
	if err := ExportSpice(&buf, d); err != nil {
		t.Fatalf("ExportSpice() error = %v", err)
	}
	if !strings.Contains(buf.String(), "J1 N conn\n") {
		t.Errorf("output missing default-format card:\n%s", buf.String())
	}
}

func TestExportTedax(t *testing.T) {
	d := sch.NewDrawing()
	place(d, resSym(), 100, 50, 0, 0, "name=R1 value=1k")
	d.AddWire(100, 30, 200, 30, "lab=IN")
	d.AddWire(100, 70, 200, 70, "lab=OUT")
	nl := Analyze(d)

	var buf bytes.Buffer
	if err := ExportTedax(&buf, d, nl, "board"); err != nil {
		t.Fatalf("ExportTedax() error = %v", err)
	}

	want := "tEDAx v1\n" +
		"begin netlist v1 board\n" +
		"\tconn IN R1 p\n" +
		"\tconn OUT R1 m\n" +
		"end netlist\n"
	if got := buf.String(); got != want {
		t.Errorf("ExportTedax() =\n%s\nwant\n%s", got, want)
	}
}
