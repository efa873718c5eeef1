package netlist

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
)

// MemberKind distinguishes the two kinds of net members.
type MemberKind int

const (
	MemberWire MemberKind = iota
	MemberPin
)

func (k MemberKind) String() string {
	switch k {
	case MemberWire:
		return "wire"
	case MemberPin:
		return "pin"
	}
	return "unknown"
}

// Member is one element of a net: a wire, or one pin of an instance.
type Member struct {
	Kind     MemberKind
	Wire     int // wire index, valid for MemberWire
	Instance int // instance index, valid for MemberPin
	Pin      int // pin index, valid for MemberPin
}

// Net is a maximal set of electrically connected wires and pins,
// identified by a name.
type Net struct {
	Name    string
	Members []Member
}

// Netlist is the result of one Analyze run.
type Netlist struct {
	Nets   []*Net
	byName map[string]*Net
}

// Net returns the net with the given name, or nil.
func (nl *Netlist) Net(name string) *Net {
	return nl.byName[name]
}

// NetCount returns the number of named nets.
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// ExportJSON exports the netlist to JSON format, with wire indices and
// pin references spelled out per net.
func (nl *Netlist) ExportJSON(d *sch.Drawing) ([]byte, error) {
	type pinRef struct {
		Refdes string `json:"refdes"`
		Pin    string `json:"pin"`
	}
	type netOut struct {
		Name  string   `json:"name"`
		Wires []int    `json:"wires"`
		Pins  []pinRef `json:"pins"`
	}
	output := struct {
		Version  string   `json:"version"`
		NetCount int      `json:"net_count"`
		Nets     []netOut `json:"nets"`
	}{
		Version:  "1.0",
		NetCount: nl.NetCount(),
		Nets:     make([]netOut, 0, len(nl.Nets)),
	}

	for _, net := range nl.Nets {
		n := netOut{Name: net.Name, Wires: []int{}, Pins: []pinRef{}}
		for _, m := range net.Members {
			switch m.Kind {
			case MemberWire:
				n.Wires = append(n.Wires, m.Wire)
			case MemberPin:
				inst := &d.Instances[m.Instance]
				ref := pinRef{Refdes: inst.Refdes()}
				if sym := d.SymbolOf(inst); sym != nil {
					ref.Pin = sym.PinName(m.Pin)
				}
				n.Pins = append(n.Pins, ref)
			}
		}
		output.Nets = append(output.Nets, n)
	}

	return json.MarshalIndent(output, "", "  ")
}

// defaultSpiceFormat renders instances whose symbol declares no spice
// format template.
const defaultSpiceFormat = "@name @pinlist @symname"

// ExportSpice writes a SPICE netlist: one card per non-label instance,
// rendered through the symbol's spice format template, followed by the
// schematic's global SPICE text. The drawing must have been analyzed so
// that instance pins carry net names.
func ExportSpice(w io.Writer, d *sch.Drawing) error {
	f, err := NewFormatter()
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "** spice netlist")
	for i := range d.Instances {
		inst := &d.Instances[i]
		sym := d.SymbolOf(inst)
		if sym == nil || sym.IsPinOrLabel() {
			continue
		}
		format := sym.Formats[sch.FormatSpice]
		if format == "" {
			format = defaultSpiceFormat
		}
		tpl, err := f.Parse(format)
		if err != nil {
			return fmt.Errorf("failed to parse format of %s: %w", sym.Name, err)
		}
		if line := tpl.Expand(d, i); line != "" {
			fmt.Fprintln(bw, line)
		}
	}
	if d.SchProp != "" {
		fmt.Fprintln(bw, d.SchProp)
	}
	fmt.Fprintln(bw, ".end")
	return bw.Flush()
}

// ExportTedax writes a tEDAx netlist block: one conn line per pin
// member of every net.
func ExportTedax(w io.Writer, d *sch.Drawing, nl *Netlist, name string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "tEDAx v1")
	fmt.Fprintf(bw, "begin netlist v1 %s\n", name)
	for _, net := range nl.Nets {
		for _, m := range net.Members {
			if m.Kind != MemberPin {
				continue
			}
			inst := &d.Instances[m.Instance]
			pin := ""
			if sym := d.SymbolOf(inst); sym != nil {
				pin = sym.PinName(m.Pin)
			}
			fmt.Fprintf(bw, "\tconn %s %s %s\n", net.Name, inst.Refdes(), pin)
		}
	}
	fmt.Fprintln(bw, "end netlist")
	return bw.Flush()
}
