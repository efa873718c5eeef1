package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/netlist"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/symlib"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: net-info <schematic.sch> [net_name]")
		fmt.Println("\nExamples:")
		fmt.Println("  net-info counter.sch           # List all nets")
		fmt.Println("  net-info counter.sch GND       # Show GND net details")
		os.Exit(1)
	}

	filename := os.Args[1]

	d, err := sch.LoadDrawing(filename)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	loader := symlib.NewLoader(symlib.NewResolver())
	loader.ResolveInstances(d, filepath.Dir(filename))

	nl := netlist.Analyze(d)

	// If net name provided, show details for that net
	if len(os.Args) >= 3 {
		netName := os.Args[2]
		showNetDetails(d, nl, netName)
		return
	}

	// Otherwise, list all nets
	listAllNets(nl)
}

func listAllNets(nl *netlist.Netlist) {
	fmt.Printf("Schematic: %d nets\n\n", nl.NetCount())
	fmt.Printf("%-30s %6s %6s\n", "Net Name", "Wires", "Pins")
	fmt.Println("─────────────────────────────────────────────")

	// Get all net names and sort them
	netNames := make([]string, 0, len(nl.Nets))
	for _, net := range nl.Nets {
		netNames = append(netNames, net.Name)
	}
	sort.Strings(netNames)

	for _, netName := range netNames {
		net := nl.Net(netName)
		wires, pins := 0, 0
		for _, m := range net.Members {
			switch m.Kind {
			case netlist.MemberWire:
				wires++
			case netlist.MemberPin:
				pins++
			}
		}
		fmt.Printf("%-30s %6d %6d\n", netName, wires, pins)
	}
}

func showNetDetails(d *sch.Drawing, nl *netlist.Netlist, netName string) {
	net := nl.Net(netName)
	if net == nil {
		fmt.Printf("Net '%s' not found\n", netName)
		os.Exit(1)
	}

	fmt.Printf("Net: %s\n\n", net.Name)

	var wires, pins []netlist.Member
	for _, m := range net.Members {
		switch m.Kind {
		case netlist.MemberWire:
			wires = append(wires, m)
		case netlist.MemberPin:
			pins = append(pins, m)
		}
	}

	// Show wires
	fmt.Printf("Wires (%d):\n", len(wires))
	for _, m := range wires {
		w := &d.Wires[m.Wire]
		fmt.Printf("  Wire %d: (%.6g, %.6g) to (%.6g, %.6g)\n",
			m.Wire, w.X1, w.Y1, w.X2, w.Y2)
	}

	// Show pins
	fmt.Printf("\nPins (%d):\n", len(pins))
	for _, m := range pins {
		inst := &d.Instances[m.Instance]
		ref := inst.Refdes()
		if ref == "" {
			ref = fmt.Sprintf("instance %d", m.Instance)
		}
		sym := d.SymbolOf(inst)
		if sym == nil {
			fmt.Printf("  %s pin %d\n", ref, m.Pin)
			continue
		}
		x, y := inst.Transform(sym.PinPos(m.Pin))
		fmt.Printf("  %s pin %s at (%.6g, %.6g)\n",
			ref, sym.PinName(m.Pin), x, y)
	}
}
