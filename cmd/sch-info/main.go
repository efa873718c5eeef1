// sch-info queries information from xschem schematic files
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/netlist"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/prop"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/symlib"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: sch-info <schematic.sch> [component]")
		fmt.Println("")
		fmt.Println("Without component argument: shows schematic summary")
		fmt.Println("With component argument: shows details for that component")
		os.Exit(1)
	}

	filename := os.Args[1]
	d, err := sch.LoadDrawing(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing schematic: %v\n", err)
		os.Exit(1)
	}

	loader := symlib.NewLoader(symlib.NewResolver())
	loader.ResolveInstances(d, filepath.Dir(filename))

	if len(os.Args) >= 3 {
		// Show details for specific component
		showComponentDetails(d, os.Args[2])
	} else {
		// Show summary
		showSummary(d, filename)
	}
}

func showSummary(d *sch.Drawing, filename string) {
	fmt.Printf("Schematic: %s\n", filename)
	if d.Version != "" {
		fmt.Printf("Version: %s\n", d.Version)
	}
	fmt.Println()

	nl := netlist.Analyze(d)

	// Statistics
	fmt.Println("Statistics:")
	fmt.Printf("  Wires: %d\n", len(d.Wires))
	fmt.Printf("  Texts: %d\n", len(d.Texts))
	fmt.Printf("  Instances: %d\n", len(d.Instances))
	fmt.Printf("  Symbols loaded: %d\n", len(d.Symbols))
	fmt.Printf("  Nets: %d\n", nl.NetCount())
	fmt.Println()

	// Component list
	if len(d.Instances) > 0 {
		fmt.Println("Components:")

		// Group by reference prefix
		byPrefix := make(map[string][]string)
		for i := range d.Instances {
			ref := d.Instances[i].Refdes()
			if ref != "" {
				prefix := getRefPrefix(ref)
				byPrefix[prefix] = append(byPrefix[prefix], ref)
			}
		}

		// Sort prefixes
		var prefixes []string
		for p := range byPrefix {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)

		for _, prefix := range prefixes {
			refs := byPrefix[prefix]
			sort.Strings(refs)
			fmt.Printf("  %s: %s\n", prefix, strings.Join(refs, ", "))
		}
		fmt.Println()
	}

	// Named nets
	var labels []string
	for _, net := range nl.Nets {
		if !strings.HasPrefix(net.Name, "#net") {
			labels = append(labels, net.Name)
		}
	}
	if len(labels) > 0 {
		fmt.Println("Net Labels:")
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Printf("  %s\n", l)
		}
	}
}

func showComponentDetails(d *sch.Drawing, ref string) {
	var inst *sch.Instance
	for i := range d.Instances {
		if d.Instances[i].Refdes() == ref {
			inst = &d.Instances[i]
			break
		}
	}
	if inst == nil {
		fmt.Fprintf(os.Stderr, "Component '%s' not found\n", ref)
		os.Exit(1)
	}

	netlist.Analyze(d)

	fmt.Printf("Component: %s\n", ref)
	fmt.Printf("Symbol: %s\n", inst.SymName)
	fmt.Printf("Position: (%.6g, %.6g)\n", inst.X, inst.Y)
	if inst.Rot != 0 {
		fmt.Printf("Rotation: %d\n", inst.Rot*90)
	}
	if inst.Flip != 0 {
		fmt.Println("Mirrored: yes")
	}
	fmt.Println()

	// Properties
	attrs := prop.Parse(inst.Prop)
	if attrs.Len() > 0 {
		fmt.Println("Properties:")
		for _, key := range attrs.Keys() {
			fmt.Printf("  %s: %s\n", key, attrs.Get(key))
		}
		fmt.Println()
	}

	sym := d.SymbolOf(inst)
	if sym != nil && sym.PinCount() > 0 {
		fmt.Println("Pins:")
		for i := 0; i < sym.PinCount(); i++ {
			x, y := inst.Transform(sym.PinPos(i))
			node := ""
			if i < len(inst.Nodes) {
				node = inst.Nodes[i]
			}
			if node == "" {
				node = "-"
			}
			fmt.Printf("  %s at (%.6g, %.6g): %s\n", sym.PinName(i), x, y, node)
		}
	}
}

func getRefPrefix(ref string) string {
	// Extract prefix (letters before numbers)
	for i, c := range ref {
		if c >= '0' && c <= '9' {
			return ref[:i]
		}
	}
	return ref
}
