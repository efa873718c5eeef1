package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/netlist"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/prop"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
)

var (
	headingColor = color.New(color.Bold)
	netColor     = color.New(color.FgCyan)
)

var schCmd = &cobra.Command{
	Use:   "sch",
	Short: "Schematic file operations",
	Long:  `Commands for working with xschem schematic files (.sch)`,
}

var schInfoCmd = &cobra.Command{
	Use:   "info <schematic.sch> [component]",
	Short: "Show schematic information",
	Long: `Display information about an xschem schematic file.

Without component argument: shows schematic summary
With component argument: shows details for that specific component`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSchInfo,
}

var schPropsCmd = &cobra.Command{
	Use:   "props <schematic.sch> <key>",
	Short: "Query a property key across the schematic",
	Long: `Print the value of a property key wherever it appears: on the
schematic globals, on instances, and on wires. The first occurrence of
the key within each property string wins.`,
	Args: cobra.ExactArgs(2),
	RunE: runSchProps,
}

var schFmtWrite bool

var schFmtCmd = &cobra.Command{
	Use:   "fmt <schematic.sch>",
	Short: "Rewrite a schematic in canonical form",
	Long: `Parse a schematic and write it back out in canonical record
order with normalized coordinates. By default the result goes to
stdout; with -w the file is rewritten in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchFmt,
}

func init() {
	rootCmd.AddCommand(schCmd)
	schCmd.AddCommand(schInfoCmd)
	schCmd.AddCommand(schPropsCmd)
	schCmd.AddCommand(schFmtCmd)

	schFmtCmd.Flags().BoolVarP(&schFmtWrite, "write", "w", false, "rewrite the file in place")
}

func runSchInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := loadDrawing(args[0], cfg)
	if err != nil {
		return fmt.Errorf("error parsing schematic: %w", err)
	}

	if len(args) >= 2 {
		return showComponentDetails(d, args[1])
	}

	showSchemSummary(d, args[0])
	return nil
}

func showSchemSummary(d *sch.Drawing, filename string) {
	fmt.Printf("Schematic: %s\n", filename)
	if d.Version != "" {
		fmt.Printf("Version: %s\n", d.Version)
	}
	fmt.Println()

	nl := netlist.Analyze(d)

	headingColor.Println("Statistics:")
	fmt.Printf("  Wires: %d\n", len(d.Wires))
	fmt.Printf("  Lines: %d\n", countLayers(d.Lines[:]))
	fmt.Printf("  Rectangles: %d\n", countLayers(d.Rects[:]))
	fmt.Printf("  Arcs: %d\n", countLayers(d.Arcs[:]))
	fmt.Printf("  Polygons: %d\n", countLayers(d.Polygons[:]))
	fmt.Printf("  Texts: %d\n", len(d.Texts))
	fmt.Printf("  Instances: %d\n", len(d.Instances))
	fmt.Printf("  Symbols loaded: %d\n", len(d.Symbols))
	fmt.Printf("  Nets: %d\n", nl.NetCount())
	fmt.Println()

	// Component list grouped by reference prefix
	if len(d.Instances) > 0 {
		headingColor.Println("Components:")

		byPrefix := make(map[string][]string)
		for i := range d.Instances {
			ref := d.Instances[i].Refdes()
			if ref != "" {
				prefix := getRefPrefix(ref)
				byPrefix[prefix] = append(byPrefix[prefix], ref)
			}
		}

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

	// Named nets (everything except auto-assigned #net<k> names)
	var labels []string
	for _, net := range nl.Nets {
		if !strings.HasPrefix(net.Name, "#net") {
			labels = append(labels, net.Name)
		}
	}
	if len(labels) > 0 {
		headingColor.Println("Net Labels:")
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Printf("  %s\n", netColor.Sprint(l))
		}
	}
}

func showComponentDetails(d *sch.Drawing, ref string) error {
	var inst *sch.Instance
	for i := range d.Instances {
		if d.Instances[i].Refdes() == ref {
			inst = &d.Instances[i]
			break
		}
	}
	if inst == nil {
		return fmt.Errorf("component '%s' not found", ref)
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

	attrs := prop.Parse(inst.Prop)
	if attrs.Len() > 0 {
		headingColor.Println("Properties:")
		for _, key := range attrs.Keys() {
			fmt.Printf("  %s: %s\n", key, attrs.Get(key))
		}
		fmt.Println()
	}

	sym := d.SymbolOf(inst)
	if sym == nil {
		fmt.Println("Symbol definition not resolved.")
		return nil
	}
	if sym.Type != "" {
		fmt.Printf("Type: %s\n", sym.Type)
	}
	if n := sym.PinCount(); n > 0 {
		headingColor.Println("Pins:")
		for i := 0; i < n; i++ {
			x, y := inst.Transform(sym.PinPos(i))
			node := ""
			if i < len(inst.Nodes) {
				node = inst.Nodes[i]
			}
			if node == "" {
				node = "-"
			}
			fmt.Printf("  %s at (%.6g, %.6g): %s\n", sym.PinName(i), x, y, netColor.Sprint(node))
		}
	}

	return nil
}

func runSchProps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := loadDrawing(args[0], cfg)
	if err != nil {
		return err
	}
	key := args[1]

	if prop.HasToken(d.SchProp, key) {
		fmt.Printf("schematic: %s\n", prop.GetTokValue(d.SchProp, key, false))
	}
	for i := range d.Instances {
		inst := &d.Instances[i]
		if !prop.HasToken(inst.Prop, key) {
			continue
		}
		name := inst.Refdes()
		if name == "" {
			name = fmt.Sprintf("instance %d", i)
		}
		fmt.Printf("%s: %s\n", name, prop.GetTokValue(inst.Prop, key, false))
	}
	for i := range d.Wires {
		if !prop.HasToken(d.Wires[i].Prop, key) {
			continue
		}
		fmt.Printf("wire %d: %s\n", i, prop.GetTokValue(d.Wires[i].Prop, key, false))
	}
	return nil
}

func runSchFmt(cmd *cobra.Command, args []string) error {
	d, err := sch.LoadDrawing(args[0])
	if err != nil {
		return err
	}
	if schFmtWrite {
		return sch.SaveDrawing(args[0], d)
	}
	return sch.WriteDrawing(os.Stdout, d)
}

func countLayers[T any](layers [][]T) int {
	total := 0
	for _, l := range layers {
		total += len(l)
	}
	return total
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
