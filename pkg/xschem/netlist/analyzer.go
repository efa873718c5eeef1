package netlist

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/prop"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
)

// EPS is the geometric tolerance for endpoint and collinearity matching.
const EPS = 0.5

// placeholderPrefix marks a pin attached to a wire group that had no
// name at resolution time; assignAutoNames rewrites these.
const placeholderPrefix = "#wire_group_"

// analyzer holds the per-run state of one connectivity pass.
type analyzer struct {
	d       *sch.Drawing
	uf      *unionFind
	names   map[int]string // group root -> net name
	counter int            // auto-name counter, local to this run
}

// Analyze computes connectivity for the drawing: wires are grouped by
// geometric touch, groups are named from label instances, wire lab=
// properties, or an auto-assigned "#net<k>", and every non-label
// instance pin is resolved to the net it touches. Results are written
// back onto the drawing (Wire.Node, Instance.Nodes) and returned as a
// Netlist. The pass never fails; missing symbol or pin data degrades to
// fewer resolved connections.
func Analyze(d *sch.Drawing) *Netlist {
	a := &analyzer{
		d:     d,
		uf:    newUnionFind(len(d.Wires)),
		names: make(map[int]string),
	}
	a.mergeTouchingWires()
	a.nameFromLabelInstances()
	a.nameFromWireLabels()
	a.resolvePins()
	a.assignAutoNames()
	return a.collect()
}

// mergeTouchingWires joins the groups of every touching wire pair. All
// pairs are compared; bucketing endpoints through the spatial index
// first would cut this down for very large drawings.
func (a *analyzer) mergeTouchingWires() {
	wires := a.d.Wires
	for i := range wires {
		for j := i + 1; j < len(wires); j++ {
			if wiresTouch(&wires[i], &wires[j]) {
				a.uf.union(i, j)
			}
		}
	}
}

// nameFromLabelInstances propagates label and port pin names onto the
// wire groups their attachment points touch.
func (a *analyzer) nameFromLabelInstances() {
	for i := range a.d.Instances {
		inst := &a.d.Instances[i]
		sym := a.d.SymbolOf(inst)
		if sym == nil || !sym.IsPinOrLabel() {
			continue
		}
		lab := inst.Lab
		if lab == "" {
			lab = prop.GetTokValue(sym.Template, "lab", false)
		}
		if lab == "" {
			continue
		}
		x, y := labelPinPosition(inst, sym)
		for wi := range a.d.Wires {
			if wireTouchesPoint(&a.d.Wires[wi], x, y) {
				a.names[a.uf.find(wi)] = lab
			}
		}
	}
}

// nameFromWireLabels lets a wire's own lab= property name its group,
// overriding any label instance on the same group.
func (a *analyzer) nameFromWireLabels() {
	for i := range a.d.Wires {
		if lab := prop.GetTokValue(a.d.Wires[i].Prop, "lab", false); lab != "" {
			a.names[a.uf.find(i)] = lab
		}
	}
}

// resolvePins computes world pin positions for every non-label instance
// and attaches each pin to the net of the first touching wire. Pins on
// a still-anonymous group record a placeholder; pins touching nothing
// stay empty.
func (a *analyzer) resolvePins() {
	for i := range a.d.Instances {
		inst := &a.d.Instances[i]
		sym := a.d.SymbolOf(inst)
		if sym == nil || sym.IsPinOrLabel() {
			continue
		}
		n := sym.PinCount()
		if n == 0 {
			continue
		}
		inst.Nodes = make([]string, n)
		for p := 0; p < n; p++ {
			x, y := inst.Transform(sym.PinPos(p))
			wi := a.touchingWire(x, y)
			if wi < 0 {
				continue
			}
			root := a.uf.find(wi)
			if name, ok := a.names[root]; ok {
				inst.Nodes[p] = name
			} else {
				inst.Nodes[p] = placeholderPrefix + strconv.Itoa(root)
			}
		}
	}
}

// touchingWire returns the lowest-indexed wire touching the point,
// or -1.
func (a *analyzer) touchingWire(x, y float64) int {
	for i := range a.d.Wires {
		if wireTouchesPoint(&a.d.Wires[i], x, y) {
			return i
		}
	}
	return -1
}

// assignAutoNames names every still-anonymous group "#net<k>", with k
// increasing over groups in order of their first member wire, then
// writes the final names onto wires and rewrites pin placeholders.
func (a *analyzer) assignAutoNames() {
	for i := range a.d.Wires {
		root := a.uf.find(i)
		if _, ok := a.names[root]; !ok {
			a.names[root] = fmt.Sprintf("#net%d", a.counter)
			a.counter++
		}
	}
	for i := range a.d.Wires {
		a.d.Wires[i].Node = a.names[a.uf.find(i)]
	}
	for i := range a.d.Instances {
		nodes := a.d.Instances[i].Nodes
		for p, node := range nodes {
			if root, ok := placeholderRoot(node); ok {
				nodes[p] = a.names[root]
			}
		}
	}
}

// collect builds the per-net membership lists: wires in index order,
// then instance pins.
func (a *analyzer) collect() *Netlist {
	nl := &Netlist{byName: make(map[string]*Net)}
	add := func(name string, m Member) {
		if name == "" {
			return
		}
		net, ok := nl.byName[name]
		if !ok {
			net = &Net{Name: name}
			nl.byName[name] = net
			nl.Nets = append(nl.Nets, net)
		}
		net.Members = append(net.Members, m)
	}
	for i := range a.d.Wires {
		add(a.d.Wires[i].Node, Member{Kind: MemberWire, Wire: i})
	}
	for i := range a.d.Instances {
		for p, node := range a.d.Instances[i].Nodes {
			add(node, Member{Kind: MemberPin, Instance: i, Pin: p})
		}
	}
	return nl
}

// labelPinPosition returns the world attachment point of a label: its
// single pin when it has one, its origin otherwise.
func labelPinPosition(inst *sch.Instance, sym *sch.Symbol) (float64, float64) {
	if sym.PinCount() > 0 {
		return inst.Transform(sym.PinPos(0))
	}
	return inst.X, inst.Y
}

func placeholderRoot(node string) (int, bool) {
	rest, ok := strings.CutPrefix(node, placeholderPrefix)
	if !ok {
		return 0, false
	}
	root, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return root, true
}

// wiresTouch reports whether two wires are electrically joined: an
// endpoint of one coincides with an endpoint of the other within EPS,
// or an endpoint of one lies on the other's segment. The segment test
// catches T junctions that share no endpoint.
func wiresTouch(a, b *sch.Wire) bool {
	if pointsClose(a.X1, a.Y1, b.X1, b.Y1) || pointsClose(a.X1, a.Y1, b.X2, b.Y2) ||
		pointsClose(a.X2, a.Y2, b.X1, b.Y1) || pointsClose(a.X2, a.Y2, b.X2, b.Y2) {
		return true
	}
	return pointOnWire(b, a.X1, a.Y1) || pointOnWire(b, a.X2, a.Y2) ||
		pointOnWire(a, b.X1, b.Y1) || pointOnWire(a, b.X2, b.Y2)
}

// wireTouchesPoint is the pin attachment test: the point matches an
// endpoint within EPS or lies on the segment.
func wireTouchesPoint(w *sch.Wire, x, y float64) bool {
	return pointsClose(x, y, w.X1, w.Y1) ||
		pointsClose(x, y, w.X2, w.Y2) ||
		pointOnWire(w, x, y)
}

// pointOnWire reports whether the point lies on the wire within EPS:
// inside the EPS-padded bounding box, and within EPS of the segment's
// line by a cross product scaled with the segment length.
func pointOnWire(w *sch.Wire, x, y float64) bool {
	if !w.Bounds().Pad(EPS).ContainsPoint(x, y) {
		return false
	}
	dx := w.X2 - w.X1
	dy := w.Y2 - w.Y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return pointsClose(x, y, w.X1, w.Y1)
	}
	cross := dx*(y-w.Y1) - dy*(x-w.X1)
	return math.Abs(cross) <= EPS*length
}

func pointsClose(x1, y1, x2, y2 float64) bool {
	return math.Abs(x1-x2) <= EPS && math.Abs(y1-y2) <= EPS
}
