// Package netlist derives electrical connectivity from raw schematic
// geometry: unlabeled wire segments and placed component instances
// become named nets.
//
// # Overview
//
// One analysis pass:
//  1. Group touching wires with union-find. Two wires touch when their
//     endpoints coincide within the EPS tolerance, or when an endpoint
//     of one lies on the other's segment (a T junction).
//  2. Name groups from label and port pin instances attached to them.
//  3. Let a wire's own lab= property override the group name.
//  4. Resolve every pin of every non-label instance to the net its
//     transformed world position touches.
//  5. Auto-name any remaining anonymous group "#net<k>".
//
// Results are written back onto the drawing (Wire.Node and
// Instance.Nodes) and returned as a Netlist of per-net member lists.
//
// # Usage
//
//	d, err := sch.LoadDrawing("adder.sch")
//	// resolve instance symbols through the library first
//	nl := netlist.Analyze(d)
//	for _, net := range nl.Nets {
//		fmt.Printf("%s: %d members\n", net.Name, len(net.Members))
//	}
//	jsonData, _ := nl.ExportJSON(d)
//
// # Determinism
//
// Net naming and membership order depend only on wire and instance
// order in the drawing. Auto-assigned "#net<k>" counters restart at
// zero for every Analyze call; no state is shared between runs, so
// independent analyses never contaminate each other.
//
// # Performance
//
// Wire touch detection compares all wire pairs, O(W²) in wire count,
// and pin resolution scans wires per pin, O(I·P·W). Fine up to a few
// thousand wires; beyond that, bucketing endpoints through the spatial
// index before the pairwise pass is the known cure.
//
// # Limitations
//
//   - Wires crossing without a shared endpoint or T junction are not
//     connected, matching drawing semantics.
//   - Instances whose symbol is unresolved contribute no connectivity.
//   - Bus labels are carried as plain names; ranges are not expanded.
//
// The pass never fails: malformed or missing symbol data degrades to
// fewer resolved connections.
package netlist
