package sch

import (
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/spatial"
)

// Box is re-exported from the spatial package so that model geometry and
// the location index share one bounding-box type.
type Box = spatial.Box

// Bounds returns the wire's bounding box.
func (w *Wire) Bounds() Box {
	b := spatial.NewBox()
	b.ExpandPoint(w.X1, w.Y1)
	b.ExpandPoint(w.X2, w.Y2)
	return b
}

// Bounds returns the line's bounding box.
func (l *Line) Bounds() Box {
	b := spatial.NewBox()
	b.ExpandPoint(l.X1, l.Y1)
	b.ExpandPoint(l.X2, l.Y2)
	return b
}

// Bounds returns the rectangle's bounding box.
func (r *Rect) Bounds() Box {
	b := spatial.NewBox()
	b.ExpandPoint(r.X1, r.Y1)
	b.ExpandPoint(r.X2, r.Y2)
	return b
}

// Bounds returns the arc's bounding box, taken as the full circle extent.
// Tight arc bounds are not needed for an approximate index.
func (a *Arc) Bounds() Box {
	b := spatial.NewBox()
	b.ExpandPoint(a.X-a.R, a.Y-a.R)
	b.ExpandPoint(a.X+a.R, a.Y+a.R)
	return b
}

// Bounds returns the polygon's bounding box.
func (p *Polygon) Bounds() Box {
	b := spatial.NewBox()
	for _, pt := range p.Points {
		b.ExpandPoint(pt.X, pt.Y)
	}
	return b
}

// Bounds returns the text's anchor position as a degenerate box. Real text
// extents depend on font metrics, which are a rendering concern.
func (t *Text) Bounds() Box {
	b := spatial.NewBox()
	b.ExpandPoint(t.X, t.Y)
	return b
}

// Bounds returns the instance's bounding box: the resolved symbol's box
// mapped through the instance transform, or the origin alone when the
// symbol is not resolved.
func (inst *Instance) Bounds(sym *Symbol) Box {
	b := spatial.NewBox()
	if sym == nil || sym.BBox.Empty() {
		b.ExpandPoint(inst.X, inst.Y)
		return b
	}
	corners := [4][2]float64{
		{sym.BBox.X1, sym.BBox.Y1},
		{sym.BBox.X2, sym.BBox.Y1},
		{sym.BBox.X1, sym.BBox.Y2},
		{sym.BBox.X2, sym.BBox.Y2},
	}
	for _, c := range corners {
		x, y := inst.Transform(c[0], c[1])
		b.ExpandPoint(x, y)
	}
	return b
}

// ComputeBBox recalculates the symbol's bounding box from its geometry.
func (s *Symbol) ComputeBBox() {
	b := spatial.NewBox()
	for layer := 0; layer < NLayers; layer++ {
		for i := range s.Lines[layer] {
			b.ExpandBox(s.Lines[layer][i].Bounds())
		}
		for i := range s.Rects[layer] {
			b.ExpandBox(s.Rects[layer][i].Bounds())
		}
		for i := range s.Arcs[layer] {
			b.ExpandBox(s.Arcs[layer][i].Bounds())
		}
		for i := range s.Polygons[layer] {
			b.ExpandBox(s.Polygons[layer][i].Bounds())
		}
	}
	for i := range s.Texts {
		b.ExpandBox(s.Texts[i].Bounds())
	}
	s.BBox = b
}

// BoundingBox calculates the extent of every element in the drawing.
func (d *Drawing) BoundingBox() Box {
	b := spatial.NewBox()

	for i := range d.Wires {
		b.ExpandBox(d.Wires[i].Bounds())
	}

	for layer := 0; layer < NLayers; layer++ {
		for i := range d.Lines[layer] {
			b.ExpandBox(d.Lines[layer][i].Bounds())
		}
		for i := range d.Rects[layer] {
			b.ExpandBox(d.Rects[layer][i].Bounds())
		}
		for i := range d.Arcs[layer] {
			b.ExpandBox(d.Arcs[layer][i].Bounds())
		}
		for i := range d.Polygons[layer] {
			b.ExpandBox(d.Polygons[layer][i].Bounds())
		}
	}

	for i := range d.Texts {
		b.ExpandBox(d.Texts[i].Bounds())
	}

	for i := range d.Instances {
		inst := &d.Instances[i]
		b.ExpandBox(inst.Bounds(d.SymbolOf(inst)))
	}

	return b
}

// BuildLocationIndex populates a typed spatial index with every primitive
// in the drawing, keyed by kind, collection index, and layer. The index
// answers approximate location queries; callers verify candidates against
// exact geometry.
func BuildLocationIndex(d *Drawing) *spatial.TypedIndex {
	ix := spatial.NewTypedIndex()

	for i := range d.Wires {
		ix.Insert(spatial.Entry{Kind: spatial.KindWire, Index: i, Layer: -1}, d.Wires[i].Bounds())
	}

	for layer := 0; layer < NLayers; layer++ {
		for i := range d.Lines[layer] {
			ix.Insert(spatial.Entry{Kind: spatial.KindLine, Index: i, Layer: layer}, d.Lines[layer][i].Bounds())
		}
		for i := range d.Rects[layer] {
			ix.Insert(spatial.Entry{Kind: spatial.KindRect, Index: i, Layer: layer}, d.Rects[layer][i].Bounds())
		}
		for i := range d.Arcs[layer] {
			ix.Insert(spatial.Entry{Kind: spatial.KindArc, Index: i, Layer: layer}, d.Arcs[layer][i].Bounds())
		}
		for i := range d.Polygons[layer] {
			ix.Insert(spatial.Entry{Kind: spatial.KindPolygon, Index: i, Layer: layer}, d.Polygons[layer][i].Bounds())
		}
	}

	for i := range d.Texts {
		ix.Insert(spatial.Entry{Kind: spatial.KindText, Index: i, Layer: d.Texts[i].Layer}, d.Texts[i].Bounds())
	}

	for i := range d.Instances {
		inst := &d.Instances[i]
		ix.Insert(spatial.Entry{Kind: spatial.KindInstance, Index: i, Layer: -1}, inst.Bounds(d.SymbolOf(inst)))
	}

	return ix
}
