package spatial

import (
	"math"
	"sort"
)

// Grid geometry. The plane is covered by NBoxes×NBoxes cells of
// BoxSize×BoxSize units each, wrapping around toroidally.
const (
	NBoxes  = 40
	BoxSize = 3000
)

// cellOf maps one coordinate to its wrapped cell index, always in
// [0, NBoxes).
func cellOf(coord float64) int {
	c := int(math.Floor(coord/BoxSize)) % NBoxes
	if c < 0 {
		c += NBoxes
	}
	return c
}

// cellSpan returns the first cell index for a coordinate interval and the
// number of cells it covers, capped at NBoxes so oversized boxes cost at
// most one full sweep per axis.
func cellSpan(lo, hi float64) (first, count int) {
	if hi < lo {
		lo, hi = hi, lo
	}
	a := int(math.Floor(lo / BoxSize))
	b := int(math.Floor(hi / BoxSize))
	count = b - a + 1
	if count > NBoxes {
		count = NBoxes
	}
	first = a % NBoxes
	if first < 0 {
		first += NBoxes
	}
	return first, count
}

// Index registers opaque integer ids in every grid cell their bounding box
// overlaps. Removal must be given the same box that was inserted.
type Index struct {
	cells [NBoxes][NBoxes]map[int]struct{}
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{}
}

// visit walks the wrapped cells covered by a box.
func visitCells(b Box, fn func(cx, cy int)) {
	fx, nx := cellSpan(b.X1, b.X2)
	fy, ny := cellSpan(b.Y1, b.Y2)
	for i := 0; i < nx; i++ {
		cx := (fx + i) % NBoxes
		for j := 0; j < ny; j++ {
			cy := (fy + j) % NBoxes
			fn(cx, cy)
		}
	}
}

// Insert registers id in every cell overlapped by b.
func (ix *Index) Insert(id int, b Box) {
	visitCells(b, func(cx, cy int) {
		if ix.cells[cx][cy] == nil {
			ix.cells[cx][cy] = make(map[int]struct{})
		}
		ix.cells[cx][cy][id] = struct{}{}
	})
}

// Remove unregisters id from every cell overlapped by b. The box must
// equal the one given to Insert.
func (ix *Index) Remove(id int, b Box) {
	visitCells(b, func(cx, cy int) {
		if ix.cells[cx][cy] != nil {
			delete(ix.cells[cx][cy], id)
		}
	})
}

// Query returns the ids registered in any cell overlapped by b, each id
// once, in ascending order. Candidates are approximate: the caller must
// test exact geometry.
func (ix *Index) Query(b Box) []int {
	seen := make(map[int]struct{})
	visitCells(b, func(cx, cy int) {
		for id := range ix.cells[cx][cy] {
			seen[id] = struct{}{}
		}
	})
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// QueryPoint returns the candidates for the single cell containing a
// point.
func (ix *Index) QueryPoint(x, y float64) []int {
	cx, cy := cellOf(x), cellOf(y)
	cell := ix.cells[cx][cy]
	out := make([]int, 0, len(cell))
	for id := range cell {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Kind identifies which primitive collection a typed entry refers to.
type Kind uint8

// Typed entry kinds, one per primitive collection of a drawing.
const (
	KindWire Kind = iota
	KindLine
	KindRect
	KindArc
	KindPolygon
	KindText
	KindInstance
)

var kindNames = map[Kind]string{
	KindWire:     "wire",
	KindLine:     "line",
	KindRect:     "rect",
	KindArc:      "arc",
	KindPolygon:  "polygon",
	KindText:     "text",
	KindInstance: "instance",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(?)"
}

// Entry identifies one object in a drawing: its kind, its index within
// that kind's collection, and the layer it sits on (-1 for unlayered
// kinds).
type Entry struct {
	Kind  Kind
	Index int
	Layer int
}

// TypedIndex is the Index variant that stores (kind, index, layer)
// triples, for hit testing across mixed primitive kinds.
type TypedIndex struct {
	cells [NBoxes][NBoxes]map[Entry]struct{}
}

// NewTypedIndex returns an empty typed index.
func NewTypedIndex() *TypedIndex {
	return &TypedIndex{}
}

// Insert registers an entry in every cell overlapped by b.
func (ix *TypedIndex) Insert(e Entry, b Box) {
	visitCells(b, func(cx, cy int) {
		if ix.cells[cx][cy] == nil {
			ix.cells[cx][cy] = make(map[Entry]struct{})
		}
		ix.cells[cx][cy][e] = struct{}{}
	})
}

// Remove unregisters an entry from every cell overlapped by b.
func (ix *TypedIndex) Remove(e Entry, b Box) {
	visitCells(b, func(cx, cy int) {
		if ix.cells[cx][cy] != nil {
			delete(ix.cells[cx][cy], e)
		}
	})
}

// Query returns the entries registered in any cell overlapped by b, each
// once, ordered by kind, layer, then index.
func (ix *TypedIndex) Query(b Box) []Entry {
	seen := make(map[Entry]struct{})
	visitCells(b, func(cx, cy int) {
		for e := range ix.cells[cx][cy] {
			seen[e] = struct{}{}
		}
	})
	out := make([]Entry, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

// QueryPoint returns the entries for the single cell containing a point.
func (ix *TypedIndex) QueryPoint(x, y float64) []Entry {
	cx, cy := cellOf(x), cellOf(y)
	cell := ix.cells[cx][cy]
	out := make([]Entry, 0, len(cell))
	for e := range cell {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		if entries[i].Layer != entries[j].Layer {
			return entries[i].Layer < entries[j].Layer
		}
		return entries[i].Index < entries[j].Index
	})
}
