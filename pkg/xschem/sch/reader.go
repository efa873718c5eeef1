package sch

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Reader parses the schematic record format into a Drawing. It is a
// character-level reader with one rune of pushback: braced free-text
// fields may contain embedded newlines, so the input is never split into
// lines first.
type Reader struct {
	r      *bufio.Reader
	peeked *rune
	logger *log.Logger
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:      bufio.NewReader(r),
		logger: log.Default(),
	}
}

// SetLogger redirects skip diagnostics to logger.
func (rd *Reader) SetLogger(logger *log.Logger) {
	rd.logger = logger
}

// ReadDrawing parses a complete document from r.
func ReadDrawing(r io.Reader) (*Drawing, error) {
	return NewReader(r).Read()
}

// LoadDrawing parses the schematic or symbol file at path.
func LoadDrawing(path string) (*Drawing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := NewReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return d, nil
}

// ReadSymbol parses a symbol definition stream. Symbol files share the
// schematic record set; the parsed geometry and texts become the
// definition, and the K record (or the G record in old files) supplies
// the symbol's global attributes.
func ReadSymbol(r io.Reader, name string) (*Symbol, error) {
	d, err := NewReader(r).Read()
	if err != nil {
		return nil, err
	}
	return SymbolFromDrawing(name, d), nil
}

// LoadSymbol parses the symbol file at path, registering it under name.
func LoadSymbol(path, name string) (*Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := ReadSymbol(f, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// SymbolFromDrawing converts a parsed symbol document into a Symbol
// definition. Old symbol files stored the global attributes in the G
// record instead of K, so G is the fallback when K is empty.
func SymbolFromDrawing(name string, d *Drawing) *Symbol {
	s := &Symbol{Name: name}
	s.Lines = d.Lines
	s.Rects = d.Rects
	s.Arcs = d.Arcs
	s.Polygons = d.Polygons
	s.Texts = d.Texts
	globals := d.SymProp
	if globals == "" {
		globals = d.VHDLProp
	}
	s.SetGlobals(globals)
	s.ComputeBBox()
	return s
}

// Read parses records until EOF and returns the populated drawing.
// Classification problems (an out-of-range layer, an unknown record tag)
// are logged and the offending record skipped; structural problems (a
// malformed number, an unterminated brace string) abort the read.
func (rd *Reader) Read() (*Drawing, error) {
	d := NewDrawing()
	for {
		ch, err := rd.read()
		if err == io.EOF {
			return d, nil
		}
		if err != nil {
			return nil, err
		}
		if unicode.IsSpace(ch) {
			continue
		}
		if err := rd.readRecord(d, ch); err != nil {
			return nil, err
		}
		// Trailing fields a record did not declare are dropped with the
		// rest of its line.
		if err := rd.discardLine(); err != nil {
			return nil, err
		}
	}
}

// readRecord dispatches on the record tag character.
func (rd *Reader) readRecord(d *Drawing, tag rune) error {
	switch tag {
	case 'v':
		text, err := rd.readBraced()
		if err != nil {
			return err
		}
		d.SetVersion(text)
		return nil

	case 'G', 'K', 'V', 'S', 'E', 'F':
		text, err := rd.readBraced()
		if err != nil {
			return err
		}
		switch tag {
		case 'G':
			d.VHDLProp = text
		case 'K':
			d.SymProp = text
		case 'V':
			d.VerilogProp = text
		case 'S':
			d.SchProp = text
		case 'E':
			d.TedaxProp = text
		case 'F':
			d.SpectreProp = text
		}
		return nil

	case 'L', 'B':
		return rd.readSegmentRecord(d, tag)
	case 'A':
		return rd.readArc(d)
	case 'P':
		return rd.readPolygon(d)
	case 'T':
		return rd.readText(d)
	case 'N':
		return rd.readWire(d)
	case 'C':
		return rd.readInstance(d)
	case '[':
		return rd.skipEmbedded()
	case '#':
		// Comment; the line discard in Read consumes it.
		return nil

	default:
		rd.logger.Printf("skipping unknown record tag %q", tag)
		return nil
	}
}

// readSegmentRecord parses an L (line) or B (rectangle) record. The layer
// is validated only after every field has been consumed, so an invalid
// layer skips the single record without desynchronizing the stream.
func (rd *Reader) readSegmentRecord(d *Drawing, tag rune) error {
	layer, err := rd.readInt()
	if err != nil {
		return fmt.Errorf("failed to parse layer: %w", err)
	}
	coords, err := rd.readFloats(4)
	if err != nil {
		return err
	}
	props, err := rd.readBraced()
	if err != nil {
		return err
	}
	if layer < 0 || layer >= NLayers {
		rd.logger.Printf("skipping %c record: layer %d out of range", tag, layer)
		return nil
	}
	if tag == 'L' {
		d.AddLine(layer, coords[0], coords[1], coords[2], coords[3], props)
	} else {
		d.AddRect(layer, coords[0], coords[1], coords[2], coords[3], props)
	}
	return nil
}

func (rd *Reader) readArc(d *Drawing) error {
	layer, err := rd.readInt()
	if err != nil {
		return fmt.Errorf("failed to parse layer: %w", err)
	}
	fields, err := rd.readFloats(5)
	if err != nil {
		return err
	}
	props, err := rd.readBraced()
	if err != nil {
		return err
	}
	if layer < 0 || layer >= NLayers {
		rd.logger.Printf("skipping A record: layer %d out of range", layer)
		return nil
	}
	d.AddArc(layer, fields[0], fields[1], fields[2], fields[3], fields[4], props)
	return nil
}

func (rd *Reader) readPolygon(d *Drawing) error {
	layer, err := rd.readInt()
	if err != nil {
		return fmt.Errorf("failed to parse layer: %w", err)
	}
	count, err := rd.readInt()
	if err != nil {
		return fmt.Errorf("failed to parse point count: %w", err)
	}
	var pts []Point
	for i := 0; i < count; i++ {
		xy, err := rd.readFloats(2)
		if err != nil {
			return err
		}
		pts = append(pts, Point{X: xy[0], Y: xy[1]})
	}
	props, err := rd.readBraced()
	if err != nil {
		return err
	}
	if layer < 0 || layer >= NLayers {
		rd.logger.Printf("skipping P record: layer %d out of range", layer)
		return nil
	}
	d.AddPolygon(layer, pts, props)
	return nil
}

func (rd *Reader) readText(d *Drawing) error {
	txt, err := rd.readBraced()
	if err != nil {
		return err
	}
	coords, err := rd.readFloats(2)
	if err != nil {
		return err
	}
	rot, err := rd.readInt()
	if err != nil {
		return fmt.Errorf("failed to parse rotation: %w", err)
	}
	flip, err := rd.readInt()
	if err != nil {
		return fmt.Errorf("failed to parse flip: %w", err)
	}
	scales, err := rd.readFloats(2)
	if err != nil {
		return err
	}
	props, err := rd.readBraced()
	if err != nil {
		return err
	}
	d.AddText(txt, coords[0], coords[1], rot, flip, scales[0], scales[1], props)
	return nil
}

func (rd *Reader) readWire(d *Drawing) error {
	coords, err := rd.readFloats(4)
	if err != nil {
		return err
	}
	props, err := rd.readBraced()
	if err != nil {
		return err
	}
	d.AddWire(coords[0], coords[1], coords[2], coords[3], props)
	return nil
}

func (rd *Reader) readInstance(d *Drawing) error {
	ref, err := rd.readBraced()
	if err != nil {
		return err
	}
	coords, err := rd.readFloats(2)
	if err != nil {
		return err
	}
	rot, err := rd.readInt()
	if err != nil {
		return fmt.Errorf("failed to parse rotation: %w", err)
	}
	flip, err := rd.readInt()
	if err != nil {
		return fmt.Errorf("failed to parse flip: %w", err)
	}
	props, err := rd.readBraced()
	if err != nil {
		return err
	}
	// Symbol references in 1.0 files were written without extensions.
	if d.FileVersion == "1.0" && !strings.HasSuffix(ref, ".sym") {
		ref += ".sym"
	}
	d.AddInstance(ref, coords[0], coords[1], rot, flip, props)
	return nil
}

// skipEmbedded consumes an embedded symbol block without populating
// anything, tracking bracket nesting. Embedded definitions are written
// out for self-contained instances but are not reconstructed on read;
// instance references resolve through the symbol library instead.
func (rd *Reader) skipEmbedded() error {
	depth := 1
	for depth > 0 {
		ch, err := rd.read()
		if err == io.EOF {
			return fmt.Errorf("unexpected EOF in embedded symbol block")
		}
		if err != nil {
			return err
		}
		switch ch {
		case '[':
			depth++
		case ']':
			depth--
		}
	}
	return nil
}

// readBraced reads a {...} free-text field. Whitespace before the opening
// brace is skipped; inside, a backslash takes the next character
// literally and the first unescaped '}' terminates. A record carrying no
// braced field yields the empty string with the stream untouched; an
// opened but unterminated field aborts the read.
func (rd *Reader) readBraced() (string, error) {
	for {
		ch, err := rd.peek()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(ch) {
			rd.read()
			continue
		}
		if ch != '{' {
			return "", nil
		}
		rd.read()
		break
	}

	var sb strings.Builder
	for {
		ch, err := rd.read()
		if err == io.EOF {
			return "", fmt.Errorf("unterminated brace string")
		}
		if err != nil {
			return "", err
		}
		switch ch {
		case '\\':
			next, err := rd.read()
			if err != nil {
				return "", fmt.Errorf("unterminated brace string")
			}
			sb.WriteRune(next)
		case '}':
			return sb.String(), nil
		default:
			sb.WriteRune(ch)
		}
	}
}

// readToken consumes the next whitespace-delimited token. An opening
// brace also terminates the token and stays in the stream for the braced
// field that follows.
func (rd *Reader) readToken() (string, error) {
	var sb strings.Builder
	for {
		ch, err := rd.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(ch) {
			if sb.Len() == 0 {
				rd.read()
				continue
			}
			break
		}
		if ch == '{' {
			break
		}
		rd.read()
		sb.WriteRune(ch)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected end of record")
	}
	return sb.String(), nil
}

func (rd *Reader) readInt() (int, error) {
	tok, err := rd.readToken()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", tok, err)
	}
	return n, nil
}

func (rd *Reader) readFloat() (float64, error) {
	tok, err := rd.readToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", tok, err)
	}
	return v, nil
}

func (rd *Reader) readFloats(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := rd.readFloat()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// discardLine consumes input through the next newline.
func (rd *Reader) discardLine() error {
	for {
		ch, err := rd.read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if ch == '\n' {
			return nil
		}
	}
}

// peek looks at the next rune without consuming it.
func (rd *Reader) peek() (rune, error) {
	if rd.peeked != nil {
		return *rd.peeked, nil
	}
	ch, _, err := rd.r.ReadRune()
	if err != nil {
		return 0, err
	}
	rd.peeked = &ch
	return ch, nil
}

// read consumes and returns the next rune.
func (rd *Reader) read() (rune, error) {
	if rd.peeked != nil {
		ch := *rd.peeked
		rd.peeked = nil
		return ch, nil
	}
	ch, _, err := rd.r.ReadRune()
	return ch, err
}
