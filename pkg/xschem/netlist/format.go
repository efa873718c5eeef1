package netlist

import (
	"fmt"
	"path"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/prop"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/xschem/sch"
)

// templateLexer defines the lexical structure of netlist format
// templates. A template is literal text interspersed with @attr
// attribute references and @@pin pin references.
var templateLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Pin references (must come before attribute references)
	{Name: "PinRef", Pattern: `@@[A-Za-z_][A-Za-z0-9_]*`},

	// Attribute references
	{Name: "AttrRef", Pattern: `@[A-Za-z_][A-Za-z0-9_]*`},

	// Literal text runs
	{Name: "Text", Pattern: `[^@]+`},

	// A bare @ not followed by an identifier stays literal
	{Name: "At", Pattern: `@`},
})

// Template is a parsed netlist format template.
type Template struct {
	Parts []*Part `@@*`
}

// Part is one segment of a template: a pin reference, an attribute
// reference, or literal text.
type Part struct {
	Pin  string `  @PinRef`
	Attr string `| @AttrRef`
	Text string `| @( Text | At )`
}

// Formatter parses netlist format templates.
type Formatter struct {
	parser *participle.Parser[Template]
}

// NewFormatter creates a new template parser instance.
func NewFormatter() (*Formatter, error) {
	parser, err := participle.Build[Template](
		participle.Lexer(templateLexer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Formatter{parser: parser}, nil
}

// Parse parses a format template from a string.
func (f *Formatter) Parse(format string) (*Template, error) {
	if format == "" {
		return &Template{}, nil
	}
	tpl, err := f.parser.ParseString("", format)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tpl, nil
}

// Expand renders the template for one instance of the drawing.
//
// The attribute references @name, @symname and @pinlist expand to the
// instance refdes, the symbol base name and the space-joined net names
// of all pins. Any other @attr looks up the instance property string
// first, then the symbol template. A @@PIN reference expands to the net
// name attached to the named pin.
func (tpl *Template) Expand(d *sch.Drawing, idx int) string {
	inst := &d.Instances[idx]
	sym := d.SymbolOf(inst)

	var b strings.Builder
	for _, part := range tpl.Parts {
		switch {
		case part.Pin != "":
			b.WriteString(pinNet(inst, sym, part.Pin[2:]))
		case part.Attr != "":
			b.WriteString(attrValue(inst, sym, part.Attr[1:]))
		default:
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func attrValue(inst *sch.Instance, sym *sch.Symbol, name string) string {
	switch name {
	case "name":
		return inst.Refdes()
	case "symname":
		return symBaseName(inst.SymName)
	case "pinlist":
		return strings.Join(inst.Nodes, " ")
	}
	if v := prop.GetTokValue(inst.Prop, name, false); v != "" {
		return v
	}
	if sym != nil {
		return prop.GetTokValue(sym.Template, name, false)
	}
	return ""
}

// pinNet returns the net name attached to the pin with the given name.
func pinNet(inst *sch.Instance, sym *sch.Symbol, name string) string {
	if sym == nil {
		return ""
	}
	for i := 0; i < sym.PinCount(); i++ {
		if sym.PinName(i) == name {
			if i < len(inst.Nodes) {
				return inst.Nodes[i]
			}
			return ""
		}
	}
	return ""
}

// symBaseName strips the directory and the .sym suffix from a symbol
// reference.
func symBaseName(ref string) string {
	return strings.TrimSuffix(path.Base(ref), ".sym")
}
