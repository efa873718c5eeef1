package prop

import "strings"

// Attrs is an ordered key→value view of a property string. Keys keep the
// order of their first appearance; a later duplicate key overwrites the
// value of an earlier one. Note the deliberate divergence from
// GetTokValue, which is first-occurrence-wins: both behaviors are part of
// the format's de facto contract and are preserved separately.
type Attrs struct {
	keys []string
	vals map[string]string
}

// NewAttrs returns an empty attribute set.
func NewAttrs() *Attrs {
	return &Attrs{vals: make(map[string]string)}
}

// Parse tokenizes an entire property string into an attribute set.
func Parse(props string) *Attrs {
	a := NewAttrs()
	for _, tok := range scan(props) {
		a.Set(tok.key, tok.val)
	}
	return a
}

// Get returns the value stored for key, or the empty string.
func (a *Attrs) Get(key string) string {
	return a.vals[key]
}

// Has reports whether key is present.
func (a *Attrs) Has(key string) bool {
	_, ok := a.vals[key]
	return ok
}

// Set stores a value, appending the key to the order on first use.
func (a *Attrs) Set(key, value string) {
	if _, ok := a.vals[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.vals[key] = value
}

// Delete removes a key and its position in the order.
func (a *Attrs) Delete(key string) {
	if _, ok := a.vals[key]; !ok {
		return
	}
	delete(a.vals, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (a *Attrs) Len() int {
	return len(a.keys)
}

// Keys returns the keys in order of first appearance.
func (a *Attrs) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Format serializes the attribute set back to property-string text. Values
// containing a space, newline, double quote, or '=' are brace-quoted with
// backslash and double quote escaped.
func (a *Attrs) Format() string {
	var b strings.Builder
	for i, k := range a.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quoteValue(a.vals[k]))
	}
	return b.String()
}
