// Package prop implements the name=value property micro-language embedded in
// xschem record fields. A property string is a run of whitespace-separated
// tokens of the form key=value; values may be bare (terminated by
// whitespace), double-quoted, or brace-quoted with balanced {...}. A
// backslash makes the following value character literal in every form.
package prop

import "strings"

// token is one key=value occurrence located inside a property string.
// Offsets are byte positions into the original string so that callers can
// splice replacements without disturbing surrounding text.
type token struct {
	key      string
	val      string // decoded value (quotes stripped, escapes collapsed)
	raw      string // value exactly as written, quotes and escapes intact
	start    int    // offset of the first key byte
	end      int    // offset one past the last value byte (or key byte)
	hasValue bool
}

// scan walks a property string and returns every token in order of
// appearance. Malformed trailing input (an unterminated quote or brace)
// is taken up to end of string rather than rejected; the codec is the
// layer that treats unterminated braces as fatal, not the tokenizer.
func scan(props string) []token {
	var toks []token
	i := 0
	n := len(props)

	for i < n {
		// skip separators
		for i < n && isSpace(props[i]) {
			i++
		}
		if i >= n {
			break
		}

		tok := token{start: i}

		// key runs until '=' or whitespace
		keyStart := i
		for i < n && props[i] != '=' && !isSpace(props[i]) {
			i++
		}
		tok.key = props[keyStart:i]

		if i >= n || props[i] != '=' {
			// bare key with no value
			tok.end = i
			toks = append(toks, tok)
			continue
		}
		i++ // consume '='

		valStart := i
		var decoded strings.Builder
		switch {
		case i < n && props[i] == '"':
			i++
			for i < n {
				c := props[i]
				if c == '\\' && i+1 < n {
					decoded.WriteByte(props[i+1])
					i += 2
					continue
				}
				if c == '"' {
					i++
					break
				}
				decoded.WriteByte(c)
				i++
			}
		case i < n && props[i] == '{':
			i++
			depth := 1
			for i < n {
				c := props[i]
				if c == '\\' && i+1 < n {
					decoded.WriteByte(props[i+1])
					i += 2
					continue
				}
				if c == '{' {
					depth++
				} else if c == '}' {
					depth--
					if depth == 0 {
						i++
						break
					}
				}
				decoded.WriteByte(c)
				i++
			}
		default:
			for i < n && !isSpace(props[i]) {
				c := props[i]
				if c == '\\' && i+1 < n {
					decoded.WriteByte(props[i+1])
					i += 2
					continue
				}
				decoded.WriteByte(c)
				i++
			}
		}

		tok.val = decoded.String()
		tok.raw = props[valStart:i]
		tok.end = i
		tok.hasValue = true
		toks = append(toks, tok)
	}

	return toks
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// GetTokValue returns the value of the first occurrence of key in props.
// The empty string is returned when key is absent or carries no value.
// With keepQuotes the value is returned exactly as written, surrounding
// quotes and escape backslashes included.
func GetTokValue(props, key string, keepQuotes bool) string {
	for _, tok := range scan(props) {
		if tok.key != key {
			continue
		}
		if !tok.hasValue {
			return ""
		}
		if keepQuotes {
			return tok.raw
		}
		return tok.val
	}
	return ""
}

// HasToken reports whether key appears in props as a whole token: preceded
// by start of string or whitespace and followed by '=', whitespace, or end
// of string. The test is purely textual; an occurrence inside a quoted
// value also matches, which is the behavior downstream callers have
// depended on since the original implementation.
func HasToken(props, key string) bool {
	if key == "" {
		return false
	}
	for from := 0; ; {
		idx := strings.Index(props[from:], key)
		if idx < 0 {
			return false
		}
		idx += from
		before := idx == 0 || isSpace(props[idx-1])
		afterIdx := idx + len(key)
		after := afterIdx == len(props) || props[afterIdx] == '=' || isSpace(props[afterIdx])
		if before && after {
			return true
		}
		from = idx + 1
	}
}

// SubstToken replaces the value of the first occurrence of key in props and
// returns the resulting string. When key is absent and addIfMissing is set,
// a key=value token is appended instead. Values containing a space,
// newline, double quote, or '=' are brace-quoted the same way Attrs.Format
// quotes them.
func SubstToken(props, key, value string, addIfMissing bool) string {
	quoted := quoteValue(value)
	for _, tok := range scan(props) {
		if tok.key != key {
			continue
		}
		if tok.hasValue {
			valStart := tok.start + len(tok.key) + 1
			return props[:valStart] + quoted + props[tok.end:]
		}
		// bare key: attach a value to it
		return props[:tok.end] + "=" + quoted + props[tok.end:]
	}
	if !addIfMissing {
		return props
	}
	if props == "" {
		return key + "=" + quoted
	}
	sep := " "
	if isSpace(props[len(props)-1]) {
		sep = ""
	}
	return props + sep + key + "=" + quoted
}

// DeleteToken removes the first occurrence of key (and its value, if any)
// from props, along with one run of separating whitespace, and returns the
// resulting string. props is returned unchanged when key is absent.
func DeleteToken(props, key string) string {
	for _, tok := range scan(props) {
		if tok.key != key {
			continue
		}
		start, end := tok.start, tok.end
		if start > 0 {
			for start > 0 && isSpace(props[start-1]) {
				start--
			}
		} else {
			for end < len(props) && isSpace(props[end]) {
				end++
			}
		}
		return props[:start] + props[end:]
	}
	return props
}

// quoteValue wraps a value in braces when it contains a space, newline,
// double quote, or '='. Backslashes and double quotes inside the quoted
// form are escaped.
func quoteValue(value string) string {
	if !strings.ContainsAny(value, " \n\"=") {
		return value
	}
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\\' || c == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('}')
	return b.String()
}
