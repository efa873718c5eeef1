package prop

import "testing"

func TestGetTokValueBare(t *testing.T) {
	props := "name=R1 value=10k m=1"

	if got := GetTokValue(props, "name", false); got != "R1" {
		t.Errorf("GetTokValue(name) = %q, want %q", got, "R1")
	}
	if got := GetTokValue(props, "value", false); got != "10k" {
		t.Errorf("GetTokValue(value) = %q, want %q", got, "10k")
	}
	if got := GetTokValue(props, "m", false); got != "1" {
		t.Errorf("GetTokValue(m) = %q, want %q", got, "1")
	}
	if got := GetTokValue(props, "missing", false); got != "" {
		t.Errorf("GetTokValue(missing) = %q, want empty", got)
	}
}

func TestGetTokValueQuotedForms(t *testing.T) {
	cases := []struct {
		name  string
		props string
		key   string
		want  string
	}{
		{"double quoted", `lab="net 1"`, "lab", "net 1"},
		{"escaped quote", `lab="a \"b\" c"`, "lab", `a "b" c`},
		{"brace quoted", `tmpl={name=R1 value=1k}`, "tmpl", "name=R1 value=1k"},
		{"nested braces", `tmpl={a {b} c}`, "tmpl", "a {b} c"},
		{"escaped brace", `tmpl={a \{ b}`, "tmpl", "a { b"},
		{"escaped backslash", `tmpl={a \\ b}`, "tmpl", `a \ b`},
		{"brace with newline", "txt={line1\nline2}", "txt", "line1\nline2"},
		{"escaped space bare", `p=a\ b`, "p", "a b"},
	}

	for _, tc := range cases {
		if got := GetTokValue(tc.props, tc.key, false); got != tc.want {
			t.Errorf("%s: GetTokValue = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestGetTokValueKeepQuotes(t *testing.T) {
	props := `lab="net 1" tmpl={a b}`

	if got := GetTokValue(props, "lab", true); got != `"net 1"` {
		t.Errorf("GetTokValue(lab, keep) = %q, want %q", got, `"net 1"`)
	}
	if got := GetTokValue(props, "tmpl", true); got != "{a b}" {
		t.Errorf("GetTokValue(tmpl, keep) = %q, want %q", got, "{a b}")
	}
}

func TestGetTokValueFirstOccurrenceWins(t *testing.T) {
	if got := GetTokValue("T=1 T=2", "T", false); got != "1" {
		t.Errorf("GetTokValue on duplicate key = %q, want %q (first occurrence)", got, "1")
	}
}

func TestGetTokValueKeyWithoutValue(t *testing.T) {
	if got := GetTokValue("a b=1", "a", false); got != "" {
		t.Errorf("GetTokValue(bare key) = %q, want empty", got)
	}
}

func TestParseLastOccurrenceWins(t *testing.T) {
	a := Parse("T=1 T=2")

	if got := a.Get("T"); got != "2" {
		t.Errorf("Parse duplicate key = %q, want %q (last occurrence)", got, "2")
	}
	if a.Len() != 1 {
		t.Errorf("Parse duplicate key Len = %d, want 1", a.Len())
	}
}

func TestParseKeepsKeyOrder(t *testing.T) {
	a := Parse("c=3 a=1 b=2 a=9")

	keys := a.Keys()
	want := []string{"c", "a", "b"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() length = %d, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	if got := a.Get("a"); got != "9" {
		t.Errorf("Get(a) = %q, want %q", got, "9")
	}
}

func TestHasToken(t *testing.T) {
	cases := []struct {
		props string
		key   string
		want  bool
	}{
		{"name=R1 value=10k", "name", true},
		{"name=R1 value=10k", "value", true},
		{"name=R1 value=10k", "val", false},
		{"name=R1 value=10k", "ame", false},
		{"a b=1", "a", true},
		{"xa=1", "a", false},
		{"", "a", false},
		{"lab=VDD", "lab", true},
		{"mylab=VDD", "lab", false},
	}

	for _, tc := range cases {
		if got := HasToken(tc.props, tc.key); got != tc.want {
			t.Errorf("HasToken(%q, %q) = %v, want %v", tc.props, tc.key, got, tc.want)
		}
	}
}

func TestSubstTokenReplaces(t *testing.T) {
	cases := []string{
		"T=old",
		"a=1 T=old b=2",
		`a=1 T="quoted old" b=2`,
		"a=1 T={brace old} b=2",
	}

	for _, s := range cases {
		out := SubstToken(s, "T", "V", false)
		if got := GetTokValue(out, "T", false); got != "V" {
			t.Errorf("after SubstToken(%q): GetTokValue(T) = %q, want %q", s, got, "V")
		}
		if got := GetTokValue(out, "a", false); s != "T=old" && got != "1" {
			t.Errorf("after SubstToken(%q): surrounding token a = %q, want 1", s, got)
		}
	}
}

func TestSubstTokenAddIfMissing(t *testing.T) {
	out := SubstToken("a=1", "T", "V", true)
	if got := GetTokValue(out, "T", false); got != "V" {
		t.Errorf("GetTokValue(T) after add = %q, want %q", got, "V")
	}

	// absent key without addIfMissing leaves the string alone
	if out := SubstToken("a=1", "T", "V", false); out != "a=1" {
		t.Errorf("SubstToken without add = %q, want %q", out, "a=1")
	}

	// adding to an empty string produces no leading separator
	if out := SubstToken("", "T", "V", true); out != "T=V" {
		t.Errorf("SubstToken on empty = %q, want %q", out, "T=V")
	}
}

func TestSubstTokenAutoQuotes(t *testing.T) {
	out := SubstToken("", "lab", "net 1", true)
	if out != "lab={net 1}" {
		t.Errorf("SubstToken with space = %q, want %q", out, "lab={net 1}")
	}
	if got := GetTokValue(out, "lab", false); got != "net 1" {
		t.Errorf("round-trip of quoted value = %q, want %q", got, "net 1")
	}

	out = SubstToken("", "t", `say "hi"`, true)
	if got := GetTokValue(out, "t", false); got != `say "hi"` {
		t.Errorf("round-trip of value with quotes = %q, want %q", got, `say "hi"`)
	}
}

func TestDeleteToken(t *testing.T) {
	cases := []struct {
		props string
		want  string
	}{
		{"a=1 T=x b=2", "a=1 b=2"},
		{"T=x b=2", "b=2"},
		{"a=1 T=x", "a=1"},
		{"T=x", ""},
		{"a=1 T={x y} b=2", "a=1 b=2"},
	}

	for _, tc := range cases {
		got := DeleteToken(tc.props, "T")
		if got != tc.want {
			t.Errorf("DeleteToken(%q) = %q, want %q", tc.props, got, tc.want)
		}
		if HasToken(got, "T") {
			t.Errorf("DeleteToken(%q): key still present in %q", tc.props, got)
		}
	}

	// absent key is a no-op
	if got := DeleteToken("a=1 b=2", "T"); got != "a=1 b=2" {
		t.Errorf("DeleteToken(absent) = %q, want unchanged", got)
	}
}

func TestAttrsFormatQuotes(t *testing.T) {
	a := NewAttrs()
	a.Set("name", "R1")
	a.Set("lab", "net 1")
	a.Set("note", `say "hi"`)

	out := a.Format()
	if got := GetTokValue(out, "name", false); got != "R1" {
		t.Errorf("formatted name = %q, want R1", got)
	}
	if got := GetTokValue(out, "lab", false); got != "net 1" {
		t.Errorf("formatted lab = %q, want %q", got, "net 1")
	}
	if got := GetTokValue(out, "note", false); got != `say "hi"` {
		t.Errorf("formatted note = %q, want %q", got, `say "hi"`)
	}

	// order of first appearance is preserved
	keys := Parse(out).Keys()
	want := []string{"name", "lab", "note"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("formatted key order[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestAttrsDelete(t *testing.T) {
	a := Parse("a=1 b=2 c=3")
	a.Delete("b")

	if a.Has("b") {
		t.Error("Has(b) after Delete = true, want false")
	}
	if a.Len() != 2 {
		t.Errorf("Len after Delete = %d, want 2", a.Len())
	}
	if out := a.Format(); out != "a=1 c=3" {
		t.Errorf("Format after Delete = %q, want %q", out, "a=1 c=3")
	}
}
