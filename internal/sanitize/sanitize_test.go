package sanitize

import (
	"strings"
	"testing"
)

var hostile = []string{
	`<script>alert(1)</script>hello`,
	`<img src=x onerror=alert(1)>`,
	`<p onclick="steal()">click</p>`,
	`<a href="javascript:alert(1)">x</a>`,
	`<iframe src="https://evil.test"></iframe><b>bold</b>`,
	`<svg/onload=alert(1)>`,
	`<div style="background:url(x)"><i>it</i></div>`,
	`<a href="https://ok.test" onmouseover="x()" title="t">link</a>`,
}

func TestSanitizer_SafeStripsDisallowed(t *testing.T) {
	s := New(false)
	for _, in := range hostile {
		out := strings.ToLower(s.HTML(in))
		for _, bad := range []string{"<script", "<img", "<iframe", "<svg", "<div", "onerror", "onclick", "onload", "onmouseover", "javascript:", "style="} {
			if strings.Contains(out, bad) {
				t.Errorf("HTML(%q) = %q still contains %q", in, out, bad)
			}
		}
	}
}

func TestSanitizer_SafeKeepsAllowlisted(t *testing.T) {
	s := New(false)
	tests := []string{
		`<p>Hello <b>world</b></p>`,
		`<ul><li><em>one</em></li><li><strong>two</strong></li></ul>`,
		`<ol><li><i>x</i></li></ol>`,
		`line<br/>break`,
		`<a href="https://example.com" title="t">link</a>`,
		`Don't panic`,
		`say "hi"`,
		`<p>It's <b>"bold"</b></p>`,
		`<a href="https://example.com" title="it's">link</a>`,
	}
	for _, in := range tests {
		if got := s.HTML(in); got != in {
			t.Errorf("HTML(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestSanitizer_QuotesInAttributesStayEscaped(t *testing.T) {
	s := New(false)
	in := `<a href="https://example.com" title='say "x"'>link</a> "out"`
	want := `<a href="https://example.com" title="say &#34;x&#34;">link</a> "out"`
	if got := s.HTML(in); got != want {
		t.Errorf("HTML(%q) = %q, want %q", in, got, want)
	}
}

func TestSanitizer_Idempotent(t *testing.T) {
	s := New(false)
	inputs := append([]string{`a & b < c`, `"quoted" 'single'`, `it's &#39;literal&#39;`, `<p>ok</p><script>x</script>`}, hostile...)
	for _, in := range inputs {
		once := s.HTML(in)
		twice := s.HTML(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestSanitizer_UnsafePassesThrough(t *testing.T) {
	s := New(true)
	if s.Enabled() {
		t.Error("unsafe sanitizer should report disabled")
	}
	for _, in := range hostile {
		if got := s.HTML(in); got != in {
			t.Errorf("unsafe HTML(%q) = %q, want input unchanged", in, got)
		}
	}
}
