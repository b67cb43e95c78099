// Package sanitize filters user-submitted rich text down to a small allowlist
// of formatting tags before it is stored.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// AllowedTags are the only elements that survive sanitization.
var AllowedTags = []string{"b", "i", "em", "strong", "p", "br", "ul", "ol", "li", "a"}

// AllowedLinkAttrs are the only attributes kept, and only on <a>.
var AllowedLinkAttrs = []string{"href", "title", "target"}

// Sanitizer applies the allowlist policy, or passes content through untouched
// when constructed in unsafe mode.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New returns a Sanitizer. With unsafe set, HTML returns its input unchanged.
func New(unsafe bool) *Sanitizer {
	if unsafe {
		return &Sanitizer{}
	}
	return &Sanitizer{policy: Policy()}
}

// Policy builds the allowlist policy.
func Policy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedTags...)
	p.AllowAttrs(AllowedLinkAttrs...).OnElements("a")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("mailto", "http", "https")
	return p
}

// Enabled reports whether content is actually filtered.
func (s *Sanitizer) Enabled() bool {
	return s.policy != nil
}

// HTML returns s restricted to the allowlist. The result is stable under
// repeated application.
func (s *Sanitizer) HTML(in string) string {
	if s.policy == nil {
		return in
	}
	return restoreQuotes(s.policy.Sanitize(in))
}

// restoreQuotes undoes the quote escaping bluemonday applies to text.
// Attributes are always written double quoted, so &#39; can be restored
// everywhere but &#34; only outside tags. Text never holds a raw '<' or '>'.
func restoreQuotes(s string) string {
	s = strings.ReplaceAll(s, "&#39;", "'")
	if !strings.Contains(s, "&#34;") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for i := 0; i < len(s); {
		switch {
		case s[i] == '<':
			inTag = true
		case s[i] == '>':
			inTag = false
		case !inTag && strings.HasPrefix(s[i:], "&#34;"):
			b.WriteByte('"')
			i += len("&#34;")
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
