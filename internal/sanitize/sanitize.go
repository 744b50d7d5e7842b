// Package sanitize filters rendered HTML against a fixed whitelist.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// allowedTags lists every element that survives sanitization.
var allowedTags = []string{
	"h1", "h2", "h3", "h4", "h5", "h6",
	"b", "i", "strong", "em", "tt",
	"p", "br", "span", "div", "blockquote",
	"code", "hr", "ul", "ol", "li", "dd", "dt",
	"img", "a", "sub", "sup", "small", "pre",
}

// allowedAttrs maps an element to the attributes it may carry in addition
// to the global id attribute.
var allowedAttrs = map[string][]string{
	"img": {"src", "alt", "title"},
	"a":   {"href", "title"},
}

// policy is built once and only read afterwards; bluemonday policies are
// safe for concurrent use.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)
	p.AllowNoAttrs().OnElements(allowedTags...)
	p.AllowAttrs("id").Globally()
	for el, attrs := range allowedAttrs {
		p.AllowAttrs(attrs...).OnElements(el)
	}

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}

// HTML strips every element, attribute, style and comment that is not
// whitelisted. Disallowed elements lose their tags; script-like elements
// lose their content as well. HTML never fails.
func HTML(in []byte) []byte {
	return policy.SanitizeBytes(in)
}

// AllowedTags returns a copy of the element whitelist.
func AllowedTags() []string {
	out := make([]string, len(allowedTags))
	copy(out, allowedTags)
	return out
}
