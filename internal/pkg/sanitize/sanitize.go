// Package sanitize strips markup from user supplied display text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds how many layers of entity encoding are peeled off.
const maxPasses = 8

var strict = bluemonday.StrictPolicy()

// Text removes every HTML element and collapses runs of whitespace into a
// single space. Entities are decoded only while the decoded form survives the
// policy unchanged, so encoded markup such as "&lt;script&gt;" cannot come
// back as a live tag. Input that keeps changing after maxPasses is returned
// in its escaped, policy-safe form.
func Text(s string) string {
	for i := 0; i < maxPasses; i++ {
		cleaned := strict.Sanitize(s)
		decoded := html.UnescapeString(cleaned)
		if decoded == s {
			return collapse(decoded)
		}
		s = decoded
	}
	return collapse(strict.Sanitize(s))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Email trims and lower-cases an address so it can be used as a lookup key.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
