package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StripTagsPolicy()

// SanitizeText strips any markup from free-text input before it is stored.
// Legacy actor references and the customer administration fields historically
// accepted arbitrary text pasted from mail clients, tags included.
func SanitizeText(s string) string {
	// Decode entities first (e.g. &lt; -> <) so tags are recognized
	s = html.UnescapeString(s)
	s = stripPolicy.Sanitize(s)
	// bluemonday escapes remaining entities; we want plain text
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
