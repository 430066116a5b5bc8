// Package sanitize strips or restricts markup in user-supplied post text.
//
// Titles and descriptions are stripped of all markup when written. Post bodies are
// stored as submitted and restricted to a safe HTML subset when read.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// PlainText removes every tag from s and trims the result. The output stays
// entity-escaped, so encoded markup in the input never decodes into a tag.
func PlainText(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Body restricts s to the user-generated-content HTML subset.
func Body(s string) string {
	return ugc.Sanitize(s)
}
