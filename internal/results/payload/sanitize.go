package payload

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag; a Policy is safe for concurrent use once built.
var strict = bluemonday.StrictPolicy()

// clean strips markup from a model-provided string. bluemonday escapes the
// text it keeps, so entities are decoded again; consumers escape for their
// own output format.
func clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// DefaultColor is used for parties whose color token is missing or unusable.
const DefaultColor = "#64748b"

var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{3,20})$`)

// color accepts hex colors and plain CSS color names only; the token ends
// up in style attributes of the dashboard.
func color(s string) string {
	s = strings.TrimSpace(s)
	if !colorRe.MatchString(s) {
		return DefaultColor
	}
	return s
}
