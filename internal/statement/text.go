package statement

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var strictPolicy = bluemonday.StrictPolicy()

// CleanText strips markup from a pasted field and trims it.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// TitleCase lowercases s and upper-cases the first letter of each word.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}
