// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphen     = regexp.MustCompile(`-{2,}`)
)

// From converts a string into a URL-safe ASCII slug: accents are
// decomposed and stripped, everything non-alphanumeric collapses to a
// single hyphen.
func From(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}

	ascii = strings.ToLower(ascii)
	ascii = nonAlphanumeric.ReplaceAllString(ascii, "-")
	ascii = multiHyphen.ReplaceAllString(ascii, "-")
	return strings.Trim(ascii, "-")
}
