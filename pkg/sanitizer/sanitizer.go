// Package sanitizer provides the per-read sanitization levels applied
// to request fields. Values are stored raw and cleaned on access, so a
// handler chooses the level appropriate for where the value ends up.
package sanitizer

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// Level selects how aggressively a field value is cleaned on read.
type Level int

const (
	// Raw returns the value as received.
	Raw Level = iota

	// Trim normalizes to NFC, collapses control characters, and trims
	// surrounding whitespace. The default for most field reads.
	Trim

	// Strip applies Trim and removes all HTML, leaving plain text.
	Strip

	// Escape applies Trim and HTML-escapes the result for direct
	// interpolation into markup.
	Escape
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func strict() *bluemonday.Policy {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Apply returns s cleaned according to level.
func Apply(s string, level Level) string {
	switch level {
	case Raw:
		return s
	case Trim:
		return clean(s)
	case Strip:
		return clean(strict().Sanitize(s))
	case Escape:
		return html.EscapeString(clean(s))
	default:
		return clean(s)
	}
}

// clean normalizes to NFC, drops non-printable control characters
// (keeping tabs and newlines), and trims surrounding whitespace.
func clean(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
