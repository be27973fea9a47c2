package utilities

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ASCIIFileName strip accents and replace anything outside printable ASCII with '_',
// so the name is safe for a Content-Disposition header
func ASCIIFileName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, name)
	if err != nil {
		result = name
	}

	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, result)

	if strings.TrimSpace(cleaned) == "" {
		return "file"
	}
	return cleaned
}
