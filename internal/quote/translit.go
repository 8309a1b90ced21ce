package quote

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into a base letter plus a combining mark.
var undecomposable = strings.NewReplacer(
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"ø", "o", "Ø", "O",
	"ß", "ss",
	"–", "-", "—", "-",
	"„", "\"", "”", "\"", "“", "\"",
	"’", "'", "‘", "'",
	"×", "x",
	"²", "2",
)

// Transliterate maps text to plain Latin letters: diacritics are stripped and
// letters such as ł are replaced by their base form. It is applied only when
// rendering, never to stored data.
func Transliterate(s string) string {
	s = undecomposable.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
