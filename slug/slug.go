// Package slug derives URL-safe identifiers from display names and
// allocates them within a uniqueness scope.
package slug

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder is used when a name has no usable characters.
const Placeholder = "untitled"

// maxLen leaves room for a numeric suffix inside a 255 byte column.
const maxLen = 200

var pinyinArgs = pinyin.NewArgs()

// Normalize lowercases text to ASCII, collapses every run of characters
// other than [a-z0-9] into a single hyphen and trims hyphens from both ends.
// Han characters are spelled out in pinyin and accents are dropped first,
// so "Beyoncé" and "周杰伦" both produce something readable.
func Normalize(text string) string {
	folded, _, err := transform.String(foldAccents(), transliterate(text))
	if err != nil {
		folded = text
	}

	var slug strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(folded) {
		if slug.Len() >= maxLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			slug.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				slug.WriteRune('-')
				lastHyphen = true
			}
		}
	}

	out := strings.Trim(slug.String(), "-")
	if out == "" {
		return Placeholder
	}
	return out
}

func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func transliterate(text string) string {
	var out strings.Builder
	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			out.WriteRune(r)
			continue
		}
		syllables := pinyin.SinglePinyin(r, pinyinArgs)
		if len(syllables) == 0 {
			out.WriteRune(r)
			continue
		}
		out.WriteString(" " + syllables[0] + " ")
	}
	return out.String()
}
