package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// letters covers ASCII letters plus the accented Latin range U+00C0..U+017F.
const letters = `a-zA-ZÀ-ſ`

// wordLayers run independently over the same text, in this order. A span
// matched by more than one layer is emitted once per layer, so
// "state-of-the-art" counts as five tokens. regexp2 is used because its \b
// treats accented letters as word characters.
var wordLayers = []*regexp2.Regexp{
	// plain words
	regexp2.MustCompile(`\b[`+letters+`]+\b`, regexp2.None),
	// contractions: it's, don't
	regexp2.MustCompile(`\b[`+letters+`]+'[`+letters+`]+\b`, regexp2.None),
	// hyphen chains: state-of-the-art
	regexp2.MustCompile(`\b[`+letters+`]+(?:-[`+letters+`]+)+\b`, regexp2.None),
	// letters then digits: covid19, mp3-player
	regexp2.MustCompile(`\b[`+letters+`]+\d+(?:-[`+letters+`\d]+)*\b`, regexp2.None),
	// digits then letters: 3rd, 4k-ready
	regexp2.MustCompile(`\b\d+[`+letters+`]+(?:-[`+letters+`\d]+)*\b`, regexp2.None),
}

// ExtractWords returns every lowercase token found by the pattern layers.
// Tokens shorter than minLength runes are dropped only when minLength > 1.
func ExtractWords(text string, minLength int) []string {
	if text == "" {
		return []string{}
	}

	words := make([]string, 0, len(text)/4)
	for _, layer := range wordLayers {
		words = appendMatches(words, layer, text)
	}

	for i, w := range words {
		words[i] = strings.ToLower(w)
	}

	if minLength > 1 {
		kept := words[:0]
		for _, w := range words {
			if utf8.RuneCountInString(w) >= minLength {
				kept = append(kept, w)
			}
		}
		words = kept
	}

	return words
}

func appendMatches(dst []string, re *regexp2.Regexp, text string) []string {
	// regexp2 only errors on match timeouts, and none are configured.
	m, err := re.FindStringMatch(text)
	for m != nil && err == nil {
		dst = append(dst, m.String())
		m, err = re.FindNextMatch(m)
	}
	return dst
}
