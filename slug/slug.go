// Package slug turns free text into URL-friendly slugs.
//
//	slug.Make("Hello, World! #$%")       // "hello-world"
//	slug.Make("Crème Brûlée Recipe")     // "creme-brulee-recipe"
//	slug.Make("Multiple    Spaces Here") // "multiple-spaces-here"
//	slug.Make("Привет мир")               // "privet-mir"
package slug

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the words of a slug.
const Separator = '-'

// Make returns the slug of s: ASCII letters and digits, lower case, words
// joined by a single Separator, no leading or trailing Separator.
// Punctuation is dropped and "@" is spelled "at". An empty or
// punctuation-only input gives "".
func Make(s string) string {
	if s == "" {
		return ""
	}
	s = cases.Lower(language.Und).String(ascii(s))
	var (
		b   strings.Builder
		sep bool
	)
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '@':
			sep = true
			writeWord(&b, "at", &sep)
			sep = true
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			writeWord(&b, string(r), &sep)
		case r == '_' || r == Separator || unicode.IsSpace(r):
			sep = true
		}
	}
	return b.String()
}

func writeWord(b *strings.Builder, w string, sep *bool) {
	if *sep && b.Len() > 0 {
		b.WriteRune(Separator)
	}
	*sep = false
	b.WriteString(w)
}

// Greek letters read differently in modern Greek than in the unidecode
// tables.
var greek = strings.NewReplacer("η", "i", "Η", "I")

// ascii transliterates s to ASCII. Marks are stripped first so accented
// letters fold to their base letter.
func ascii(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return unidecode.Unidecode(greek.Replace(s))
}
