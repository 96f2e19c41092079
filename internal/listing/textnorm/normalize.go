// Package textnorm folds facet values so that case and Turkish accent variants
// of the same value compare equal.
package textnorm

import "strings"

var turkishFolder = strings.NewReplacer(
	"İ", "i", "I", "i", "ı", "i",
	"Ş", "s", "ş", "s",
	"Ğ", "g", "ğ", "g",
	"Ü", "u", "ü", "u",
	"Ö", "o", "ö", "o",
	"Ç", "c", "ç", "c",
)

// Normalize trims s, maps Turkish letters to plain Latin and lowercases it.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToLower(turkishFolder.Replace(s))
}

// Equal reports whether a and b normalize to the same value.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
