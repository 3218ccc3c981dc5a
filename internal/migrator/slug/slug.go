// Package slug builds the URL-safe product identifiers used as the
// externally visible product key.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorRe   = regexp.MustCompile(`[\s_/]+`)
	nonSlugRuneRe = regexp.MustCompile(`[^a-z0-9-]`)
	multiDashRe   = regexp.MustCompile(`-+`)

	// NFD + strip combining marks, so "Kalkhoff Endeavour é" keeps its
	// base letters instead of losing them outright.
	asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize lowercases, ASCII-folds and hyphenates a single slug part.
func Normalize(part string) string {
	s := strings.ToLower(strings.TrimSpace(part))
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	s = separatorRe.ReplaceAllString(s, "-")
	s = nonSlugRuneRe.ReplaceAllString(s, "")
	s = multiDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Generate builds the base slug "brand-model-year", omitting missing parts.
// Returns "" when brand, model and year together normalize to nothing; the
// caller must treat such a record as invalid.
func Generate(brand, model string, year int) string {
	parts := make([]string, 0, 3)
	if p := Normalize(brand); p != "" {
		parts = append(parts, p)
	}
	if p := Normalize(model); p != "" {
		parts = append(parts, p)
	}
	if year > 0 {
		parts = append(parts, fmt.Sprintf("%d", year))
	}
	return strings.Join(parts, "-")
}

// ExistsFunc reports whether a candidate slug is already persisted.
type ExistsFunc func(slug string) (bool, error)

// Unique resolves base against both the persisted store and the in-batch
// set, appending -1, -2, … until the candidate collides with neither. The
// chosen slug is added to taken so later records in the same batch can never
// receive it, even before anything is committed.
func Unique(base string, taken map[string]struct{}, exists ExistsFunc) (string, error) {
	if base == "" {
		return "", nil
	}
	candidate := base
	for i := 1; ; i++ {
		if _, inBatch := taken[candidate]; !inBatch {
			persisted, err := exists(candidate)
			if err != nil {
				return "", err
			}
			if !persisted {
				break
			}
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	taken[candidate] = struct{}{}
	return candidate, nil
}
