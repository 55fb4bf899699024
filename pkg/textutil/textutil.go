package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a string and removes all whitespace from it.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchName checks if the normalized name contains any of the matchers,
// matchers are expected to already be normalized.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// FuzzyMatchName is MatchName but also accepts a matcher whose Jaro-Winkler similarity
// with the normalized name reaches threshold.
func FuzzyMatchName(name string, matchers []string, threshold float64) bool {
	if MatchName(name, matchers) {
		return true
	}
	name = NormalizeName(name)
	if name == "" {
		return false
	}
	for _, m := range matchers {
		if matchr.JaroWinkler(name, m, false) >= threshold {
			return true
		}
	}
	return false
}
