package service

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/width"
)

const minPhraseLen = 3

var (
	// phraseRun matches maximal runs of characters usable in a query term
	phraseRun = regexp.MustCompile(`[A-Za-z0-9+\- ]{3,}`)

	// quotedPhrase matches content wrapped in one of the quote pairs translators
	// tend to use when they call out the English term. A straight single
	// quote only counts when it is not part of a word, so apostrophes in
	// "It's" or "Crohn's" never open or close a quote.
	quotedPhrase = regexp.MustCompile(`「([^」]*)」|『([^』]*)』|“([^”]*)”|‘([^’]*)’|«([^»]*)»|"([^"]*)"|(?:^|[^A-Za-z0-9])'([^']*)'(?:$|[^A-Za-z0-9])`)

	phraseOnly = regexp.MustCompile(`^[A-Za-z0-9+\- ]+$`)
)

// ExtractPhrase recovers a short English query term from a free-form
// translator response. Quoted content wins; otherwise the shortest run
// of allowed characters is chosen, ties going to lexical order. When
// nothing qualifies the input is returned unchanged.
func ExtractPhrase(s string) string {
	if q, ok := quotedCandidate(s); ok {
		return q
	}

	runs := phraseRun.FindAllString(s, -1)
	if len(runs) == 0 {
		return s
	}

	var candidates []string
	for _, r := range runs {
		if t := strings.TrimSpace(r); len(t) >= minPhraseLen {
			candidates = append(candidates, t)
		}
	}
	// Runs padded with spaces around a short token still beat the raw input
	if len(candidates) == 0 {
		candidates = runs
	}

	return shortest(candidates)
}

func quotedCandidate(s string) (string, bool) {
	for _, m := range quotedPhrase.FindAllStringSubmatch(s, -1) {
		for _, group := range m[1:] {
			content := strings.TrimSpace(group)
			if len(content) >= minPhraseLen && phraseOnly.MatchString(content) {
				return content, true
			}
		}
	}
	return "", false
}

func shortest(candidates []string) string {
	sorted := append([]string(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) < len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	return sorted[0]
}

// NormalizeTranslation folds full-width ASCII to half-width and collapses
// whitespace so that "ＥＧＦＲ" extracts the same way as "EGFR".
func NormalizeTranslation(s string) string {
	folded := width.Fold.String(s)
	return strings.Join(strings.Fields(folded), " ")
}
