package errors

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Separator is the line that divides a rule body into precondition and effect.
const Separator = "->"

// SuggestSeparator returns a hint when a line looks like a mistyped separator
// ("=>", "- >", "-->"), or "" if it is not close enough to "->".
func SuggestSeparator(line string) string {
	if len(line) == 0 || len(line) > 4 {
		return ""
	}
	if fuzzy.LevenshteinDistance(line, Separator) <= 1 || (len(line) <= 4 && containsArrowParts(line)) {
		return fmt.Sprintf("Did you mean '%s'?", Separator)
	}
	return ""
}

// SuggestPrefix returns the hint for a tag token without a '+' or '-' prefix.
func SuggestPrefix(token string) string {
	return fmt.Sprintf("Prefix tag '%s' with '+' (has/adds) or '-' (lacks/removes)", token)
}

// SuggestName returns the closest candidate to unknown, formatted as a hint,
// or "" if nothing is within two edits.
func SuggestName(unknown string, candidates []string) string {
	ranks := fuzzy.RankFindFold(unknown, candidates)
	sort.Stable(ranks)
	for _, r := range ranks {
		if r.Distance > 2 {
			break
		}
		if r.Target != unknown {
			return fmt.Sprintf("Did you mean '%s'?", r.Target)
		}
	}
	return ""
}

func containsArrowParts(s string) bool {
	hasDash, hasGt := false, false
	for _, c := range s {
		switch c {
		case '-', '=', '~':
			hasDash = true
		case '>':
			hasGt = true
		case ' ', '\t':
		default:
			return false
		}
	}
	return hasDash && hasGt
}
