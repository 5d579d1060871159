package match

// SuggestThreshold is the lowest similarity accepted as a suggestion.
const SuggestThreshold = 0.6

// Suggest returns the candidate closest to name after normalization, if it
// is similar enough. Ties go to the earlier candidate.
func Suggest(name string, candidates []string) (string, bool) {
	norm := NormalizeIdent(name)

	best, bestScore := "", SuggestThreshold
	found := false

	for _, c := range candidates {
		if c == name {
			continue
		}

		score := LevenshteinNormalized(norm, NormalizeIdent(c))
		if score > bestScore || (!found && score == bestScore) {
			best, bestScore, found = c, score, true
		}
	}

	return best, found
}
