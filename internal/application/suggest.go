package application

import (
	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// foldCaser is a package-level Unicode case folder, shared across
// suggestion lookups for the same reason the teacher keeps one at
// package scope: avoid allocating a new caser per call.
var foldCaser = cases.Fold()

// nearestName returns the candidate closest to target by case-folded
// Levenshtein distance, used to annotate ElaborationError::UnresolvedPort
// and ::UnknownReactorClass with a "did you mean" hint. Returns false if
// candidates is empty or the closest match is farther than half the
// target's length plus one (too dissimilar to be a useful suggestion).
func nearestName(target string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	folded := foldCaser.String(target)
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(folded, foldCaser.String(c))
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = c
		}
	}

	maxUseful := len(target)/2 + 1
	if bestDist > maxUseful {
		return "", false
	}
	return best, true
}
