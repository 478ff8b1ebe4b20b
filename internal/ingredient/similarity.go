package ingredient

import "github.com/agnivade/levenshtein"

// Similarity scores how close two names are on a 0..1 scale, where 1
// means the canonical identities already coincide. Used to hint at
// likely duplicates before a review entry is proposed.
func Similarity(a, b string) float64 {
	ca, cb := Normalize(a), Normalize(b)
	if ca == cb {
		return 1
	}
	longest := max(len(ca), len(cb))
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(ca, cb)
	return 1 - float64(dist)/float64(longest)
}
