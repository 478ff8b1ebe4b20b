// Package match scores recipes against the canonical identities a
// user already owns.
package match

import (
	"sort"

	"github.com/devitsbeka/foodvault/internal/ingredient"
)

// Candidate is a recipe reduced to what the matcher needs. ID is set
// for saved recipes, ExternalID for provider results.
type Candidate struct {
	ID          int64    `json:"id,omitempty"`
	ExternalID  string   `json:"external_id,omitempty"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url,omitempty"`
	Ingredients []string `json:"ingredients"`
}

// Match is a Candidate annotated with ownership statistics. Percent is
// integer percent of the recipe's distinct canonical ingredients the
// caller owns; Owned and Missing partition those identities.
type Match struct {
	Candidate
	Percent int      `json:"percent"`
	Owned   []string `json:"owned"`
	Missing []string `json:"missing"`
}

// Annotate computes ownership statistics for each candidate against
// the given inventory identities. Both sides pass through the
// normalizer, so raw names and canonical names mix freely. A recipe
// with no ingredients scores zero.
func Annotate(candidates []Candidate, identities []string) []Match {
	owned := make(map[string]bool, len(identities))
	for _, id := range identities {
		if canonical := ingredient.Normalize(id); canonical != "" {
			owned[canonical] = true
		}
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		m := Match{Candidate: c}
		seen := make(map[string]bool, len(c.Ingredients))
		for _, ing := range c.Ingredients {
			canonical := ingredient.Normalize(ing)
			if canonical == "" || seen[canonical] {
				continue
			}
			seen[canonical] = true
			if owned[canonical] {
				m.Owned = append(m.Owned, canonical)
			} else {
				m.Missing = append(m.Missing, canonical)
			}
		}
		if total := len(m.Owned) + len(m.Missing); total > 0 {
			m.Percent = len(m.Owned) * 100 / total
		}
		matches = append(matches, m)
	}
	return matches
}

// Rank drops matches below minPercent and orders the rest with
// image-bearing recipes first, then by descending percent. Ties keep
// their input order.
func Rank(matches []Match, minPercent int) []Match {
	ranked := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Percent >= minPercent {
			ranked = append(ranked, m)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		iImg := ranked[i].ImageURL != ""
		jImg := ranked[j].ImageURL != ""
		if iImg != jImg {
			return iImg
		}
		return ranked[i].Percent > ranked[j].Percent
	})
	return ranked
}
