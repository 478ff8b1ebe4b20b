package ingredient

import (
	"strings"
	"unicode"
)

// Normalize resolves a free-text ingredient name to its canonical
// identity: "2 cups chopped Tomatoes" and "tomato" map to the same
// string. It is total and idempotent, and never returns an empty
// identity for non-empty input.
func Normalize(raw string) string {
	cleaned := clean(raw)
	if cleaned == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	// Whole-phrase aliases win before token filtering so phrases like
	// "green beans" keep tokens the filter would otherwise strip.
	if canonical, ok := aliases[cleaned]; ok {
		return canonical
	}

	kept := make([]string, 0, 4)
	for _, tok := range strings.Split(cleaned, " ") {
		if isNumeric(tok) || isStopword(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		// Filtering consumed everything ("2 cups"). Identity falls
		// back to the cleaned phrase rather than going empty.
		return cleaned
	}

	phrase := strings.Join(kept, " ")
	if canonical, ok := aliases[phrase]; ok {
		return canonical
	}

	for i, tok := range kept {
		kept[i] = Singularize(tok)
	}
	phrase = strings.Join(kept, " ")
	if canonical, ok := aliases[phrase]; ok {
		return canonical
	}
	return phrase
}

// clean lowercases, removes apostrophes, converts remaining
// punctuation to spaces, and collapses whitespace.
func clean(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r == '\'' || r == '’':
			// dropped so "confectioner's" becomes "confectioners"
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return tok != ""
}
