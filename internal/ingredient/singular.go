package ingredient

import "strings"

// irregulars lists plurals the suffix rules would mangle ("olives"
// would lose its e) plus mass nouns whose identity keeps the trailing
// s ("molasses", "oats").
var irregulars = map[string]string{
	"olives":    "olive",
	"chives":    "chive",
	"cloves":    "clove",
	"endives":   "endive",
	"cookies":   "cookie",
	"brownies":  "brownie",
	"smoothies": "smoothie",
	"veggies":   "veggie",
	"molasses":  "molasses",
	"oats":      "oats",
	"grits":     "grits",
}

// Singularize reduces a plural token to singular form: the irregular
// table first, then suffix rules in order. Tokens of four characters
// or fewer only face the plain trailing-s rule.
func Singularize(tok string) string {
	if s, ok := irregulars[tok]; ok {
		return s
	}
	n := len(tok)
	switch {
	case n > 4 && strings.HasSuffix(tok, "oes"):
		return tok[:n-2]
	case n > 4 && strings.HasSuffix(tok, "ies"):
		return tok[:n-3] + "y"
	case n > 4 && strings.HasSuffix(tok, "ves"):
		return tok[:n-3] + "f"
	case n > 4 && (strings.HasSuffix(tok, "ses") || strings.HasSuffix(tok, "shes") ||
		strings.HasSuffix(tok, "ches") || strings.HasSuffix(tok, "xes")):
		return tok[:n-2]
	case n > 3 && strings.HasSuffix(tok, "s") &&
		!strings.HasSuffix(tok, "ss") && !strings.HasSuffix(tok, "us"):
		return tok[:n-1]
	}
	return tok
}
