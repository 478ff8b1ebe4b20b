package ingredient

// Stopword sets for token filtering. A token present in any set is
// dropped unless the whole phrase already hit an alias. The sets are
// closed and hand-curated; tokens that double as real ingredient names
// ("orange", "hot", "brown") are deliberately absent and handled by
// aliases instead.

var unitWords = map[string]bool{
	"cup": true, "cups": true,
	"tablespoon": true, "tablespoons": true, "tbsp": true, "tbs": true,
	"teaspoon": true, "teaspoons": true, "tsp": true,
	"ounce": true, "ounces": true, "oz": true,
	"fluid": true, "fl": true,
	"pound": true, "pounds": true, "lb": true, "lbs": true,
	"gram": true, "grams": true, "g": true,
	"kilogram": true, "kilograms": true, "kg": true, "mg": true,
	"milliliter": true, "milliliters": true, "ml": true,
	"liter": true, "liters": true, "litre": true, "litres": true, "l": true,
	"quart": true, "quarts": true, "qt": true,
	"pint": true, "pints": true, "pt": true,
	"gallon": true, "gallons": true, "gal": true,
	"pinch": true, "pinches": true,
	"dash": true, "dashes": true,
	"splash": true,
	"handful": true, "handfuls": true,
	"stick": true, "sticks": true,
	"can": true, "cans": true,
	"jar": true, "jars": true,
	"bag": true, "bags": true,
	"box": true, "boxes": true,
	"bottle": true, "bottles": true,
	"carton": true, "cartons": true,
	"package": true, "packages": true, "pkg": true,
	"packet": true, "packets": true,
	"envelope": true, "envelopes": true,
	"bunch": true, "bunches": true,
	"head": true, "heads": true,
	"piece": true, "pieces": true,
	"slice": true, "slices": true,
	"sprig": true, "sprigs": true,
	"stalk": true, "stalks": true,
	"ear": true, "ears": true,
	"knob": true, "knobs": true,
	"cube": true, "cubes": true,
	"fillet": true, "fillets": true, "filet": true, "filets": true,
	"loaf": true, "loaves": true,
	"inch": true, "inches": true,
}

var numberWords = map[string]bool{
	"one": true, "two": true, "three": true, "four": true, "five": true,
	"six": true, "seven": true, "eight": true, "nine": true, "ten": true,
	"eleven": true, "twelve": true, "dozen": true,
	"half": true, "quarter": true,
}

var prepWords = map[string]bool{
	"chopped": true, "diced": true, "minced": true, "sliced": true,
	"grated": true, "shredded": true, "crushed": true, "ground": true,
	"peeled": true, "seeded": true, "deseeded": true, "pitted": true,
	"cored": true, "trimmed": true, "rinsed": true, "washed": true,
	"drained": true, "melted": true, "softened": true, "beaten": true,
	"whisked": true, "cooked": true, "boiled": true, "steamed": true,
	"toasted": true, "roasted": true, "cubed": true, "julienned": true,
	"halved": true, "quartered": true, "mashed": true, "sifted": true,
	"divided": true, "thawed": true, "squeezed": true, "juiced": true,
	"crumbled": true, "torn": true, "stemmed": true, "deveined": true,
	"shelled": true, "husked": true, "scrubbed": true, "packed": true,
	"heaping": true, "scant": true, "optional": true,
	"freshly": true, "finely": true, "coarsely": true, "thinly": true,
	"roughly": true,
	"dusting": true, "drizzling": true, "frying": true, "greasing": true,
	"brushing": true, "coating": true, "dipping": true, "sprinkling": true,
}

var descriptorWords = map[string]bool{
	"large": true, "small": true, "medium": true, "big": true,
	"little": true, "extra": true, "jumbo": true, "mini": true,
	"baby": true, "fresh": true, "dried": true, "ripe": true,
	"organic": true, "whole": true, "boneless": true, "skinless": true,
	"lean": true, "light": true, "virgin": true, "sweet": true,
	"raw": true, "frozen": true, "cold": true, "warm": true,
	"unsalted": true, "salted": true, "sweetened": true,
	"unsweetened": true, "plain": true,
	"red": true, "green": true, "yellow": true, "purple": true,
	"taste": true, "garnish": true, "serving": true, "servings": true,
	"needed": true, "more": true,
}

var connectorWords = map[string]bool{
	"of": true, "for": true, "to": true, "and": true, "as": true,
	"a": true, "an": true, "the": true, "plus": true,
}

func isStopword(tok string) bool {
	return unitWords[tok] || numberWords[tok] || prepWords[tok] ||
		descriptorWords[tok] || connectorWords[tok]
}
