package ingredient

// aliases maps full cleaned phrases to their canonical identity.
// Lookups happen before token filtering, after filtering, and after
// singularization, so keys include plural and pre-filter variants.
// Entries mapping to themselves pin identities whose tokens the
// stopword filter would otherwise strip ("green bean", "sweet potato").
var aliases = map[string]string{
	// Bell pepper family
	"bell pepper":          "bell pepper",
	"bell peppers":         "bell pepper",
	"green pepper":         "bell pepper",
	"green peppers":        "bell pepper",
	"red pepper":           "bell pepper",
	"red peppers":          "bell pepper",
	"yellow pepper":        "bell pepper",
	"yellow peppers":       "bell pepper",
	"orange pepper":        "bell pepper",
	"orange peppers":       "bell pepper",
	"sweet pepper":         "bell pepper",
	"sweet peppers":        "bell pepper",
	"sweet red pepper":     "bell pepper",
	"sweet red peppers":    "bell pepper",
	"red bell pepper":      "bell pepper",
	"red bell peppers":     "bell pepper",
	"green bell pepper":    "bell pepper",
	"green bell peppers":   "bell pepper",
	"yellow bell pepper":   "bell pepper",
	"yellow bell peppers":  "bell pepper",
	"capsicum":             "bell pepper",
	"capsicums":            "bell pepper",

	// Identities that keep tokens the filter would strip
	"green bean":    "green bean",
	"green beans":   "green bean",
	"green onion":   "green onion",
	"green onions":  "green onion",
	"red onion":     "red onion",
	"red onions":    "red onion",
	"sweet potato":  "sweet potato",
	"sweet potatoes": "sweet potato",
	"ground beef":    "ground beef",
	"ground turkey":  "ground turkey",
	"ground pork":    "ground pork",
	"ground chicken": "ground chicken",
	"ground lamb":    "ground lamb",
	"half and half":  "half and half",

	// Synonyms and regional names
	"scallion":          "green onion",
	"scallions":         "green onion",
	"spring onion":      "green onion",
	"spring onions":     "green onion",
	"purple onion":      "red onion",
	"purple onions":     "red onion",
	"minced beef":       "ground beef",
	"aubergine":         "eggplant",
	"aubergines":        "eggplant",
	"courgette":         "zucchini",
	"courgettes":        "zucchini",
	"coriander":         "cilantro",
	"coriander leaf":    "cilantro",
	"coriander leaves":  "cilantro",
	"basil leaf":        "basil",
	"basil leaves":      "basil",
	"mint leaf":         "mint",
	"mint leaves":       "mint",
	"garbanzo":          "chickpea",
	"garbanzos":         "chickpea",
	"garbanzo bean":     "chickpea",
	"garbanzo beans":    "chickpea",
	"catsup":            "ketchup",
	"mayo":              "mayonnaise",
	"evoo":              "olive oil",
	"capsicum pepper":   "bell pepper",
	"jalapeño":          "jalapeno",
	"jalapeños":         "jalapeno",
	"chile":             "chili",
	"chiles":            "chili",
	"chilies":           "chili",
	"chilli":            "chili",
	"chillies":          "chili",
	"tuna fish":         "tuna",

	// Garlic measured in cloves
	"clove garlic":  "garlic",
	"cloves garlic": "garlic",
	"garlic clove":  "garlic",
	"garlic cloves": "garlic",

	// Sugars and flours
	"powdered sugar":      "powdered sugar",
	"confectioners sugar": "powdered sugar",
	"icing sugar":         "powdered sugar",
	"caster sugar":        "sugar",
	"castor sugar":        "sugar",
	"granulated sugar":    "sugar",
	"all purpose flour":   "flour",
	"cornflour":           "cornstarch",
	"corn flour":          "cornstarch",
	"corn starch":         "cornstarch",
	"bicarbonate soda":    "baking soda",
	"bicarb soda":         "baking soda",
	"bicarb":              "baking soda",

	// Dairy and liquids
	"whipping cream":       "heavy cream",
	"heavy whipping cream": "heavy cream",
	"chicken stock":        "chicken broth",
	"beef stock":           "beef broth",
	"vegetable stock":      "vegetable broth",
	"veggie broth":         "vegetable broth",
	"veggie stock":         "vegetable broth",

	// Grains and crumbs
	"rolled oats":        "oats",
	"quick oats":         "oats",
	"old fashioned oats": "oats",
	"bread crumb":        "breadcrumb",
	"bread crumbs":       "breadcrumb",
}
