package ingredient

import (
	"strings"

	"github.com/devitsbeka/foodvault/internal/model"
)

// Categorize guesses the storage category for an ingredient name.
// It performs case-insensitive matching: exact match first, then substring match.
// Falls back to CategoryOther if no match is found. Callers usually
// pass an already-normalized name but any string works.
func Categorize(name string) model.Category {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return model.CategoryOther
	}

	// Phase 1: exact match
	if cat, ok := exactMatch[n]; ok {
		return cat
	}

	// Phase 2: substring match (ordered longer/more-specific first)
	for _, entry := range substringMatches {
		if strings.Contains(n, entry.keyword) {
			return entry.category
		}
	}

	return model.CategoryOther
}

var exactMatch = map[string]model.Category{
	// Fridge: dairy and eggs
	"milk":          model.CategoryFridge,
	"egg":           model.CategoryFridge,
	"eggs":          model.CategoryFridge,
	"butter":        model.CategoryFridge,
	"cheese":        model.CategoryFridge,
	"yogurt":        model.CategoryFridge,
	"cream":         model.CategoryFridge,
	"heavy cream":   model.CategoryFridge,
	"sour cream":    model.CategoryFridge,
	"cream cheese":  model.CategoryFridge,
	"half and half": model.CategoryFridge,
	"tofu":          model.CategoryFridge,

	// Fridge: meat and seafood
	"chicken":        model.CategoryFridge,
	"beef":           model.CategoryFridge,
	"ground beef":    model.CategoryFridge,
	"ground turkey":  model.CategoryFridge,
	"pork":           model.CategoryFridge,
	"turkey":         model.CategoryFridge,
	"bacon":          model.CategoryFridge,
	"sausage":        model.CategoryFridge,
	"ham":            model.CategoryFridge,
	"steak":          model.CategoryFridge,
	"salmon":         model.CategoryFridge,
	"shrimp":         model.CategoryFridge,
	"fish":           model.CategoryFridge,
	"lamb":           model.CategoryFridge,

	// Fridge: produce that keeps cold
	"lettuce":      model.CategoryFridge,
	"spinach":      model.CategoryFridge,
	"kale":         model.CategoryFridge,
	"broccoli":     model.CategoryFridge,
	"carrot":       model.CategoryFridge,
	"celery":       model.CategoryFridge,
	"cucumber":     model.CategoryFridge,
	"zucchini":     model.CategoryFridge,
	"bell pepper":  model.CategoryFridge,
	"jalapeno":     model.CategoryFridge,
	"mushroom":     model.CategoryFridge,
	"green bean":   model.CategoryFridge,
	"green onion":  model.CategoryFridge,
	"asparagus":    model.CategoryFridge,
	"cauliflower":  model.CategoryFridge,
	"cabbage":      model.CategoryFridge,
	"strawberry":   model.CategoryFridge,
	"blueberry":    model.CategoryFridge,
	"raspberry":    model.CategoryFridge,
	"grape":        model.CategoryFridge,
	"cilantro":     model.CategoryFridge,
	"parsley":      model.CategoryFridge,
	"basil":        model.CategoryFridge,

	// Pantry: staples
	"rice":           model.CategoryPantry,
	"pasta":          model.CategoryPantry,
	"spaghetti":      model.CategoryPantry,
	"flour":          model.CategoryPantry,
	"sugar":          model.CategoryPantry,
	"powdered sugar": model.CategoryPantry,
	"brown sugar":    model.CategoryPantry,
	"salt":           model.CategoryPantry,
	"pepper":         model.CategoryPantry,
	"black pepper":   model.CategoryPantry,
	"olive oil":      model.CategoryPantry,
	"vegetable oil":  model.CategoryPantry,
	"oil":            model.CategoryPantry,
	"vinegar":        model.CategoryPantry,
	"soy sauce":      model.CategoryPantry,
	"honey":          model.CategoryPantry,
	"peanut butter":  model.CategoryPantry,
	"cereal":         model.CategoryPantry,
	"oats":           model.CategoryPantry,
	"baking soda":    model.CategoryPantry,
	"baking powder":  model.CategoryPantry,
	"cornstarch":     model.CategoryPantry,
	"breadcrumb":     model.CategoryPantry,
	"chickpea":       model.CategoryPantry,
	"lentil":         model.CategoryPantry,
	"bean":           model.CategoryPantry,
	"black bean":     model.CategoryPantry,
	"molasses":       model.CategoryPantry,
	"bread":          model.CategoryPantry,

	// Pantry: produce stored dry
	"potato":       model.CategoryPantry,
	"sweet potato": model.CategoryPantry,
	"onion":        model.CategoryPantry,
	"red onion":    model.CategoryPantry,
	"garlic":       model.CategoryPantry,
	"banana":       model.CategoryPantry,
	"tomato":       model.CategoryPantry,
	"avocado":      model.CategoryPantry,
}

type substringEntry struct {
	keyword  string
	category model.Category
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Fridge
	{"chicken breast", model.CategoryFridge},
	{"chicken thigh", model.CategoryFridge},
	{"cream cheese", model.CategoryFridge},
	{"sour cream", model.CategoryFridge},
	{"greek yogurt", model.CategoryFridge},
	{"almond milk", model.CategoryFridge},
	{"oat milk", model.CategoryFridge},
	{"yogurt", model.CategoryFridge},
	{"cheese", model.CategoryFridge},
	{"milk", model.CategoryFridge},
	{"butter", model.CategoryFridge},
	{"cream", model.CategoryFridge},
	{"egg", model.CategoryFridge},
	{"chicken", model.CategoryFridge},
	{"beef", model.CategoryFridge},
	{"pork", model.CategoryFridge},
	{"fish", model.CategoryFridge},
	{"berry", model.CategoryFridge},
	{"lettuce", model.CategoryFridge},
	{"salad", model.CategoryFridge},
	{"juice", model.CategoryFridge},

	// Pantry
	{"peanut butter", model.CategoryPantry},
	{"olive oil", model.CategoryPantry},
	{"coconut oil", model.CategoryPantry},
	{"maple syrup", model.CategoryPantry},
	{"hot sauce", model.CategoryPantry},
	{"soy sauce", model.CategoryPantry},
	{"tomato paste", model.CategoryPantry},
	{"tomato sauce", model.CategoryPantry},
	{"canned", model.CategoryPantry},
	{"dried", model.CategoryPantry},
	{"rice", model.CategoryPantry},
	{"pasta", model.CategoryPantry},
	{"noodle", model.CategoryPantry},
	{"flour", model.CategoryPantry},
	{"sugar", model.CategoryPantry},
	{"spice", model.CategoryPantry},
	{"seasoning", model.CategoryPantry},
	{"sauce", model.CategoryPantry},
	{"broth", model.CategoryPantry},
	{"stock", model.CategoryPantry},
	{"soup", model.CategoryPantry},
	{"bean", model.CategoryPantry},
	{"lentil", model.CategoryPantry},
	{"oil", model.CategoryPantry},
	{"vinegar", model.CategoryPantry},
	{"cracker", model.CategoryPantry},
	{"cookie", model.CategoryPantry},
	{"cereal", model.CategoryPantry},
	{"bread", model.CategoryPantry},
	{"chip", model.CategoryPantry},
	{"nut", model.CategoryPantry},
	{"tea", model.CategoryPantry},
	{"coffee", model.CategoryPantry},
}
