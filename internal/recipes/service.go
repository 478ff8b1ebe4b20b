// Package recipes scores saved and external recipes against the
// canonical identities in a user's inventory.
package recipes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/devitsbeka/foodvault/internal/errs"
	"github.com/devitsbeka/foodvault/internal/ingredient"
	"github.com/devitsbeka/foodvault/internal/match"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/store"
)

// Service answers "what can I cook" questions. Saved recipes and
// TheMealDB results go through the same matcher, so the two rank on
// equal footing.
type Service struct {
	recipes   *store.RecipeStore
	inventory *store.InventoryStore
	mealdb    *MealDBClient
}

func NewService(recipes *store.RecipeStore, inventory *store.InventoryStore, mealdb *MealDBClient) *Service {
	return &Service{
		recipes:   recipes,
		inventory: inventory,
		mealdb:    mealdb,
	}
}

// Recommendations ranks the owner's saved recipes by how much of each
// the owner's inventory already covers. minPercent drops recipes below
// that coverage; zero keeps everything.
func (s *Service) Recommendations(ownerID int64, minPercent int) ([]match.Match, error) {
	identities, err := s.inventory.CanonicalNamesForOwner(ownerID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.savedCandidates(ownerID)
	if err != nil {
		return nil, err
	}
	return match.Rank(match.Annotate(candidates, identities), minPercent), nil
}

// SearchExternal queries TheMealDB by name and annotates each hit
// against the owner's inventory, ranked like saved recommendations.
func (s *Service) SearchExternal(ctx context.Context, ownerID int64, query string) ([]match.Match, error) {
	results, err := s.mealdb.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search mealdb: %w", err)
	}
	identities, err := s.inventory.CanonicalNamesForOwner(ownerID)
	if err != nil {
		return nil, err
	}

	candidates := make([]match.Candidate, 0, len(results))
	for _, r := range results {
		names := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			names = append(names, ing.Name)
		}
		candidates = append(candidates, match.Candidate{
			ExternalID:  r.ID,
			Name:        r.Name,
			ImageURL:    r.ImageURL,
			Ingredients: names,
		})
	}
	return match.Rank(match.Annotate(candidates, identities), 0), nil
}

// ImportExternal copies a TheMealDB recipe into the owner's saved
// recipes, stamping each ingredient line with its canonical identity.
func (s *Service) ImportExternal(ctx context.Context, ownerID int64, externalID string) (*model.Recipe, error) {
	numericID, err := strconv.ParseInt(strings.TrimSpace(externalID), 10, 64)
	if err != nil {
		return nil, errs.Validation("external recipe id must be numeric")
	}

	ext, err := s.mealdb.Lookup(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("lookup mealdb recipe: %w", err)
	}
	if ext == nil {
		return nil, errs.NotFound("external recipe", numericID)
	}

	inputs := make([]store.IngredientInput, 0, len(ext.Ingredients))
	for _, ing := range ext.Ingredients {
		inputs = append(inputs, store.IngredientInput{
			Name:          ing.Name,
			CanonicalName: ingredient.Normalize(ing.Name),
			Measure:       ing.Measure,
		})
	}
	recipe, err := s.recipes.Create(ownerID, ext.Name, ext.ImageURL, ext.Instructions, inputs)
	if err != nil {
		return nil, fmt.Errorf("save imported recipe: %w", err)
	}
	return recipe, nil
}

func (s *Service) savedCandidates(ownerID int64) ([]match.Candidate, error) {
	saved, err := s.recipes.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	candidates := make([]match.Candidate, 0, len(saved))
	for _, r := range saved {
		ingredients, err := s.recipes.GetIngredients(r.ID)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(ingredients))
		for _, ing := range ingredients {
			names = append(names, ing.CanonicalName)
		}
		candidates = append(candidates, match.Candidate{
			ID:          r.ID,
			Name:        r.Name,
			ImageURL:    r.ImageURL,
			Ingredients: names,
		})
	}
	return candidates, nil
}
