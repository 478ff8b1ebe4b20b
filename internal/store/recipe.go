package store

import (
	"database/sql"
	"fmt"

	"github.com/devitsbeka/foodvault/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	err := scanner.Scan(&r.ID, &r.OwnerID, &r.Name, &r.ImageURL, &r.Instructions, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const recipeCols = `id, owner_id, name, image_url, instructions, created_at, updated_at`

// IngredientInput is one ingredient line as submitted, paired with its
// resolved canonical identity.
type IngredientInput struct {
	Name          string
	CanonicalName string
	Measure       string
}

// Create inserts a recipe and its ingredient rows in one transaction.
func (s *RecipeStore) Create(ownerID int64, name, imageURL, instructions string, ingredients []IngredientInput) (*model.Recipe, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO recipes (owner_id, name, image_url, instructions) VALUES (?, ?, ?, ?)`,
		ownerID, name, imageURL, instructions,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for i, ing := range ingredients {
		if _, err := tx.Exec(
			`INSERT INTO recipe_ingredients (recipe_id, name, canonical_name, measure, position) VALUES (?, ?, ?, ?, ?)`,
			id, ing.Name, ing.CanonicalName, ing.Measure, i,
		); err != nil {
			return nil, fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecipeStore) GetByID(id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

func (s *RecipeStore) ListByOwner(ownerID int64) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE owner_id = ? ORDER BY name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

func (s *RecipeStore) GetIngredients(recipeID int64) ([]model.RecipeIngredient, error) {
	rows, err := s.db.Query(
		`SELECT id, recipe_id, name, canonical_name, measure, position
		 FROM recipe_ingredients WHERE recipe_id = ? ORDER BY position ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []model.RecipeIngredient
	for rows.Next() {
		var ing model.RecipeIngredient
		if err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.CanonicalName, &ing.Measure, &ing.Position); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

// Update rewrites a recipe and replaces its ingredient rows in one
// transaction.
func (s *RecipeStore) Update(id int64, name, imageURL, instructions string, ingredients []IngredientInput) (*model.Recipe, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE recipes SET name = ?, image_url = ?, instructions = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, imageURL, instructions, id,
	); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear ingredients: %w", err)
	}
	for i, ing := range ingredients {
		if _, err := tx.Exec(
			`INSERT INTO recipe_ingredients (recipe_id, name, canonical_name, measure, position) VALUES (?, ?, ?, ?, ?)`,
			id, ing.Name, ing.CanonicalName, ing.Measure, i,
		); err != nil {
			return nil, fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecipeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}
