package model

import "time"

type Recipe struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RecipeIngredient struct {
	ID            int64  `json:"id"`
	RecipeID      int64  `json:"recipe_id"`
	Name          string `json:"name"`
	CanonicalName string `json:"canonical_name"`
	Measure       string `json:"measure"`
	Position      int    `json:"position"`
}
