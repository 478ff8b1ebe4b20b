package model

import "time"

type Category string

const (
	CategoryFridge Category = "fridge"
	CategoryPantry Category = "pantry"
	CategoryOther  Category = "other"
)

type InventoryItem struct {
	ID            int64      `json:"id"`
	OwnerID       int64      `json:"owner_id"`
	Name          string     `json:"name"`
	CanonicalName string     `json:"canonical_name"`
	Category      Category   `json:"category"`
	Quantity      string     `json:"quantity"`
	Unit          string     `json:"unit"`
	ExpiresAt     *time.Time `json:"expires_at"`
	SourceItemID  *int64     `json:"source_item_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
