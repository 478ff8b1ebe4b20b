package model

import "time"

type ItemStatus string

const (
	ItemStatusActive        ItemStatus = "active"
	ItemStatusBought        ItemStatus = "bought"
	ItemStatusPendingReview ItemStatus = "pending_review"
)

type ShoppingList struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	OwnerID    int64     `json:"owner_id"`
	FamilyID   *int64    `json:"family_id"`
	ShareToken *string   `json:"share_token,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ShoppingItem struct {
	ID            int64      `json:"id"`
	ListID        int64      `json:"list_id"`
	Name          string     `json:"name"`
	CanonicalName string     `json:"canonical_name"`
	Quantity      string     `json:"quantity"`
	Unit          string     `json:"unit"`
	Status        ItemStatus `json:"status"`
	AddedBy       *int64     `json:"added_by"`
	BoughtBy      *int64     `json:"bought_by"`
	BoughtAt      *time.Time `json:"bought_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
