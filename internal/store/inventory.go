package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/model"
)

type InventoryStore struct {
	db database.DBTX
}

func NewInventoryStore(db *sql.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

// WithTx returns a store bound to tx so approval inserts participate
// in the caller's transaction.
func (s *InventoryStore) WithTx(tx *sql.Tx) *InventoryStore {
	return &InventoryStore{db: tx}
}

func scanInventoryItem(scanner interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	var item model.InventoryItem
	var expiresAt sql.NullTime
	var sourceItemID sql.NullInt64

	err := scanner.Scan(
		&item.ID, &item.OwnerID, &item.Name, &item.CanonicalName, &item.Category,
		&item.Quantity, &item.Unit, &expiresAt, &sourceItemID,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		item.ExpiresAt = &expiresAt.Time
	}
	if sourceItemID.Valid {
		item.SourceItemID = &sourceItemID.Int64
	}
	return &item, nil
}

const inventoryItemCols = `id, owner_id, name, canonical_name, category, quantity, unit, expires_at, source_item_id, created_at, updated_at`

func (s *InventoryStore) Create(ownerID int64, name, canonicalName string, category model.Category, quantity, unit string, expiresAt *time.Time, sourceItemID *int64) (*model.InventoryItem, error) {
	var exp sql.NullTime
	if expiresAt != nil {
		exp = sql.NullTime{Time: *expiresAt, Valid: true}
	}
	var src sql.NullInt64
	if sourceItemID != nil {
		src = sql.NullInt64{Int64: *sourceItemID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO inventory_items (owner_id, name, canonical_name, category, quantity, unit, expires_at, source_item_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ownerID, name, canonicalName, category, quantity, unit, exp, src,
	)
	if err != nil {
		return nil, fmt.Errorf("insert inventory item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *InventoryStore) GetByID(id int64) (*model.InventoryItem, error) {
	row := s.db.QueryRow(`SELECT `+inventoryItemCols+` FROM inventory_items WHERE id = ?`, id)
	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

func (s *InventoryStore) ListByOwner(ownerID int64) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+inventoryItemCols+` FROM inventory_items WHERE owner_id = ? ORDER BY category ASC, name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *InventoryStore) ListByOwnerAndCategory(ownerID int64, category model.Category) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+inventoryItemCols+` FROM inventory_items WHERE owner_id = ? AND category = ? ORDER BY name ASC`,
		ownerID, category,
	)
	if err != nil {
		return nil, fmt.Errorf("list inventory by category: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CanonicalNamesForOwner returns the distinct canonical identities the
// owner has on hand, for recipe matching.
func (s *InventoryStore) CanonicalNamesForOwner(ownerID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT canonical_name FROM inventory_items WHERE owner_id = ? ORDER BY canonical_name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list canonical names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan canonical name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *InventoryStore) Update(id int64, name, canonicalName string, category model.Category, quantity, unit string, expiresAt *time.Time) (*model.InventoryItem, error) {
	var exp sql.NullTime
	if expiresAt != nil {
		exp = sql.NullTime{Time: *expiresAt, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE inventory_items SET name = ?, canonical_name = ?, category = ?, quantity = ?, unit = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, canonicalName, category, quantity, unit, exp, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update inventory item: %w", err)
	}
	return s.GetByID(id)
}

func (s *InventoryStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

// ListExpiringBefore returns items with an expiry date on or before
// cutoff, oldest first.
func (s *InventoryStore) ListExpiringBefore(cutoff time.Time) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+inventoryItemCols+` FROM inventory_items WHERE expires_at IS NOT NULL AND expires_at <= ? ORDER BY expires_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list expiring inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListExpiringForOwner is ListExpiringBefore scoped to one owner.
func (s *InventoryStore) ListExpiringForOwner(ownerID int64, cutoff time.Time) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+inventoryItemCols+` FROM inventory_items WHERE owner_id = ? AND expires_at IS NOT NULL AND expires_at <= ? ORDER BY expires_at ASC`,
		ownerID, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list expiring inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
