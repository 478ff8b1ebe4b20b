package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/model"
)

type ListStore struct {
	db database.DBTX
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

// WithTx returns a store bound to tx so item status flips participate
// in the caller's transaction.
func (s *ListStore) WithTx(tx *sql.Tx) *ListStore {
	return &ListStore{db: tx}
}

// --- List methods ---

func scanShoppingList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	var familyID sql.NullInt64
	var shareToken sql.NullString

	err := scanner.Scan(&l.ID, &l.Name, &l.OwnerID, &familyID, &shareToken, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if familyID.Valid {
		l.FamilyID = &familyID.Int64
	}
	if shareToken.Valid {
		l.ShareToken = &shareToken.String
	}
	return &l, nil
}

const shoppingListCols = `id, name, owner_id, family_id, share_token, created_at, updated_at`

func (s *ListStore) CreateList(name string, ownerID int64, familyID *int64) (*model.ShoppingList, error) {
	var fID sql.NullInt64
	if familyID != nil {
		fID = sql.NullInt64{Int64: *familyID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO shopping_lists (name, owner_id, family_id) VALUES (?, ?, ?)`,
		name, ownerID, fID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetListByID(id)
}

func (s *ListStore) GetListByID(id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanShoppingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (s *ListStore) GetListByShareToken(token string) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+shoppingListCols+` FROM shopping_lists WHERE share_token = ?`, token)
	l, err := scanShoppingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list by share token: %w", err)
	}
	return l, nil
}

// ListListsForUser returns lists the user owns plus lists shared with
// a family the user belongs to.
func (s *ListStore) ListListsForUser(userID int64) ([]model.ShoppingList, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT l.id, l.name, l.owner_id, l.family_id, l.share_token, l.created_at, l.updated_at
		 FROM shopping_lists l
		 LEFT JOIN family_members fm ON l.family_id = fm.family_id AND fm.user_id = ?
		 WHERE l.owner_id = ? OR fm.id IS NOT NULL
		 ORDER BY l.name ASC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists for user: %w", err)
	}
	defer rows.Close()

	var lists []model.ShoppingList
	for rows.Next() {
		l, err := scanShoppingList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *ListStore) UpdateList(id int64, name string, familyID *int64) (*model.ShoppingList, error) {
	var fID sql.NullInt64
	if familyID != nil {
		fID = sql.NullInt64{Int64: *familyID, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE shopping_lists SET name = ?, family_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, fID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return s.GetListByID(id)
}

// SetShareToken sets or clears the read-only share token.
func (s *ListStore) SetShareToken(id int64, token *string) (*model.ShoppingList, error) {
	var tok sql.NullString
	if token != nil {
		tok = sql.NullString{String: *token, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE shopping_lists SET share_token = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		tok, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set share token: %w", err)
	}
	return s.GetListByID(id)
}

func (s *ListStore) DeleteList(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// --- Item methods ---

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var addedBy, boughtBy sql.NullInt64
	var boughtAt sql.NullTime

	err := scanner.Scan(
		&item.ID, &item.ListID, &item.Name, &item.CanonicalName, &item.Quantity,
		&item.Unit, &item.Status, &addedBy, &boughtBy, &boughtAt,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if addedBy.Valid {
		item.AddedBy = &addedBy.Int64
	}
	if boughtBy.Valid {
		item.BoughtBy = &boughtBy.Int64
	}
	if boughtAt.Valid {
		item.BoughtAt = &boughtAt.Time
	}
	return &item, nil
}

const shoppingItemCols = `id, list_id, name, canonical_name, quantity, unit, status, added_by, bought_by, bought_at, created_at, updated_at`

func (s *ListStore) CreateItem(listID int64, name, canonicalName, quantity, unit string, addedBy *int64) (*model.ShoppingItem, error) {
	var aBy sql.NullInt64
	if addedBy != nil {
		aBy = sql.NullInt64{Int64: *addedBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO shopping_items (list_id, name, canonical_name, quantity, unit, added_by) VALUES (?, ?, ?, ?, ?, ?)`,
		listID, name, canonicalName, quantity, unit, aBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ListStore) GetItemByID(id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingItemCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ListStore) ListItemsByList(listID int64) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingItemCols+` FROM shopping_items WHERE list_id = ? ORDER BY status ASC, created_at ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ListStore) UpdateItem(id int64, name, canonicalName, quantity, unit string) (*model.ShoppingItem, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET name = ?, canonical_name = ?, quantity = ?, unit = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, canonicalName, quantity, unit, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ListStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// SetItemStatus moves an item between workflow states. Transitions to
// bought stamp bought_by and bought_at; transitions away clear them.
func (s *ListStore) SetItemStatus(id int64, status model.ItemStatus, by *int64) (*model.ShoppingItem, error) {
	var err error
	if status == model.ItemStatusBought {
		var bBy sql.NullInt64
		if by != nil {
			bBy = sql.NullInt64{Int64: *by, Valid: true}
		}
		_, err = s.db.Exec(
			`UPDATE shopping_items SET status = ?, bought_by = ?, bought_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			status, bBy, time.Now().UTC(), id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET status = ?, bought_by = NULL, bought_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			status, id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set item status: %w", err)
	}
	return s.GetItemByID(id)
}

// ClearBought deletes bought items from a list and reports how many
// went away.
func (s *ListStore) ClearBought(listID int64) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM shopping_items WHERE list_id = ? AND status = ?`,
		listID, model.ItemStatusBought,
	)
	if err != nil {
		return 0, fmt.Errorf("clear bought: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func (s *ListStore) CountByStatus(listID int64, status model.ItemStatus) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM shopping_items WHERE list_id = ? AND status = ?`,
		listID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
