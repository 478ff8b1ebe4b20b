package store

import (
	"testing"
	"time"

	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/model"
)

func setupInventoryTestDB(t *testing.T) (*InventoryStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewInventoryStore(db), NewUserStore(db)
}

func TestInventoryCreate(t *testing.T) {
	is, us := setupInventoryTestDB(t)

	u, err := us.Create("alice@example.com", "Alice", "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	expires := time.Now().UTC().Add(7 * 24 * time.Hour)
	item, err := is.Create(u.ID, "Whole Milk", "milk", model.CategoryFridge, "1", "gallon", &expires, nil)
	if err != nil {
		t.Fatalf("create inventory item: %v", err)
	}
	if item.Name != "Whole Milk" {
		t.Errorf("name = %q, want %q", item.Name, "Whole Milk")
	}
	if item.CanonicalName != "milk" {
		t.Errorf("canonical_name = %q, want %q", item.CanonicalName, "milk")
	}
	if item.Category != model.CategoryFridge {
		t.Errorf("category = %q, want %q", item.Category, model.CategoryFridge)
	}
	if item.ExpiresAt == nil {
		t.Error("expected expires_at to be set")
	}
	if item.SourceItemID != nil {
		t.Error("expected nil source_item_id")
	}
}

func TestInventoryGetByIDNotFound(t *testing.T) {
	is, _ := setupInventoryTestDB(t)

	item, err := is.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if item != nil {
		t.Error("expected nil for nonexistent item")
	}
}

func TestInventoryListByOwner(t *testing.T) {
	is, us := setupInventoryTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	bob, _ := us.Create("bob@example.com", "Bob", "hash2")
	is.Create(alice.ID, "Milk", "milk", model.CategoryFridge, "", "", nil, nil)
	is.Create(alice.ID, "Flour", "flour", model.CategoryPantry, "", "", nil, nil)
	is.Create(bob.ID, "Eggs", "egg", model.CategoryFridge, "", "", nil, nil)

	items, err := is.ListByOwner(alice.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
}

func TestInventoryListByOwnerAndCategory(t *testing.T) {
	is, us := setupInventoryTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	is.Create(alice.ID, "Milk", "milk", model.CategoryFridge, "", "", nil, nil)
	is.Create(alice.ID, "Flour", "flour", model.CategoryPantry, "", "", nil, nil)

	items, err := is.ListByOwnerAndCategory(alice.ID, model.CategoryFridge)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].CanonicalName != "milk" {
		t.Errorf("canonical_name = %q, want %q", items[0].CanonicalName, "milk")
	}
}

func TestInventoryCanonicalNamesForOwner(t *testing.T) {
	is, us := setupInventoryTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	is.Create(alice.ID, "Whole Milk", "milk", model.CategoryFridge, "", "", nil, nil)
	is.Create(alice.ID, "Skim Milk", "milk", model.CategoryFridge, "", "", nil, nil)
	is.Create(alice.ID, "Flour", "flour", model.CategoryPantry, "", "", nil, nil)

	names, err := is.CanonicalNamesForOwner(alice.ID)
	if err != nil {
		t.Fatalf("canonical names: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("names = %d, want 2 (duplicates collapsed)", len(names))
	}
	if names[0] != "flour" || names[1] != "milk" {
		t.Errorf("names = %v, want [flour milk]", names)
	}
}

func TestInventoryUpdate(t *testing.T) {
	is, us := setupInventoryTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	item, _ := is.Create(alice.ID, "Milk", "milk", model.CategoryFridge, "1", "gallon", nil, nil)

	expires := time.Now().UTC().Add(3 * 24 * time.Hour)
	updated, err := is.Update(item.ID, "Oat Milk", "oat milk", model.CategoryFridge, "2", "cartons", &expires)
	if err != nil {
		t.Fatalf("update inventory item: %v", err)
	}
	if updated.Name != "Oat Milk" {
		t.Errorf("name = %q, want %q", updated.Name, "Oat Milk")
	}
	if updated.CanonicalName != "oat milk" {
		t.Errorf("canonical_name = %q, want %q", updated.CanonicalName, "oat milk")
	}
	if updated.ExpiresAt == nil {
		t.Error("expected expires_at to be set")
	}
}

func TestInventoryDelete(t *testing.T) {
	is, us := setupInventoryTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	item, _ := is.Create(alice.ID, "Milk", "milk", model.CategoryFridge, "", "", nil, nil)

	if err := is.Delete(item.ID); err != nil {
		t.Fatalf("delete inventory item: %v", err)
	}

	got, err := is.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestInventoryListExpiringBefore(t *testing.T) {
	is, us := setupInventoryTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	soon := time.Now().UTC().Add(24 * time.Hour)
	later := time.Now().UTC().Add(30 * 24 * time.Hour)
	is.Create(alice.ID, "Milk", "milk", model.CategoryFridge, "", "", &soon, nil)
	is.Create(alice.ID, "Frozen Peas", "pea", model.CategoryOther, "", "", &later, nil)
	is.Create(alice.ID, "Salt", "salt", model.CategoryPantry, "", "", nil, nil)

	items, err := is.ListExpiringBefore(time.Now().UTC().Add(3 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("list expiring: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].CanonicalName != "milk" {
		t.Errorf("canonical_name = %q, want %q", items[0].CanonicalName, "milk")
	}
}
