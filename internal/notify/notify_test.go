package notify

import (
	"log/slog"
	"testing"

	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/store"
	ws "github.com/devitsbeka/foodvault/internal/websocket"
)

func setupNotifierTest(t *testing.T) (*Notifier, *store.UserStore, *store.FamilyStore, *store.ListStore, *store.ReviewStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	families := store.NewFamilyStore(db)
	lists := store.NewListStore(db)
	reviews := store.NewReviewStore(db)
	n := New(ws.NewHub(slog.Default()), nil, families, lists, slog.Default())
	return n, users, families, lists, reviews
}

func TestReviewAudienceIncludesFamily(t *testing.T) {
	n, users, families, lists, reviews := setupNotifierTest(t)

	alice, _ := users.Create("alice@example.com", "Alice", "hash1")
	bob, _ := users.Create("bob@example.com", "Bob", "hash2")
	carol, _ := users.Create("carol@example.com", "Carol", "hash3")

	family, _ := families.Create("Smith", alice.ID)
	families.AddMember(family.ID, alice.ID, model.RoleAdmin)
	families.AddMember(family.ID, bob.ID, model.RoleMember)
	families.AddMember(family.ID, carol.ID, model.RoleMember)

	list, _ := lists.CreateList("Family Shop", alice.ID, &family.ID)
	item, _ := lists.CreateItem(list.ID, "milk", "milk", "", "", &bob.ID)

	entry, err := reviews.CreateEntry(bob.ID, alice.ID, "milk", "milk", model.CategoryFridge, "", "", "", &item.ID)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	audience := n.reviewAudience(entry)

	want := map[int64]bool{alice.ID: true, bob.ID: true, carol.ID: true}
	if len(audience) != 3 {
		t.Fatalf("audience size = %d, want 3 (%v)", len(audience), audience)
	}
	for _, id := range audience {
		if !want[id] {
			t.Errorf("unexpected audience member %d", id)
		}
	}
}

func TestReviewAudienceSourcelessIsOwnerAndProposer(t *testing.T) {
	n, users, _, _, reviews := setupNotifierTest(t)

	bob, _ := users.Create("bob@example.com", "Bob", "hash1")

	entry, err := reviews.CreateEntry(bob.ID, bob.ID, "milk", "milk", model.CategoryFridge, "", "", "", nil)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	audience := n.reviewAudience(entry)
	if len(audience) != 1 || audience[0] != bob.ID {
		t.Errorf("audience = %v, want [%d]", audience, bob.ID)
	}
}

func TestListAudiencePersonalList(t *testing.T) {
	n, users, _, lists, _ := setupNotifierTest(t)

	alice, _ := users.Create("alice@example.com", "Alice", "hash1")
	list, _ := lists.CreateList("Personal", alice.ID, nil)

	audience := n.listAudience(list)
	if len(audience) != 1 || audience[0] != alice.ID {
		t.Errorf("audience = %v, want [%d]", audience, alice.ID)
	}
}

func TestDedup(t *testing.T) {
	got := dedup([]int64{1, 2, 1, 3, 2})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []int64{1, 2, 3}
	for i, id := range want {
		if got[i] != id {
			t.Errorf("got[%d] = %d, want %d", i, got[i], id)
		}
	}
}
