package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devitsbeka/foodvault/internal/auth"
	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/notify"
	"github.com/devitsbeka/foodvault/internal/review"
	"github.com/devitsbeka/foodvault/internal/store"
	ws "github.com/devitsbeka/foodvault/internal/websocket"
)

type reviewEnv struct {
	h         *ReviewHandler
	inventory *store.InventoryStore
	reviews   *store.ReviewStore
	users     *store.UserStore
}

func setupReviewHandler(t *testing.T) *reviewEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	families := store.NewFamilyStore(db)
	lists := store.NewListStore(db)
	inventory := store.NewInventoryStore(db)
	reviews := store.NewReviewStore(db)
	logger := testLogger()
	notifier := notify.New(ws.NewHub(logger), nil, families, lists, logger)
	svc := review.NewService(db, families, lists, inventory, reviews, notifier, logger)

	h := NewReviewHandler(svc, reviews, inventory, logger)
	return &reviewEnv{h: h, inventory: inventory, reviews: reviews, users: users}
}

func (e *reviewEnv) user(t *testing.T, emailAddr, name string) *model.User {
	t.Helper()
	u, err := e.users.Create(emailAddr, name, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", emailAddr, err)
	}
	return u
}

func TestProposeReturnsDuplicateHints(t *testing.T) {
	env := setupReviewHandler(t)
	alice := env.user(t, "alice@example.com", "Alice")

	env.inventory.Create(alice.ID, "Tomatoes", "tomato", model.CategoryFridge, "", "", nil, nil)
	env.inventory.Create(alice.ID, "Flour", "flour", model.CategoryPantry, "", "", nil, nil)

	req := authedRequest("POST", "/api/review",
		`{"name":"Fresh Tomatoe"}`, auth.AuthContext{UserID: alice.ID})
	rec := httptest.NewRecorder()
	env.h.Propose(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp proposeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Entry.Status != model.ReviewStatusPending {
		t.Errorf("Status = %q, want %q", resp.Entry.Status, model.ReviewStatusPending)
	}
	if len(resp.PossibleDuplicates) != 1 {
		t.Fatalf("PossibleDuplicates = %v, want exactly the tomato identity", resp.PossibleDuplicates)
	}
	if resp.PossibleDuplicates[0] != "tomato" {
		t.Errorf("hint = %q, want %q", resp.PossibleDuplicates[0], "tomato")
	}
}

func TestProposeWithoutDuplicates(t *testing.T) {
	env := setupReviewHandler(t)
	alice := env.user(t, "alice@example.com", "Alice")

	env.inventory.Create(alice.ID, "Flour", "flour", model.CategoryPantry, "", "", nil, nil)

	req := authedRequest("POST", "/api/review",
		`{"name":"Basil"}`, auth.AuthContext{UserID: alice.ID})
	rec := httptest.NewRecorder()
	env.h.Propose(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp proposeResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.PossibleDuplicates) != 0 {
		t.Errorf("PossibleDuplicates = %v, want none", resp.PossibleDuplicates)
	}
}

func TestProposeIntoStrangerInventoryForbidden(t *testing.T) {
	env := setupReviewHandler(t)
	alice := env.user(t, "alice@example.com", "Alice")
	bob := env.user(t, "bob@example.com", "Bob")

	req := authedRequest("POST", "/api/review",
		fmt.Sprintf(`{"name":"Tomatoes","owner_id":%d}`, alice.ID),
		auth.AuthContext{UserID: bob.ID})
	rec := httptest.NewRecorder()
	env.h.Propose(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestApproveMovesEntryIntoInventory(t *testing.T) {
	env := setupReviewHandler(t)
	alice := env.user(t, "alice@example.com", "Alice")

	propose := authedRequest("POST", "/api/review",
		`{"name":"Olive Oil","quantity":"1","unit":"bottle"}`,
		auth.AuthContext{UserID: alice.ID})
	recPropose := httptest.NewRecorder()
	env.h.Propose(recPropose, propose)
	var proposed proposeResponse
	json.Unmarshal(recPropose.Body.Bytes(), &proposed)

	approve := authedRequest("POST", "/api/review/1/approve", "", auth.AuthContext{UserID: alice.ID})
	approve.SetPathValue("id", fmt.Sprint(proposed.Entry.ID))
	recApprove := httptest.NewRecorder()
	env.h.Approve(recApprove, approve)

	if recApprove.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", recApprove.Code, recApprove.Body.String())
	}

	var resp approveResponse
	if err := json.Unmarshal(recApprove.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Entry.Status != model.ReviewStatusApproved {
		t.Errorf("entry status = %q, want %q", resp.Entry.Status, model.ReviewStatusApproved)
	}
	if resp.InventoryItem == nil {
		t.Fatal("expected an inventory item")
	}
	if resp.InventoryItem.CanonicalName != "olive oil" {
		t.Errorf("CanonicalName = %q, want %q", resp.InventoryItem.CanonicalName, "olive oil")
	}

	items, _ := env.inventory.ListByOwner(alice.ID)
	if len(items) != 1 {
		t.Errorf("len(inventory) = %d, want 1", len(items))
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	env := setupReviewHandler(t)
	alice := env.user(t, "alice@example.com", "Alice")

	propose := authedRequest("POST", "/api/review", `{"name":"Milk"}`,
		auth.AuthContext{UserID: alice.ID})
	recPropose := httptest.NewRecorder()
	env.h.Propose(recPropose, propose)
	var proposed proposeResponse
	json.Unmarshal(recPropose.Body.Bytes(), &proposed)

	first := authedRequest("POST", "/api/review/1/approve", "", auth.AuthContext{UserID: alice.ID})
	first.SetPathValue("id", fmt.Sprint(proposed.Entry.ID))
	recFirst := httptest.NewRecorder()
	env.h.Approve(recFirst, first)
	if recFirst.Code != http.StatusOK {
		t.Fatalf("first approve = %d: %s", recFirst.Code, recFirst.Body.String())
	}

	second := authedRequest("POST", "/api/review/1/approve", "", auth.AuthContext{UserID: alice.ID})
	second.SetPathValue("id", fmt.Sprint(proposed.Entry.ID))
	recSecond := httptest.NewRecorder()
	env.h.Approve(recSecond, second)
	if recSecond.Code != http.StatusConflict {
		t.Errorf("second approve = %d, want %d", recSecond.Code, http.StatusConflict)
	}
}

func TestGetEntryHiddenFromOutsiders(t *testing.T) {
	env := setupReviewHandler(t)
	alice := env.user(t, "alice@example.com", "Alice")
	mallory := env.user(t, "mallory@example.com", "Mallory")

	propose := authedRequest("POST", "/api/review", `{"name":"Truffles"}`,
		auth.AuthContext{UserID: alice.ID})
	recPropose := httptest.NewRecorder()
	env.h.Propose(recPropose, propose)
	var proposed proposeResponse
	json.Unmarshal(recPropose.Body.Bytes(), &proposed)

	req := authedRequest("GET", "/api/review/1", "", auth.AuthContext{UserID: mallory.ID})
	req.SetPathValue("id", fmt.Sprint(proposed.Entry.ID))
	rec := httptest.NewRecorder()
	env.h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPendingQueueListsOwnProposals(t *testing.T) {
	env := setupReviewHandler(t)
	alice := env.user(t, "alice@example.com", "Alice")
	bob := env.user(t, "bob@example.com", "Bob")

	propose := authedRequest("POST", "/api/review", `{"name":"Cheddar"}`,
		auth.AuthContext{UserID: alice.ID})
	recPropose := httptest.NewRecorder()
	env.h.Propose(recPropose, propose)

	mine := authedRequest("GET", "/api/review/pending", "", auth.AuthContext{UserID: alice.ID})
	recMine := httptest.NewRecorder()
	env.h.Pending(recMine, mine)

	var entries []model.ReviewEntry
	json.Unmarshal(recMine.Body.Bytes(), &entries)
	if len(entries) != 1 {
		t.Errorf("alice pending = %d entries, want 1", len(entries))
	}

	other := authedRequest("GET", "/api/review/pending", "", auth.AuthContext{UserID: bob.ID})
	recOther := httptest.NewRecorder()
	env.h.Pending(recOther, other)

	var otherEntries []model.ReviewEntry
	json.Unmarshal(recOther.Body.Bytes(), &otherEntries)
	if len(otherEntries) != 0 {
		t.Errorf("bob pending = %d entries, want 0", len(otherEntries))
	}
}
