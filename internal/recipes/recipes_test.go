package recipes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/errs"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/store"
)

const pastaPayload = `{"meals":[{"idMeal":"90001","strMeal":"Tomato Garlic Pasta","strCategory":"Pasta","strArea":"Italian","strInstructions":"Boil the spaghetti. Simmer the tomatoes with garlic.","strMealThumb":"https://example.com/pasta.jpg","strIngredient1":"Tomatoes","strIngredient2":"Garlic","strIngredient3":" ","strIngredient4":"Spaghetti","strIngredient5":"Olive Oil","strMeasure1":"4","strMeasure2":"2 cloves","strMeasure3":" ","strMeasure4":"200g","strMeasure5":"1 tbsp "}]}`

const noMealsPayload = `{"meals":null}`

func newTestMealDB(t *testing.T, payload string) (*MealDBClient, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(server.Close)

	client := NewMealDBClient()
	client.baseURL = server.URL
	return client, &hits
}

type recipesEnv struct {
	svc       *Service
	recipes   *store.RecipeStore
	inventory *store.InventoryStore
	ownerID   int64
}

func setupRecipesService(t *testing.T, mealdb *MealDBClient) *recipesEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	owner, err := users.Create("cook@example.com", "Cook", "hash")
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}

	env := &recipesEnv{
		recipes:   store.NewRecipeStore(db),
		inventory: store.NewInventoryStore(db),
		ownerID:   owner.ID,
	}
	env.svc = NewService(env.recipes, env.inventory, mealdb)
	return env
}

func (env *recipesEnv) addInventory(t *testing.T, name, canonical string) {
	t.Helper()
	if _, err := env.inventory.Create(env.ownerID, name, canonical, model.CategoryPantry, "", "", nil, nil); err != nil {
		t.Fatalf("create inventory %q: %v", name, err)
	}
}

func TestSearchFlattensIngredientSlots(t *testing.T) {
	client, _ := newTestMealDB(t, pastaPayload)

	results, err := client.Search(context.Background(), "pasta")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}

	r := results[0]
	if r.ID != "90001" {
		t.Errorf("ID = %q, want %q", r.ID, "90001")
	}
	if r.Name != "Tomato Garlic Pasta" {
		t.Errorf("Name = %q, want %q", r.Name, "Tomato Garlic Pasta")
	}
	if r.Category != "Pasta" || r.Area != "Italian" {
		t.Errorf("Category/Area = %q/%q, want Pasta/Italian", r.Category, r.Area)
	}
	if r.ImageURL != "https://example.com/pasta.jpg" {
		t.Errorf("ImageURL = %q", r.ImageURL)
	}

	// Slot 3 holds only whitespace and must be skipped.
	want := []ExternalIngredient{
		{Name: "Tomatoes", Measure: "4"},
		{Name: "Garlic", Measure: "2 cloves"},
		{Name: "Spaghetti", Measure: "200g"},
		{Name: "Olive Oil", Measure: "1 tbsp"},
	}
	if len(r.Ingredients) != len(want) {
		t.Fatalf("got %d ingredients, want %d: %v", len(r.Ingredients), len(want), r.Ingredients)
	}
	for i, w := range want {
		if r.Ingredients[i] != w {
			t.Errorf("ingredient %d = %+v, want %+v", i, r.Ingredients[i], w)
		}
	}
}

func TestSearchCachesRepeatQueries(t *testing.T) {
	client, hits := newTestMealDB(t, pastaPayload)
	ctx := context.Background()

	if _, err := client.Search(ctx, "pasta"); err != nil {
		t.Fatalf("first search: %v", err)
	}
	// Same query with different case hits the cache.
	if _, err := client.Search(ctx, "Pasta"); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}

	if _, err := client.Search(ctx, "soup"); err != nil {
		t.Fatalf("third search: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestSearchServesStaleResultsOnFetchError(t *testing.T) {
	client, _ := newTestMealDB(t, pastaPayload)
	ctx := context.Background()

	fresh, err := client.Search(ctx, "pasta")
	if err != nil {
		t.Fatalf("prime search: %v", err)
	}

	// Point at a bad URL and expire the entry so the next search fails
	// its fetch.
	client.baseURL = "http://127.0.0.1:1"
	client.mu.Lock()
	entry := client.cache["pasta"]
	entry.fetchedAt = time.Now().Add(-searchCacheTTL - time.Minute)
	client.cache["pasta"] = entry
	client.mu.Unlock()

	stale, err := client.Search(ctx, "pasta")
	if err != nil {
		t.Fatalf("stale search error = %v, want nil", err)
	}
	if len(stale) != len(fresh) || stale[0].ID != fresh[0].ID {
		t.Errorf("stale results = %v, want cached %v", stale, fresh)
	}
}

func TestSearchErrorWithoutCache(t *testing.T) {
	client := NewMealDBClient()
	client.baseURL = "http://127.0.0.1:1"

	if _, err := client.Search(context.Background(), "pasta"); err == nil {
		t.Error("expected error when fetch fails with an empty cache")
	}
}

func TestSearchEmptyQuerySkipsRequest(t *testing.T) {
	client, hits := newTestMealDB(t, pastaPayload)

	results, err := client.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
	if got := hits.Load(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
}

func TestSearchNoResults(t *testing.T) {
	client, _ := newTestMealDB(t, noMealsPayload)

	results, err := client.Search(context.Background(), "xyzzy")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
}

func TestLookupReturnsRecipe(t *testing.T) {
	client, _ := newTestMealDB(t, pastaPayload)

	ext, err := client.Lookup(context.Background(), "90001")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if ext == nil {
		t.Fatal("Lookup() returned nil recipe")
	}
	if ext.Name != "Tomato Garlic Pasta" {
		t.Errorf("Name = %q, want %q", ext.Name, "Tomato Garlic Pasta")
	}
	if len(ext.Ingredients) != 4 {
		t.Errorf("got %d ingredients, want 4", len(ext.Ingredients))
	}
}

func TestLookupMissingReturnsNil(t *testing.T) {
	client, hits := newTestMealDB(t, noMealsPayload)

	ext, err := client.Lookup(context.Background(), "99999")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if ext != nil {
		t.Errorf("Lookup() = %+v, want nil", ext)
	}

	ext, err = client.Lookup(context.Background(), "")
	if err != nil || ext != nil {
		t.Errorf("Lookup(\"\") = %+v, %v, want nil, nil", ext, err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("requests = %d, want 1 (empty id skips the request)", got)
	}
}

func TestRecommendationsRanksByCoverage(t *testing.T) {
	client, _ := newTestMealDB(t, noMealsPayload)
	env := setupRecipesService(t, client)

	env.addInventory(t, "Tomatoes", "tomato")
	env.addInventory(t, "Garlic", "garlic")
	env.addInventory(t, "Olive Oil", "olive oil")

	fixtures := []struct {
		name        string
		ingredients []string
	}{
		{"Beef Stew", []string{"beef", "carrot", "potato"}},
		{"Tomato Soup", []string{"tomato", "garlic", "olive oil"}},
		{"Bruschetta", []string{"tomato", "basil"}},
	}
	for _, f := range fixtures {
		inputs := make([]store.IngredientInput, 0, len(f.ingredients))
		for _, ing := range f.ingredients {
			inputs = append(inputs, store.IngredientInput{Name: ing, CanonicalName: ing})
		}
		if _, err := env.recipes.Create(env.ownerID, f.name, "", "", inputs); err != nil {
			t.Fatalf("create recipe %q: %v", f.name, err)
		}
	}

	matches, err := env.svc.Recommendations(env.ownerID, 0)
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}

	wantOrder := []string{"Tomato Soup", "Bruschetta", "Beef Stew"}
	wantPercent := []int{100, 50, 0}
	for i := range matches {
		if matches[i].Name != wantOrder[i] {
			t.Errorf("match %d = %q, want %q", i, matches[i].Name, wantOrder[i])
		}
		if matches[i].Percent != wantPercent[i] {
			t.Errorf("match %d percent = %d, want %d", i, matches[i].Percent, wantPercent[i])
		}
	}

	bruschetta := matches[1]
	if len(bruschetta.Owned) != 1 || bruschetta.Owned[0] != "tomato" {
		t.Errorf("bruschetta owned = %v, want [tomato]", bruschetta.Owned)
	}
	if len(bruschetta.Missing) != 1 || bruschetta.Missing[0] != "basil" {
		t.Errorf("bruschetta missing = %v, want [basil]", bruschetta.Missing)
	}
}

func TestRecommendationsMinPercentFilters(t *testing.T) {
	client, _ := newTestMealDB(t, noMealsPayload)
	env := setupRecipesService(t, client)

	env.addInventory(t, "Tomatoes", "tomato")

	full := []store.IngredientInput{{Name: "tomato", CanonicalName: "tomato"}}
	partial := []store.IngredientInput{
		{Name: "tomato", CanonicalName: "tomato"},
		{Name: "basil", CanonicalName: "basil"},
	}
	if _, err := env.recipes.Create(env.ownerID, "Tomato Salad", "", "", full); err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if _, err := env.recipes.Create(env.ownerID, "Bruschetta", "", "", partial); err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	matches, err := env.svc.Recommendations(env.ownerID, 80)
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Name != "Tomato Salad" {
		t.Errorf("match = %q, want %q", matches[0].Name, "Tomato Salad")
	}
}

func TestSearchExternalAnnotatesAgainstInventory(t *testing.T) {
	client, _ := newTestMealDB(t, pastaPayload)
	env := setupRecipesService(t, client)

	env.addInventory(t, "Tomatoes", "tomato")
	env.addInventory(t, "Garlic", "garlic")

	matches, err := env.svc.SearchExternal(context.Background(), env.ownerID, "pasta")
	if err != nil {
		t.Fatalf("SearchExternal() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	m := matches[0]
	if m.ExternalID != "90001" {
		t.Errorf("ExternalID = %q, want %q", m.ExternalID, "90001")
	}
	if m.ID != 0 {
		t.Errorf("ID = %d, want 0 for an external match", m.ID)
	}
	if m.Percent != 50 {
		t.Errorf("Percent = %d, want 50", m.Percent)
	}
	if len(m.Owned) != 2 || m.Owned[0] != "tomato" || m.Owned[1] != "garlic" {
		t.Errorf("Owned = %v, want [tomato garlic]", m.Owned)
	}
	if len(m.Missing) != 2 || m.Missing[0] != "spaghetti" || m.Missing[1] != "olive oil" {
		t.Errorf("Missing = %v, want [spaghetti olive oil]", m.Missing)
	}
}

func TestImportExternalStampsCanonicalIdentity(t *testing.T) {
	client, _ := newTestMealDB(t, pastaPayload)
	env := setupRecipesService(t, client)

	recipe, err := env.svc.ImportExternal(context.Background(), env.ownerID, "90001")
	if err != nil {
		t.Fatalf("ImportExternal() error = %v", err)
	}
	if recipe.OwnerID != env.ownerID {
		t.Errorf("OwnerID = %d, want %d", recipe.OwnerID, env.ownerID)
	}
	if recipe.Name != "Tomato Garlic Pasta" {
		t.Errorf("Name = %q, want %q", recipe.Name, "Tomato Garlic Pasta")
	}
	if recipe.ImageURL != "https://example.com/pasta.jpg" {
		t.Errorf("ImageURL = %q", recipe.ImageURL)
	}

	ingredients, err := env.recipes.GetIngredients(recipe.ID)
	if err != nil {
		t.Fatalf("GetIngredients() error = %v", err)
	}
	if len(ingredients) != 4 {
		t.Fatalf("got %d ingredients, want 4", len(ingredients))
	}
	if ingredients[0].Name != "Tomatoes" || ingredients[0].CanonicalName != "tomato" {
		t.Errorf("ingredient 0 = %q/%q, want Tomatoes/tomato", ingredients[0].Name, ingredients[0].CanonicalName)
	}
	if ingredients[0].Measure != "4" {
		t.Errorf("ingredient 0 measure = %q, want %q", ingredients[0].Measure, "4")
	}
	if ingredients[3].Name != "Olive Oil" || ingredients[3].CanonicalName != "olive oil" {
		t.Errorf("ingredient 3 = %q/%q, want Olive Oil/olive oil", ingredients[3].Name, ingredients[3].CanonicalName)
	}
}

func TestImportExternalMissingIsNotFound(t *testing.T) {
	client, _ := newTestMealDB(t, noMealsPayload)
	env := setupRecipesService(t, client)

	_, err := env.svc.ImportExternal(context.Background(), env.ownerID, "99999")
	if err == nil {
		t.Fatal("expected error for missing external recipe")
	}
	if got := errs.Status(err); got != http.StatusNotFound {
		t.Errorf("status = %d, want %d", got, http.StatusNotFound)
	}
}

func TestImportExternalBadIDIsValidationError(t *testing.T) {
	client, hits := newTestMealDB(t, pastaPayload)
	env := setupRecipesService(t, client)

	_, err := env.svc.ImportExternal(context.Background(), env.ownerID, "abc")
	if err == nil {
		t.Fatal("expected error for a non-numeric id")
	}
	if got := errs.Status(err); got != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", got, http.StatusBadRequest)
	}
	if got := hits.Load(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
}
