package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const searchCacheTTL = 15 * time.Minute

// TheMealDB's free developer tier is version v1 with the shared key "1".
const (
	mealDBBaseURL = "https://themealdb.com/api/json"
	mealDBVersion = "v1"
	mealDBToken   = "1"
)

// ExternalIngredient is one ingredient line from a provider recipe.
type ExternalIngredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure,omitempty"`
}

// ExternalRecipe is a provider recipe flattened into FoodVault terms.
type ExternalRecipe struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Category     string               `json:"category,omitempty"`
	Area         string               `json:"area,omitempty"`
	Instructions string               `json:"instructions,omitempty"`
	ImageURL     string               `json:"image_url,omitempty"`
	Ingredients  []ExternalIngredient `json:"ingredients"`
}

type cachedSearch struct {
	results   []ExternalRecipe
	fetchedAt time.Time
}

// MealDBClient queries TheMealDB public recipe database. Search
// results are cached per query so repeated lookups within the TTL do
// not hit the API again.
type MealDBClient struct {
	client  *http.Client
	baseURL string

	mu    sync.RWMutex
	cache map[string]cachedSearch
}

// NewMealDBClient returns a client for the free tier.
func NewMealDBClient() *MealDBClient {
	return &MealDBClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: mealDBBaseURL,
		cache:   make(map[string]cachedSearch),
	}
}

// Search finds recipes by name. An empty query returns no results
// without a request.
func (c *MealDBClient) Search(ctx context.Context, query string) ([]ExternalRecipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	key := strings.ToLower(query)

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < searchCacheTTL {
		return entry.results, nil
	}

	meals, err := c.get(ctx, "search", url.Values{"s": {query}})
	if err != nil {
		// Return stale results on error rather than failing the search.
		if ok {
			return entry.results, nil
		}
		return nil, err
	}

	results := make([]ExternalRecipe, 0, len(meals))
	for _, m := range meals {
		results = append(results, m.toExternal())
	}

	c.mu.Lock()
	for k, e := range c.cache {
		if time.Since(e.fetchedAt) >= searchCacheTTL {
			delete(c.cache, k)
		}
	}
	c.cache[key] = cachedSearch{results: results, fetchedAt: time.Now()}
	c.mu.Unlock()

	return results, nil
}

// Lookup fetches one recipe by its provider ID. A missing recipe
// returns nil without error.
func (c *MealDBClient) Lookup(ctx context.Context, id string) (*ExternalRecipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	meals, err := c.get(ctx, "lookup", url.Values{"i": {id}})
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, nil
	}
	ext := meals[0].toExternal()
	return &ext, nil
}

type mealsResponse struct {
	Meals []meal `json:"meals"`
}

func (c *MealDBClient) get(ctx context.Context, resource string, params url.Values) ([]meal, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/%s.php", c.baseURL, mealDBVersion, mealDBToken, resource)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build mealdb request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mealdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mealdb returned status %d", resp.StatusCode)
	}

	// No results come back as {"meals": null}, which decodes to a nil slice.
	var decoded mealsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode mealdb response: %w", err)
	}
	return decoded.Meals, nil
}

// meal is TheMealDB wire format. Ingredients arrive in twenty numbered
// slots rather than a list.
type meal struct {
	ID           string `json:"idMeal"`
	Name         string `json:"strMeal"`
	Category     string `json:"strCategory"`
	Area         string `json:"strArea"`
	Instructions string `json:"strInstructions"`
	Thumbnail    string `json:"strMealThumb"`
	Ingredient1  string `json:"strIngredient1"`
	Ingredient2  string `json:"strIngredient2"`
	Ingredient3  string `json:"strIngredient3"`
	Ingredient4  string `json:"strIngredient4"`
	Ingredient5  string `json:"strIngredient5"`
	Ingredient6  string `json:"strIngredient6"`
	Ingredient7  string `json:"strIngredient7"`
	Ingredient8  string `json:"strIngredient8"`
	Ingredient9  string `json:"strIngredient9"`
	Ingredient10 string `json:"strIngredient10"`
	Ingredient11 string `json:"strIngredient11"`
	Ingredient12 string `json:"strIngredient12"`
	Ingredient13 string `json:"strIngredient13"`
	Ingredient14 string `json:"strIngredient14"`
	Ingredient15 string `json:"strIngredient15"`
	Ingredient16 string `json:"strIngredient16"`
	Ingredient17 string `json:"strIngredient17"`
	Ingredient18 string `json:"strIngredient18"`
	Ingredient19 string `json:"strIngredient19"`
	Ingredient20 string `json:"strIngredient20"`
	Measure1     string `json:"strMeasure1"`
	Measure2     string `json:"strMeasure2"`
	Measure3     string `json:"strMeasure3"`
	Measure4     string `json:"strMeasure4"`
	Measure5     string `json:"strMeasure5"`
	Measure6     string `json:"strMeasure6"`
	Measure7     string `json:"strMeasure7"`
	Measure8     string `json:"strMeasure8"`
	Measure9     string `json:"strMeasure9"`
	Measure10    string `json:"strMeasure10"`
	Measure11    string `json:"strMeasure11"`
	Measure12    string `json:"strMeasure12"`
	Measure13    string `json:"strMeasure13"`
	Measure14    string `json:"strMeasure14"`
	Measure15    string `json:"strMeasure15"`
	Measure16    string `json:"strMeasure16"`
	Measure17    string `json:"strMeasure17"`
	Measure18    string `json:"strMeasure18"`
	Measure19    string `json:"strMeasure19"`
	Measure20    string `json:"strMeasure20"`
}

// toExternal flattens the numbered slots into an ingredient list,
// skipping blanks. The struct round-trips through a string map so the
// slots can be read by index instead of by field.
func (m meal) toExternal() ExternalRecipe {
	ext := ExternalRecipe{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		Area:         m.Area,
		Instructions: m.Instructions,
		ImageURL:     m.Thumbnail,
	}

	body, err := json.Marshal(m)
	if err != nil {
		return ext
	}
	var slots map[string]string
	if err := json.Unmarshal(body, &slots); err != nil {
		return ext
	}

	for i := 1; i <= 20; i++ {
		name := strings.TrimSpace(slots[fmt.Sprintf("strIngredient%d", i)])
		if name == "" {
			continue
		}
		ext.Ingredients = append(ext.Ingredients, ExternalIngredient{
			Name:    name,
			Measure: strings.TrimSpace(slots[fmt.Sprintf("strMeasure%d", i)]),
		})
	}
	return ext
}
