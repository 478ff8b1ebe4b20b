package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/devitsbeka/foodvault/internal/access"
	"github.com/devitsbeka/foodvault/internal/auth"
	"github.com/devitsbeka/foodvault/internal/ingredient"
	"github.com/devitsbeka/foodvault/internal/match"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/recipes"
	"github.com/devitsbeka/foodvault/internal/store"
)

type RecipeHandler struct {
	recipes  *store.RecipeStore
	svc      *recipes.Service
	resolver access.Resolver
	logger   *slog.Logger
}

func NewRecipeHandler(recipeStore *store.RecipeStore, svc *recipes.Service, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipeStore, svc: svc, logger: logger}
}

type recipeIngredientRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Measure string `json:"measure" validate:"omitempty,max=100"`
}

type recipeRequest struct {
	Name         string                    `json:"name" validate:"required,min=1,max=255"`
	ImageURL     string                    `json:"image_url" validate:"omitempty,url,max=500"`
	Instructions string                    `json:"instructions" validate:"omitempty,max=10000"`
	Ingredients  []recipeIngredientRequest `json:"ingredients" validate:"required,min=1,max=50,dive"`
}

type importRecipeRequest struct {
	ExternalID string `json:"external_id" validate:"required"`
}

type recipeDetailResponse struct {
	Recipe      *model.Recipe            `json:"recipe"`
	Ingredients []model.RecipeIngredient `json:"ingredients"`
}

// Create handles POST /api/recipes. Each ingredient line is stamped
// with its canonical identity at write time.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.Create(userID, strings.TrimSpace(req.Name), req.ImageURL, req.Instructions, h.ingredientInputs(req.Ingredients))
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.writeRecipeDetail(w, http.StatusCreated, recipe)
}

// List handles GET /api/recipes
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.recipes.ListByOwner(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list recipes", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if list == nil {
		list = []model.Recipe{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.resolveRecipe(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	h.writeRecipeDetail(w, http.StatusOK, recipe)
}

// Update handles PUT /api/recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.resolveRecipe(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.recipes.Update(recipe.ID, strings.TrimSpace(req.Name), req.ImageURL, req.Instructions, h.ingredientInputs(req.Ingredients))
	if err != nil {
		h.logger.Error("update recipe", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.writeRecipeDetail(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.resolveRecipe(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	if err := h.recipes.Delete(recipe.ID); err != nil {
		h.logger.Error("delete recipe", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Recommendations handles GET /api/recipes/recommendations with an
// optional ?min_percent= floor.
func (h *RecipeHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	minPercent := 0
	if raw := r.URL.Query().Get("min_percent"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 100 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "min_percent must be between 0 and 100"})
			return
		}
		minPercent = parsed
	}

	matches, err := h.svc.Recommendations(auth.UserID(r.Context()), minPercent)
	if err != nil {
		h.logger.Error("build recommendations", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if matches == nil {
		matches = []match.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// Search handles GET /api/recipes/search?q=term against the external
// recipe provider, with results scored against the caller's inventory.
func (h *RecipeHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	matches, err := h.svc.SearchExternal(r.Context(), auth.UserID(r.Context()), query)
	if err != nil {
		h.logger.Error("search external recipes", "error", err, "query", query)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "recipe search is unavailable"})
		return
	}
	if matches == nil {
		matches = []match.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// Import handles POST /api/recipes/import, copying an external recipe
// into the caller's collection.
func (h *RecipeHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	recipe, err := h.svc.ImportExternal(r.Context(), auth.UserID(r.Context()), req.ExternalID)
	if err != nil {
		writeServiceError(w, h.logger, "import external recipe", err)
		return
	}
	h.writeRecipeDetail(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) ingredientInputs(reqs []recipeIngredientRequest) []store.IngredientInput {
	inputs := make([]store.IngredientInput, 0, len(reqs))
	for _, ing := range reqs {
		name := strings.TrimSpace(ing.Name)
		inputs = append(inputs, store.IngredientInput{
			Name:          name,
			CanonicalName: ingredient.Normalize(name),
			Measure:       ing.Measure,
		})
	}
	return inputs
}

// resolveRecipe loads a recipe and authorizes the caller as its owner.
func (h *RecipeHandler) resolveRecipe(w http.ResponseWriter, r *http.Request, userID int64) (*model.Recipe, bool) {
	recipeID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}
	recipe, err := h.recipes.GetByID(recipeID)
	if err != nil {
		h.logger.Error("load recipe", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, false
	}
	if recipe == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
		return nil, false
	}
	if h.resolver.ResolveOwned(recipe.OwnerID, userID) != access.Authorized {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "you do not have access to this recipe"})
		return nil, false
	}
	return recipe, true
}

func (h *RecipeHandler) writeRecipeDetail(w http.ResponseWriter, status int, recipe *model.Recipe) {
	ingredients, err := h.recipes.GetIngredients(recipe.ID)
	if err != nil {
		h.logger.Error("load recipe ingredients", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if ingredients == nil {
		ingredients = []model.RecipeIngredient{}
	}
	writeJSON(w, status, recipeDetailResponse{Recipe: recipe, Ingredients: ingredients})
}
