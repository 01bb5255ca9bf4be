package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/service"
)

// imageField is the multipart field carrying an uploaded recipe image.
const imageField = "image"

// RecipeHandler serves /recipe/recipes and the image upload endpoint.
type RecipeHandler struct {
	recipes   *service.RecipeService
	maxUpload int64
	logger    *slog.Logger
}

func NewRecipeHandler(recipes *service.RecipeService, maxUpload int64, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, maxUpload: maxUpload, logger: logger}
}

type recipeRequest struct {
	Title       *string          `json:"title"`
	TimeMinutes *int             `json:"timeMinutes"`
	Price       *decimal.Decimal `json:"price"`
	Link        *string          `json:"link"`
	Tags        []string         `json:"tags"`        // tag IDs
	Ingredients []string         `json:"ingredients"` // ingredient IDs
}

func (req recipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.Tags,
		IngredientIDs: req.Ingredients,
	}
}

type recipeResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	TimeMinutes int            `json:"timeMinutes"`
	Price       string         `json:"price"`
	Link        string         `json:"link"`
	Image       string         `json:"image,omitempty"`
	Tags        []attrResponse `json:"tags"`
	Ingredients []attrResponse `json:"ingredients"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (h *RecipeHandler) view(rc *model.Recipe) recipeResponse {
	out := recipeResponse{
		ID:          rc.ID,
		Title:       rc.Title,
		TimeMinutes: rc.TimeMinutes,
		Price:       rc.Price.StringFixed(2),
		Link:        rc.Link,
		Image:       h.recipes.ImageURL(rc.Image),
		Tags:        make([]attrResponse, 0, len(rc.Tags)),
		Ingredients: make([]attrResponse, 0, len(rc.Ingredients)),
		CreatedAt:   rc.CreatedAt,
		UpdatedAt:   rc.UpdatedAt,
	}
	for _, t := range rc.Tags {
		out.Tags = append(out.Tags, attrResponse{ID: t.ID, Name: t.Name})
	}
	for _, i := range rc.Ingredients {
		out.Ingredients = append(out.Ingredients, attrResponse{ID: i.ID, Name: i.Name})
	}
	return out
}

// HandleList returns the caller's recipes, newest first.
//
// HTTP: GET /recipe/recipes?tags=id1,id2&ingredients=id3
//
// A recipe matches a filter when it links to ANY of the listed IDs; both
// filters together must both match.
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	q := r.URL.Query()
	recipes, err := h.recipes.List(r.Context(), user.ID, splitIDs(q.Get("tags")), splitIDs(q.Get("ingredients")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, h.view(&recipes[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCreate adds a recipe.
//
// HTTP: POST /recipe/recipes
// REQUEST BODY: {"title": "...", "timeMinutes": 10, "price": "5.50", "tags": ["<id>"]}
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	recipe, err := h.recipes.Create(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(recipe))
}

// HandleGet returns one of the caller's recipes.
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	recipe, err := h.recipes.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(recipe))
}

// HandleUpdate changes a recipe. PATCH applies the fields present; PUT
// replaces the recipe, so title, timeMinutes and price are required and
// absent link, tags and ingredients are cleared.
func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if r.Method == http.MethodPut {
		if err := req.complete(); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	recipe, err := h.recipes.Update(r.Context(), user.ID, chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(recipe))
}

// complete fills a PUT request: required fields must be present, optional
// ones default to empty.
func (req *recipeRequest) complete() error {
	switch {
	case req.Title == nil:
		return apperror.ValidationFailed("title", "title is required")
	case req.TimeMinutes == nil:
		return apperror.ValidationFailed("timeMinutes", "timeMinutes is required")
	case req.Price == nil:
		return apperror.ValidationFailed("price", "price is required")
	}
	if req.Link == nil {
		empty := ""
		req.Link = &empty
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	if req.Ingredients == nil {
		req.Ingredients = []string{}
	}
	return nil
}

// HandleDelete removes a recipe and its image.
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.recipes.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadImage stores a recipe image.
//
// HTTP: POST /recipe/recipes/{id}/upload-image
// BODY: multipart/form-data with the file in the "image" field.
//
// http.MaxBytesReader stops reading past maxUpload, so an oversized upload
// fails while parsing instead of filling the disk.
func (h *RecipeHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, apperror.ValidationFailed(imageField,
				fmt.Sprintf("image must be at most %d bytes", h.maxUpload)))
			return
		}
		writeError(w, h.logger, apperror.ValidationFailed(imageField, "an image file is required"))
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	recipe, err := h.recipes.UploadImage(r.Context(), user.ID, chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":    recipe.ID,
		"image": h.recipes.ImageURL(recipe.Image),
	})
}

// splitIDs parses a comma-separated ID list, skipping blanks. Empty input
// gives nil, meaning no filter.
func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
