package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/service"
)

// attrService is what tags and ingredients have in common: a named,
// user-owned attribute that recipes link to.
type attrService[T any] interface {
	Create(ctx context.Context, ownerID, name string) (*T, error)
	List(ctx context.Context, ownerID string, assignedOnly bool) ([]T, error)
	Update(ctx context.Context, ownerID, id, name string) (*T, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// attrResponse is the wire shape of a tag or ingredient.
type attrResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type attrRequest struct {
	Name *string `json:"name"`
}

// AttrHandler serves the CRUD endpoints of one attribute kind, scoped to the
// authenticated user.
type AttrHandler[T any] struct {
	svc    attrService[T]
	view   func(*T) attrResponse
	logger *slog.Logger
}

func NewTagHandler(svc *service.TagService, logger *slog.Logger) *AttrHandler[model.Tag] {
	return &AttrHandler[model.Tag]{
		svc:    svc,
		view:   func(t *model.Tag) attrResponse { return attrResponse{ID: t.ID, Name: t.Name} },
		logger: logger,
	}
}

func NewIngredientHandler(svc *service.IngredientService, logger *slog.Logger) *AttrHandler[model.Ingredient] {
	return &AttrHandler[model.Ingredient]{
		svc:    svc,
		view:   func(i *model.Ingredient) attrResponse { return attrResponse{ID: i.ID, Name: i.Name} },
		logger: logger,
	}
}

// HandleList returns the caller's items, name descending.
//
// HTTP: GET /recipe/tags, GET /recipe/ingredients
// QUERY: assigned_only=1 keeps only items linked to at least one recipe.
func (h *AttrHandler[T]) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	assignedOnly, err := parseFlag(r, "assigned_only")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	items, err := h.svc.List(r.Context(), user.ID, assignedOnly)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]attrResponse, 0, len(items))
	for i := range items {
		out = append(out, h.view(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCreate adds an item owned by the caller.
//
// HTTP: POST /recipe/tags, POST /recipe/ingredients
// REQUEST BODY: {"name": "Vegan"}
func (h *AttrHandler[T]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	name, err := decodeName(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.svc.Create(r.Context(), user.ID, name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(item))
}

// HandleUpdate renames an item. PUT and PATCH behave the same: name is the
// only writable field.
func (h *AttrHandler[T]) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	name, err := decodeName(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.svc.Update(r.Context(), user.ID, chi.URLParam(r, "id"), name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(item))
}

// HandleDelete removes an item and its recipe links.
func (h *AttrHandler[T]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.svc.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeName(r *http.Request) (string, error) {
	var req attrRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", err
	}
	if req.Name == nil {
		return "", apperror.ValidationFailed("name", "name is required")
	}
	return *req.Name, nil
}

// parseFlag reads an optional boolean query parameter ("0", "1", "true",
// "false"). Absent means false.
func parseFlag(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.ValidationFailed(name, name+" must be 0 or 1")
	}
	return v, nil
}
