package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
	"github.com/sakif/recipe-api/internal/storage"
	"github.com/sakif/recipe-api/internal/upload"
)

const (
	MaxLinkLength = 255
	// MaxPrice is the first value that no longer fits 5 digits with 2 decimals.
	MaxPrice = 1000
)

// AllowedImageExts are the accepted recipe image extensions, lower-case.
var AllowedImageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

// RecipeInput carries recipe fields from a create or update request.
// On update, nil fields keep their current value; a non-nil TagIDs or
// IngredientIDs replaces the recipe's links (an empty slice clears them).
type RecipeInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          *string
	TagIDs        []string
	IngredientIDs []string
}

// RecipeService manages a user's recipes and their images.
type RecipeService struct {
	repo   repository.RecipeRepository
	disk   storage.Disk
	paths  upload.PathGenerator
	logger *slog.Logger
}

func NewRecipeService(repo repository.RecipeRepository, disk storage.Disk, paths upload.PathGenerator, logger *slog.Logger) *RecipeService {
	return &RecipeService{repo: repo, disk: disk, paths: paths, logger: logger}
}

// Create validates in and stores a new recipe for ownerID. Title, time and
// price are required.
func (s *RecipeService) Create(ctx context.Context, ownerID string, in RecipeInput) (*model.Recipe, error) {
	if in.Title == nil {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if in.TimeMinutes == nil {
		return nil, apperror.ValidationFailed("timeMinutes", "timeMinutes is required")
	}
	if in.Price == nil {
		return nil, apperror.ValidationFailed("price", "price is required")
	}

	recipe := &model.Recipe{UserID: ownerID}
	if err := applyRecipeInput(recipe, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, recipe); err != nil {
		return nil, fmt.Errorf("creating recipe: %w", err)
	}

	s.logger.Info("recipe created",
		slog.String("id", recipe.ID),
		slog.String("userID", ownerID),
	)
	return recipe, nil
}

func (s *RecipeService) Get(ctx context.Context, ownerID, id string) (*model.Recipe, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List returns the owner's recipes, newest first, optionally filtered by
// tag and ingredient IDs.
func (s *RecipeService) List(ctx context.Context, ownerID string, tagIDs, ingredientIDs []string) ([]model.Recipe, error) {
	recipes, err := s.repo.List(ctx, ownerID, repository.RecipeListOptions{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	return recipes, nil
}

// Update applies the non-nil fields of in to the owner's recipe.
func (s *RecipeService) Update(ctx context.Context, ownerID, id string, in RecipeInput) (*model.Recipe, error) {
	recipe, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := applyRecipeInput(recipe, in); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, recipe); err != nil {
		return nil, fmt.Errorf("updating recipe: %w", err)
	}

	s.logger.Info("recipe updated", slog.String("id", recipe.ID))
	return recipe, nil
}

// Delete removes the owner's recipe and its image.
func (s *RecipeService) Delete(ctx context.Context, ownerID, id string) error {
	recipe, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.removeImage(ctx, recipe.Image)
	s.logger.Info("recipe deleted", slog.String("id", id))
	return nil
}

// UploadImage stores body under a freshly generated path and attaches it to
// the owner's recipe. The previous image, if any, is deleted.
func (s *RecipeService) UploadImage(ctx context.Context, ownerID, id, filename string, body io.Reader) (*model.Recipe, error) {
	ext := strings.ToLower(upload.Ext(filename))
	if !strings.Contains(filename, ".") || !AllowedImageExts[ext] {
		return nil, apperror.ValidationFailed("image", "image must be a jpg, jpeg, png, gif or webp file")
	}

	recipe, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	path := s.paths.RecipeImagePath(filename)
	if err := s.disk.Put(ctx, path, body); err != nil {
		return nil, fmt.Errorf("storing recipe image: %w", err)
	}

	if err := s.repo.SetImage(ctx, ownerID, id, path); err != nil {
		s.removeImage(ctx, path)
		return nil, fmt.Errorf("saving recipe image path: %w", err)
	}

	s.removeImage(ctx, recipe.Image)
	recipe.Image = path

	s.logger.Info("recipe image uploaded",
		slog.String("id", id),
		slog.String("path", path),
	)
	return recipe, nil
}

// ImageURL returns the public URL of a stored image path, or "" for none.
func (s *RecipeService) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return s.disk.URL(path)
}

// removeImage deletes a stored image. Failures are logged, not returned:
// the database is already consistent and an orphaned file is harmless.
func (s *RecipeService) removeImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.disk.Delete(ctx, path); err != nil {
		s.logger.Warn("failed to delete recipe image",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

func applyRecipeInput(recipe *model.Recipe, in RecipeInput) error {
	if in.Title != nil {
		title, err := cleanName("title", *in.Title)
		if err != nil {
			return err
		}
		recipe.Title = title
	}
	if in.TimeMinutes != nil {
		if *in.TimeMinutes < 0 {
			return apperror.ValidationFailed("timeMinutes", "timeMinutes must not be negative")
		}
		recipe.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return err
		}
		recipe.Price = *in.Price
	}
	if in.Link != nil {
		link, err := cleanLink(*in.Link)
		if err != nil {
			return err
		}
		recipe.Link = link
	}
	if in.TagIDs != nil {
		recipe.Tags = make([]model.Tag, 0, len(in.TagIDs))
		for _, id := range in.TagIDs {
			recipe.Tags = append(recipe.Tags, model.Tag{ID: id})
		}
	}
	if in.IngredientIDs != nil {
		recipe.Ingredients = make([]model.Ingredient, 0, len(in.IngredientIDs))
		for _, id := range in.IngredientIDs {
			recipe.Ingredients = append(recipe.Ingredients, model.Ingredient{ID: id})
		}
	}
	return nil
}

// validatePrice enforces a non-negative decimal with at most 5 digits, 2 of
// them after the point (0.00 to 999.99).
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperror.ValidationFailed("price", "price must not be negative")
	}
	if !price.Equal(price.Truncate(2)) {
		return apperror.ValidationFailed("price", "price must have at most 2 decimal places")
	}
	if price.GreaterThanOrEqual(decimal.NewFromInt(MaxPrice)) {
		return apperror.ValidationFailed("price", "price must have at most 5 digits")
	}
	return nil
}

func cleanLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", nil
	}
	if len(link) > MaxLinkLength {
		return "", apperror.ValidationFailed("link",
			fmt.Sprintf("link must be %d characters or less", MaxLinkLength))
	}
	u, err := url.ParseRequestURI(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperror.ValidationFailed("link", "link must be a valid http or https URL")
	}
	return link, nil
}
