// Package repository declares the storage interfaces the service layer
// depends on. internal/repository/sqlite provides the implementation.
//
// Every tag, ingredient and recipe method takes the owner's user ID. Records
// owned by someone else behave exactly like records that do not exist.
package repository

import (
	"context"

	"github.com/sakif/recipe-api/internal/model"
)

// AttrListOptions filters tag and ingredient listings.
type AttrListOptions struct {
	// AssignedOnly limits the result to records used by at least one recipe.
	AssignedOnly bool
}

// RecipeListOptions filters recipe listings. A recipe matches when it is
// linked to any of the given tags AND any of the given ingredients; empty
// slices do not filter.
type RecipeListOptions struct {
	TagIDs        []string
	IngredientIDs []string
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Tag, error)
	List(ctx context.Context, ownerID string, opts AttrListOptions) ([]model.Tag, error)
	Update(ctx context.Context, tag *model.Tag) error
	Delete(ctx context.Context, ownerID, id string) error
}

type IngredientRepository interface {
	Create(ctx context.Context, ingredient *model.Ingredient) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Ingredient, error)
	List(ctx context.Context, ownerID string, opts AttrListOptions) ([]model.Ingredient, error)
	Update(ctx context.Context, ingredient *model.Ingredient) error
	Delete(ctx context.Context, ownerID, id string) error
}

// RecipeRepository persists recipes together with their tag and ingredient
// links. Create and Update write the recipe row and the Tags/Ingredients
// links atomically; only the IDs of the linked records are read.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Recipe, error)
	List(ctx context.Context, ownerID string, opts RecipeListOptions) ([]model.Recipe, error)
	Update(ctx context.Context, recipe *model.Recipe) error
	SetImage(ctx context.Context, ownerID, id, image string) error
	Delete(ctx context.Context, ownerID, id string) error
}
