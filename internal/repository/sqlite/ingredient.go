package sqlite

import (
	"context"

	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

var _ repository.IngredientRepository = (*IngredientDB)(nil)

// IngredientDB is the ingredients table view of a DB.
type IngredientDB struct {
	attrs attrTable
}

func (i *IngredientDB) Create(ctx context.Context, ingredient *model.Ingredient) error {
	row := attrRow{UserID: ingredient.UserID, Name: ingredient.Name}
	if err := i.attrs.create(ctx, &row); err != nil {
		return err
	}
	ingredient.ID = row.ID
	ingredient.CreatedAt = row.CreatedAt
	return nil
}

func (i *IngredientDB) GetByID(ctx context.Context, ownerID, id string) (*model.Ingredient, error) {
	row, err := i.attrs.getByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	ingredient := ingredientFromRow(*row)
	return &ingredient, nil
}

func (i *IngredientDB) List(ctx context.Context, ownerID string, opts repository.AttrListOptions) ([]model.Ingredient, error) {
	rows, err := i.attrs.list(ctx, ownerID, opts)
	if err != nil {
		return nil, err
	}
	ingredients := make([]model.Ingredient, 0, len(rows))
	for _, row := range rows {
		ingredients = append(ingredients, ingredientFromRow(row))
	}
	return ingredients, nil
}

func (i *IngredientDB) Update(ctx context.Context, ingredient *model.Ingredient) error {
	return i.attrs.update(ctx, &attrRow{ID: ingredient.ID, UserID: ingredient.UserID, Name: ingredient.Name})
}

func (i *IngredientDB) Delete(ctx context.Context, ownerID, id string) error {
	return i.attrs.delete(ctx, ownerID, id)
}

func ingredientFromRow(row attrRow) model.Ingredient {
	return model.Ingredient{ID: row.ID, UserID: row.UserID, Name: row.Name, CreatedAt: row.CreatedAt}
}
