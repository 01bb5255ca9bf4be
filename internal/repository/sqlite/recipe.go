package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

var _ repository.RecipeRepository = (*RecipeDB)(nil)

// RecipeDB is the recipes table view of a DB, including the recipe_tags and
// recipe_ingredients link tables.
type RecipeDB struct {
	db *DB
}

const recipeColumns = `id, user_id, title, time_minutes, price, link, image, created_at, updated_at`

// Create inserts the recipe and its links in one transaction. Each linked tag
// and ingredient must belong to recipe.UserID; otherwise nothing is written
// and an apperror.ErrValidation is returned.
func (r *RecipeDB) Create(ctx context.Context, recipe *model.Recipe) error {
	now := time.Now()
	recipe.ID = xid.New().String()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipes (`+recipeColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			recipe.ID,
			recipe.UserID,
			recipe.Title,
			recipe.TimeMinutes,
			recipe.Price,
			recipe.Link,
			recipe.Image,
			recipe.CreatedAt,
			recipe.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: creating recipe: %w", err)
		}
		return r.writeLinks(ctx, tx, recipe)
	})
}

// GetByID retrieves one of the owner's recipes with its tags and ingredients.
func (r *RecipeDB) GetByID(ctx context.Context, ownerID, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	err := scanRecipe(r.db.conn.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ? AND user_id = ?`,
		id, ownerID,
	), &recipe)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recipe", id)
		}
		return nil, fmt.Errorf("sqlite: getting recipe %s: %w", id, err)
	}

	recipes := []model.Recipe{recipe}
	if err := r.attachLinks(ctx, r.db.conn, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// List returns the owner's recipes, newest first.
func (r *RecipeDB) List(ctx context.Context, ownerID string, opts repository.RecipeListOptions) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = ?`
	args := []any{ownerID}

	if len(opts.TagIDs) > 0 {
		query += ` AND id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id IN (` + placeholders(len(opts.TagIDs)) + `))`
		args = append(args, stringArgs(opts.TagIDs)...)
	}
	if len(opts.IngredientIDs) > 0 {
		query += ` AND id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN (` + placeholders(len(opts.IngredientIDs)) + `))`
		args = append(args, stringArgs(opts.IngredientIDs)...)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recipes: %w", err)
	}

	recipes := []model.Recipe{}
	for rows.Next() {
		var recipe model.Recipe
		if err := scanRecipe(rows, &recipe); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning recipe row: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating recipes: %w", err)
	}
	// Close before loading links: the in-memory test DB has a single
	// connection, and rows holds it until closed.
	rows.Close()

	if err := r.attachLinks(ctx, r.db.conn, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Update writes the recipe's columns and replaces its links with
// recipe.Tags and recipe.Ingredients. The image column is left alone;
// SetImage is its only writer.
func (r *RecipeDB) Update(ctx context.Context, recipe *model.Recipe) error {
	recipe.UpdatedAt = time.Now()

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE recipes
			 SET title = ?, time_minutes = ?, price = ?, link = ?, updated_at = ?
			 WHERE id = ? AND user_id = ?`,
			recipe.Title,
			recipe.TimeMinutes,
			recipe.Price,
			recipe.Link,
			recipe.UpdatedAt,
			recipe.ID,
			recipe.UserID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating recipe %s: %w", recipe.ID, err)
		}
		if err := checkRecipeAffected(result, recipe.ID); err != nil {
			return err
		}

		for _, table := range []string{"recipe_tags", "recipe_ingredients"} {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`DELETE FROM %s WHERE recipe_id = ?`, table), recipe.ID,
			); err != nil {
				return fmt.Errorf("sqlite: clearing %s for recipe %s: %w", table, recipe.ID, err)
			}
		}
		return r.writeLinks(ctx, tx, recipe)
	})
}

// SetImage stores the image path of one of the owner's recipes.
func (r *RecipeDB) SetImage(ctx context.Context, ownerID, id, image string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE recipes SET image = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		image, time.Now(), id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting image for recipe %s: %w", id, err)
	}
	return checkRecipeAffected(result, id)
}

// Delete removes one of the owner's recipes. Link rows go with it through
// ON DELETE CASCADE.
func (r *RecipeDB) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting recipe %s: %w", id, err)
	}
	return checkRecipeAffected(result, id)
}

// writeLinks inserts link rows for recipe.Tags and recipe.Ingredients, then
// reloads both slices so names reflect what is stored.
func (r *RecipeDB) writeLinks(ctx context.Context, tx *sql.Tx, recipe *model.Recipe) error {
	tagIDs := make([]string, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		tagIDs = append(tagIDs, t.ID)
	}
	ingredientIDs := make([]string, 0, len(recipe.Ingredients))
	for _, i := range recipe.Ingredients {
		ingredientIDs = append(ingredientIDs, i.ID)
	}

	if err := insertLinks(ctx, tx, "recipe_tags", "tag_id", "tags", "tag", recipe, tagIDs); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, "recipe_ingredients", "ingredient_id", "ingredients", "ingredient", recipe, ingredientIDs); err != nil {
		return err
	}

	recipes := []model.Recipe{*recipe}
	if err := r.attachLinks(ctx, tx, recipes); err != nil {
		return err
	}
	recipe.Tags = recipes[0].Tags
	recipe.Ingredients = recipes[0].Ingredients
	return nil
}

// insertLinks links recipe to each id in ids. The INSERT ... SELECT only
// matches rows owned by the recipe's owner, so a foreign or unknown id
// inserts nothing and is reported as a validation error on field.
func insertLinks(ctx context.Context, tx *sql.Tx, linkTable, linkColumn, attrTable, field string, recipe *model.Recipe, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		result, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (recipe_id, %s)
			 SELECT ?, id FROM %s WHERE id = ? AND user_id = ?`, linkTable, linkColumn, attrTable),
			recipe.ID, id, recipe.UserID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: linking %s %s to recipe %s: %w", field, id, recipe.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.ValidationFailed(field+"s", fmt.Sprintf("%s %s does not exist", field, id))
		}
	}
	return nil
}

// attachLinks fills Tags and Ingredients of every recipe in place. Both are
// always non-nil so they serialize as [] rather than null.
func (r *RecipeDB) attachLinks(ctx context.Context, q querier, recipes []model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	index := make(map[string]int, len(recipes))
	ids := make([]string, 0, len(recipes))
	for i := range recipes {
		recipes[i].Tags = []model.Tag{}
		recipes[i].Ingredients = []model.Ingredient{}
		index[recipes[i].ID] = i
		ids = append(ids, recipes[i].ID)
	}

	tagRows, err := loadLinked(ctx, q, "recipe_tags", "tag_id", "tags", ids)
	if err != nil {
		return err
	}
	for _, l := range tagRows {
		i := index[l.recipeID]
		recipes[i].Tags = append(recipes[i].Tags, tagFromRow(l.attrRow))
	}

	ingredientRows, err := loadLinked(ctx, q, "recipe_ingredients", "ingredient_id", "ingredients", ids)
	if err != nil {
		return err
	}
	for _, l := range ingredientRows {
		i := index[l.recipeID]
		recipes[i].Ingredients = append(recipes[i].Ingredients, ingredientFromRow(l.attrRow))
	}
	return nil
}

type linkedRow struct {
	recipeID string
	attrRow
}

func loadLinked(ctx context.Context, q querier, linkTable, linkColumn, attrTable string, recipeIDs []string) ([]linkedRow, error) {
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf(`SELECT l.recipe_id, a.id, a.user_id, a.name, a.created_at
		 FROM %s l JOIN %s a ON a.id = l.%s
		 WHERE l.recipe_id IN (%s)
		 ORDER BY a.name`, linkTable, attrTable, linkColumn, placeholders(len(recipeIDs))),
		stringArgs(recipeIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading %s: %w", linkTable, err)
	}
	defer rows.Close()

	var result []linkedRow
	for rows.Next() {
		var l linkedRow
		if err := rows.Scan(&l.recipeID, &l.ID, &l.UserID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", linkTable, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s: %w", linkTable, err)
	}
	return result, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner, recipe *model.Recipe) error {
	return row.Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&recipe.TimeMinutes,
		&recipe.Price,
		&recipe.Link,
		&recipe.Image,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
}

func checkRecipeAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("recipe", id)
	}
	return nil
}
