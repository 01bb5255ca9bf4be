package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/repository"
)

// attrRow is the shape shared by tags and ingredients: a named record owned
// by one user and linked to recipes through linkTable.
type attrRow struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// attrTable implements storage for one recipe attribute table. TagDB and
// IngredientDB wrap it and convert to their model types.
type attrTable struct {
	db         *DB
	table      string // "tags"
	linkTable  string // "recipe_tags"
	linkColumn string // "tag_id"
}

// resource is the singular name used in errors, e.g. "tag".
func (a attrTable) resource() string {
	return a.table[:len(a.table)-1]
}

func (a attrTable) create(ctx context.Context, row *attrRow) error {
	row.ID = xid.New().String()
	row.CreatedAt = time.Now()

	_, err := a.db.conn.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`, a.table),
		row.ID, row.UserID, row.Name, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating %s: %w", a.resource(), err)
	}
	return nil
}

func (a attrTable) getByID(ctx context.Context, ownerID, id string) (*attrRow, error) {
	var row attrRow
	err := a.db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, user_id, name, created_at FROM %s WHERE id = ? AND user_id = ?`, a.table),
		id, ownerID,
	).Scan(&row.ID, &row.UserID, &row.Name, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(a.resource(), id)
		}
		return nil, fmt.Errorf("sqlite: getting %s %s: %w", a.resource(), id, err)
	}
	return &row, nil
}

// list returns the owner's records ordered by name, Z to A.
func (a attrTable) list(ctx context.Context, ownerID string, opts repository.AttrListOptions) ([]attrRow, error) {
	query := fmt.Sprintf(`SELECT id, user_id, name, created_at FROM %s WHERE user_id = ?`, a.table)
	if opts.AssignedOnly {
		query += fmt.Sprintf(` AND id IN (SELECT %s FROM %s)`, a.linkColumn, a.linkTable)
	}
	query += ` ORDER BY name DESC, id DESC`

	rows, err := a.db.conn.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s: %w", a.table, err)
	}
	defer rows.Close()

	result := []attrRow{}
	for rows.Next() {
		var row attrRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Name, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", a.resource(), err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s: %w", a.table, err)
	}
	return result, nil
}

func (a attrTable) update(ctx context.Context, row *attrRow) error {
	result, err := a.db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET name = ? WHERE id = ? AND user_id = ?`, a.table),
		row.Name, row.ID, row.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating %s %s: %w", a.resource(), row.ID, err)
	}
	return a.checkAffected(result, row.ID)
}

func (a attrTable) delete(ctx context.Context, ownerID, id string) error {
	result, err := a.db.conn.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, a.table),
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s %s: %w", a.resource(), id, err)
	}
	return a.checkAffected(result, id)
}

func (a attrTable) checkAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(a.resource(), id)
	}
	return nil
}
