package sqlite

import (
	"context"

	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

var _ repository.TagRepository = (*TagDB)(nil)

// TagDB is the tags table view of a DB.
type TagDB struct {
	attrs attrTable
}

func (t *TagDB) Create(ctx context.Context, tag *model.Tag) error {
	row := attrRow{UserID: tag.UserID, Name: tag.Name}
	if err := t.attrs.create(ctx, &row); err != nil {
		return err
	}
	tag.ID = row.ID
	tag.CreatedAt = row.CreatedAt
	return nil
}

func (t *TagDB) GetByID(ctx context.Context, ownerID, id string) (*model.Tag, error) {
	row, err := t.attrs.getByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	tag := tagFromRow(*row)
	return &tag, nil
}

func (t *TagDB) List(ctx context.Context, ownerID string, opts repository.AttrListOptions) ([]model.Tag, error) {
	rows, err := t.attrs.list(ctx, ownerID, opts)
	if err != nil {
		return nil, err
	}
	tags := make([]model.Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, tagFromRow(row))
	}
	return tags, nil
}

func (t *TagDB) Update(ctx context.Context, tag *model.Tag) error {
	return t.attrs.update(ctx, &attrRow{ID: tag.ID, UserID: tag.UserID, Name: tag.Name})
}

func (t *TagDB) Delete(ctx context.Context, ownerID, id string) error {
	return t.attrs.delete(ctx, ownerID, id)
}

func tagFromRow(row attrRow) model.Tag {
	return model.Tag{ID: row.ID, UserID: row.UserID, Name: row.Name, CreatedAt: row.CreatedAt}
}
