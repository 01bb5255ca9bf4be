package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/recipe-api/internal/apperror"
)

func TestTagService_Create(t *testing.T) {
	svc := NewTagService(newFakeTagRepo(), testLogger())
	ctx := context.Background()

	tag, err := svc.Create(ctx, "user-1", "  Vegan  ")
	require.NoError(t, err)
	assert.Equal(t, "Vegan", tag.Name)
	assert.Equal(t, "user-1", tag.UserID)
	assert.Equal(t, "Vegan", tag.String())

	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "blank", in: "   "},
		{name: "too long", in: strings.Repeat("x", MaxNameLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "user-1", tt.in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestTagService_ListUpdateDelete(t *testing.T) {
	repo := newFakeTagRepo()
	svc := NewTagService(repo, testLogger())
	ctx := context.Background()

	a, err := svc.Create(ctx, "user-1", "Breakfast")
	require.NoError(t, err)
	b, err := svc.Create(ctx, "user-1", "Dinner")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-2", "Lunch")
	require.NoError(t, err)
	repo.assigned[a.ID] = true

	tags, err := svc.List(ctx, "user-1", false)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Dinner", tags[0].Name)

	tags, err = svc.List(ctx, "user-1", true)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, a.ID, tags[0].ID)

	updated, err := svc.Update(ctx, "user-1", b.ID, "Supper")
	require.NoError(t, err)
	assert.Equal(t, "Supper", updated.Name)

	_, err = svc.Update(ctx, "user-2", b.ID, "Stolen")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Update(ctx, "user-1", b.ID, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	require.NoError(t, svc.Delete(ctx, "user-1", b.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "user-1", b.ID), apperror.ErrNotFound)
}
