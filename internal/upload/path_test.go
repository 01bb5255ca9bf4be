package upload

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID(id string) func() string {
	return func() string { return id }
}

func TestRecipeImagePath_UsesGeneratedID(t *testing.T) {
	g := PathGenerator{NewID: fixedID("test-uuid")}

	got := g.RecipeImagePath("myimage.jpg")

	assert.Equal(t, "/uploads/recipe/test-uuid.jpg", got)
}

func TestRecipeImagePath_IgnoresOriginalName(t *testing.T) {
	g := PathGenerator{NewID: fixedID("abc")}

	tests := []struct {
		filename string
		want     string
	}{
		{"myimage.jpg", "/uploads/recipe/abc.jpg"},
		{"holiday.photo.PNG", "/uploads/recipe/abc.PNG"},
		{"../../etc/passwd.gif", "/uploads/recipe/abc.gif"},
		{"noext", "/uploads/recipe/abc.noext"},
		{"a./../../x", "/uploads/recipe/abc.x"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, g.RecipeImagePath(tt.filename))
		})
	}
}

func TestNewPathGenerator_FreshIDPerCall(t *testing.T) {
	g := NewPathGenerator()

	first := g.RecipeImagePath("a.jpg")
	second := g.RecipeImagePath("a.jpg")

	assert.NotEqual(t, first, second)
	require.True(t, strings.HasPrefix(first, RecipeImageDir+"/"))

	id := strings.TrimSuffix(strings.TrimPrefix(first, RecipeImageDir+"/"), ".jpg")
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "generated id should be a UUID")
}

func TestRecipeImageFilePath_IgnoresInstance(t *testing.T) {
	got := RecipeImageFilePath(nil, "myimage.jpeg")

	assert.True(t, strings.HasPrefix(got, "/uploads/recipe/"))
	assert.True(t, strings.HasSuffix(got, ".jpeg"))
}
