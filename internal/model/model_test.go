package model

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTagString(t *testing.T) {
	tag := Tag{ID: "t1", UserID: "u1", Name: "Vegan"}

	assert.Equal(t, tag.Name, tag.String())
	assert.Equal(t, "Vegan", fmt.Sprint(tag))
}

func TestIngredientString(t *testing.T) {
	ingredient := Ingredient{ID: "i1", UserID: "u1", Name: "Cucumber"}

	assert.Equal(t, ingredient.Name, ingredient.String())
	assert.Equal(t, "Cucumber", fmt.Sprint(ingredient))
}

func TestRecipeString(t *testing.T) {
	recipe := Recipe{
		ID:          "r1",
		UserID:      "u1",
		Title:       "Steak and mushroom sauce",
		TimeMinutes: 5,
		Price:       decimal.RequireFromString("5.00"),
	}

	assert.Equal(t, recipe.Title, recipe.String())
}

func TestUserHasUsablePassword(t *testing.T) {
	assert.False(t, User{Email: "a@b.com"}.HasUsablePassword())
	assert.True(t, User{Email: "a@b.com", PasswordHash: "$2a$04$abc"}.HasUsablePassword())
}
