package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is a user-owned recipe.
//
// Price is a fixed-point decimal (at most 5 digits, 2 after the point), so
// "5.50" round-trips exactly instead of drifting the way a float64 would.
//
// Image is the storage path of the uploaded picture, e.g.
// "/uploads/recipe/5f0c...e1.jpg", or "" when no image was uploaded.
type Recipe struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"timeMinutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
	Image       string          `json:"image"`
	Tags        []Tag           `json:"tags"`
	Ingredients []Ingredient    `json:"ingredients"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (r Recipe) String() string {
	return r.Title
}
