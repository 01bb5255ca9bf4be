package model

import "time"

// Ingredient is a user-owned ingredient that recipes can reference.
type Ingredient struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

func (i Ingredient) String() string {
	return i.Name
}
