package model

import "time"

// Tag is a user-owned label attached to recipes, e.g. "Vegan" or "Dessert".
// Names are not unique: two users may each have a "Vegan" tag.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

func (t Tag) String() string {
	return t.Name
}
