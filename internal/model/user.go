// Package model defines the data structures used throughout the application.
package model

import "time"

// User is an account, identified by its email address.
//
// Email is stored normalized: the domain part is lower-cased at creation and
// on every change, so lookups compare normalized values only.
//
// PasswordHash is a bcrypt hash. An empty hash means the account has an
// unusable password (e.g. it was created through GitHub sign-in) and can never
// authenticate with email and password.
type User struct {
	ID           string    `json:"id"          db:"id"`
	Email        string    `json:"email"       db:"email"`
	Name         string    `json:"name"        db:"name"`
	PasswordHash string    `json:"-"           db:"password"`
	IsActive     bool      `json:"isActive"    db:"is_active"`
	IsStaff      bool      `json:"isStaff"     db:"is_staff"`
	IsSuperuser  bool      `json:"isSuperuser" db:"is_superuser"`
	CreatedAt    time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"   db:"updated_at"`
}

// String returns the user's email.
func (u User) String() string {
	return u.Email
}

// HasUsablePassword reports whether the account can log in with a password.
func (u User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}
