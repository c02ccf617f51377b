// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// The first user to register becomes an admin automatically; after that,
// only admins create accounts. PasswordHash is the bcrypt output and is
// never serialised to JSON (`json:"-"`).
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	IsAdmin      bool      `json:"isAdmin"   db:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
