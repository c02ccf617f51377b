package model

import "time"

// APIKey grants bearer access to the /api/v1 endpoints.
//
// Only the SHA-256 hash of the key is stored; the plaintext is shown to
// the creator exactly once. LastUsed is nil until the key is first
// presented.
type APIKey struct {
	ID        string     `json:"id"        db:"id"`
	UserID    string     `json:"userId"    db:"user_id"`
	Name      string     `json:"name"      db:"name"`
	KeyHash   string     `json:"-"         db:"key_hash"`
	LastUsed  *time.Time `json:"lastUsed"  db:"last_used"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// APIKeyWithOwner is the admin listing row — an API key joined with the
// username of the account it belongs to.
type APIKeyWithOwner struct {
	APIKey
	Username string `json:"username" db:"username"`
}
