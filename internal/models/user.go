package models

import "time"

// User represents an account allowed to manage documents.
type User struct {
	ID           string     `json:"id"`       // user UUID
	Username     string     `json:"username"` // unique username
	PasswordHash string     `json:"-"`        // argon2id digest, salt$key encoded, never serialized
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
