package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound indicates that no live session exists for the
// token. Expired sessions are reported the same way.
var ErrSessionNotFound = errors.New("session not found")

// Session maps an opaque client token to an authenticated user.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store defines interface for server-side session persistence
type Store interface {
	// Save stores a session keyed by its token
	Save(ctx context.Context, session *Session) error

	// Get retrieves a live session by token
	// Returns ErrSessionNotFound for unknown or expired tokens;
	// expired entries are removed on lookup
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session by token (logout)
	// Deleting an absent token is not an error
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all expired sessions
	// Returns number of removed sessions
	DeleteExpired(ctx context.Context) (int, error)
}

// NewToken generates an opaque session token from 32 random bytes,
// base64url encoded.
func NewToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// New creates a session for the user with the given lifetime.
func New(userID string, ttl time.Duration) (*Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	return &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
