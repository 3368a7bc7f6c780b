package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vkarpovich/docvault/internal/session"
)

// BoltDB bucket names
var bucketSessions = []byte("sessions")

// Store represents BoltDB-backed server-side session storage
type Store struct {
	db *bbolt.DB
}

// New creates a new BoltDB session store
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Store, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	store := &Store{db: db}

	if err := store.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets creates required buckets if they don't exist
func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSessions); err != nil {
			return fmt.Errorf("failed to create sessions bucket: %w", err)
		}

		return nil
	})
}

// Save stores a session keyed by its token
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		if err := bucket.Put([]byte(sess.Token), data); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		return nil
	})
}

// Get retrieves a live session by token. Expired entries are deleted
// on lookup and reported as not found.
func (s *Store) Get(ctx context.Context, token string) (*session.Session, error) {
	var sess *session.Session

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		data := bucket.Get([]byte(token))
		if data == nil {
			return session.ErrSessionNotFound
		}

		sess = &session.Session{}
		if err := json.Unmarshal(data, sess); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}

		if sess.Expired() {
			if err := bucket.Delete([]byte(token)); err != nil {
				return fmt.Errorf("failed to delete expired session: %w", err)
			}
			return session.ErrSessionNotFound
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return sess, nil
}

// Delete removes a session by token
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		if err := bucket.Delete([]byte(token)); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		return nil
	})
}

// DeleteExpired removes all expired sessions
func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	deleted := 0
	now := time.Now()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		var expired [][]byte

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			sess := &session.Session{}
			if err := json.Unmarshal(v, sess); err != nil {
				// unreadable entry, drop it
				expired = append(expired, append([]byte(nil), k...))
				continue
			}
			if now.After(sess.ExpiresAt) {
				expired = append(expired, append([]byte(nil), k...))
			}
		}

		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to delete expired session: %w", err)
			}
			deleted++
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return deleted, nil
}
