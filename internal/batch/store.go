package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var (
	sessionsBucket = []byte("sessions")
	itemsBucket    = []byte("items")
)

// Store persists sessions and items in a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open creates the database file and its buckets if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for batch store: %w", err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{sessionsBucket, itemsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// CreateSession stores a new session.
func (s *Store) CreateSession(session *Session) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b.Get([]byte(session.ID)) != nil {
			return fmt.Errorf("session %s already exists", session.ID)
		}
		return putJSON(b, []byte(session.ID), session)
	})
}

// GetSession loads a session by ID.
func (s *Store) GetSession(id string) (*Session, error) {
	var session Session
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get([]byte(id))
		if v == nil {
			return ErrSessionNotFound
		}
		return json.Unmarshal(v, &session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession overwrites an existing session.
func (s *Store) UpdateSession(session *Session) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b.Get([]byte(session.ID)) == nil {
			return ErrSessionNotFound
		}
		return putJSON(b, []byte(session.ID), session)
	})
}

// PutItem stores the outcome for one image of an existing session.
func (s *Store) PutItem(item Item) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(sessionsBucket).Get([]byte(item.SessionID)) == nil {
			return ErrSessionNotFound
		}
		return putJSON(tx.Bucket(itemsBucket), itemKey(item.SessionID, item.Index), item)
	})
}

// ListItems returns a session's items ordered by image index.
func (s *Store) ListItems(sessionID string) ([]Item, error) {
	items := []Item{}
	err := s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(sessionsBucket).Get([]byte(sessionID)) == nil {
			return ErrSessionNotFound
		}

		prefix := []byte(sessionID + "/")
		c := tx.Bucket(itemsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("decode item %s: %w", k, err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Keys are zero padded so the cursor walks items in index order.
func itemKey(sessionID string, index int) []byte {
	return []byte(fmt.Sprintf("%s/%06d", sessionID, index))
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}
