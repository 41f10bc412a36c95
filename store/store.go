// ABOUTME: Local persistent store backed by BadgerDB
// ABOUTME: Versioned JSON key-value cache; mismatches and parse failures read as absent
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// SchemaVersion tags every stored entry. Bumping it invalidates all
// previously persisted collections instead of migrating them; the store
// is a best-effort cache, never a source of truth.
const SchemaVersion = 3

// Store wraps a BadgerDB instance holding one JSON entry per entity
// collection plus the sync queue and lastSync bookkeeping keys.
type Store struct {
	db *badger.DB
	mu sync.Mutex
}

// envelope is the on-disk shape of every entry.
type envelope struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Payload json.RawMessage `json:"payload"`
}

// Open opens (or creates) the store at the given directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(dir, "state")).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the payload stored under key, or ok=false when the key is
// missing, unreadable, malformed, or tagged with a different schema
// version. The caller falls back to defaults; load never fails upward.
func (s *Store) Load(key string, version int) ([]byte, bool) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("store: discarding unreadable entry %q: %v", key, err)
		return nil, false
	}
	if env.Version != version {
		return nil, false
	}
	return env.Payload, true
}

// Save persists payload under key, tagged with the given version.
// The whole collection is written on every committed mutation.
func (s *Store) Save(key string, version int, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := envelope{
		Version: version,
		SavedAt: time.Now().UTC(),
		Payload: payload,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal entry %q: %w", key, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to write entry %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// LoadJSON unmarshals the entry under key into v. Any failure reads as
// absent, leaving v untouched.
func (s *Store) LoadJSON(key string, version int, v interface{}) bool {
	payload, ok := s.Load(key, version)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		log.Printf("store: discarding undecodable entry %q: %v", key, err)
		return false
	}
	return true
}

// SaveJSON marshals v and persists it under key.
func (s *Store) SaveJSON(key string, version int, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %q payload: %w", key, err)
	}
	return s.Save(key, version, payload)
}
