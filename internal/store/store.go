package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketAuth    = []byte("auth")
	bucketFilters = []byte("filters")
)

// Keys within buckets
const (
	keyCredential = "credential"
	keyFilter     = "state"
)

// StateStore implements domain.StateStore using BoltDB. Entries are scoped
// to the archive server so switching servers never leaks a credential.
type StateStore struct {
	db     *bolt.DB
	scope  string
	mu     sync.RWMutex // Protects memory cache
	memory map[string][]byte
}

// NewStateStore opens (or creates) the state database at path. An empty
// path yields a memory-only store that forgets everything on exit.
func NewStateStore(path, serverURL string) (*StateStore, error) {
	s := &StateStore{
		scope:  hashServerURL(serverURL),
		memory: make(map[string][]byte),
	}
	if path == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketAuth, bucketFilters} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *StateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Credential returns the stored operator code, or "" when none is stored
func (s *StateStore) Credential() (string, error) {
	data, err := s.get(bucketAuth, keyCredential)
	return string(data), err
}

// SaveCredential stores the operator code
func (s *StateStore) SaveCredential(code string) error {
	return s.set(bucketAuth, keyCredential, []byte(code))
}

// ClearCredential removes the operator code
func (s *StateStore) ClearCredential() error {
	return s.delete(bucketAuth, keyCredential)
}

// FilterBlob returns the encoded filter state, or nil when none is stored
func (s *StateStore) FilterBlob() ([]byte, error) {
	return s.get(bucketFilters, keyFilter)
}

// SaveFilterBlob stores the encoded filter state
func (s *StateStore) SaveFilterBlob(blob []byte) error {
	return s.set(bucketFilters, keyFilter, blob)
}

// === Generic helpers ===

func (s *StateStore) scopedKey(key string) []byte {
	return []byte(s.scope + ":" + key)
}

func (s *StateStore) get(bucket []byte, key string) ([]byte, error) {
	memKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.memory[memKey]; ok {
		s.mu.RUnlock()
		return data, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get(s.scopedKey(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil || data == nil {
		return nil, err
	}

	s.mu.Lock()
	s.memory[memKey] = data
	s.mu.Unlock()

	return data, nil
}

func (s *StateStore) set(bucket []byte, key string, value []byte) error {
	data := make([]byte, len(value))
	copy(data, value)

	s.mu.Lock()
	s.memory[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(s.scopedKey(key), data)
	})
}

func (s *StateStore) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.memory, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete(s.scopedKey(key))
		}
		return nil
	})
}
