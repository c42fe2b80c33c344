package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no value exists under the requested key.
var ErrNotFound = errors.New("kv: not found")

// Store wraps a Badger database as a string-keyed JSON document store.
type Store struct {
	db *badger.DB
}

// Open initialises a Store rooted at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(filepath.Clean(path))
	opts.Logger = nil
	opts = opts.WithValueLogFileSize(1 << 20)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory initialises a Store backed by an in-memory Badger instance.
// Used by tests and as a fallback when no data directory is configured.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save encodes value as JSON and writes it under key in a single transaction.
// Writes are synchronous; there is no batching or write-behind queue.
func Save[T any](s *Store, key string, value T) error {
	if s == nil || s.db == nil {
		return errors.New("kv: nil store")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Load reads and decodes the value stored under key. Timestamp fields are
// revived by the destination schema: any struct field typed time.Time is
// parsed from its RFC 3339 serialized form, so no string sniffing happens.
func Load[T any](s *Store, key string) (T, bool, error) {
	var out T
	if s == nil || s.db == nil {
		return out, false, errors.New("kv: nil store")
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(v []byte) error {
			if err := json.Unmarshal(v, &out); err != nil {
				return fmt.Errorf("kv: decode %s: %w", key, err)
			}
			return nil
		})
	})
	if errors.Is(err, ErrNotFound) {
		return out, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return out, true, nil
}

// LoadOrSeed returns the value stored under key if one exists. When the key
// is absent and seed is non-nil, the seed is persisted and returned.
// When the key is absent and seed is nil, the zero value is returned without
// writing anything.
func LoadOrSeed[T any](s *Store, key string, seed *T) (T, error) {
	existing, found, err := Load[T](s, key)
	if err != nil {
		var zero T
		return zero, err
	}
	if found {
		return existing, nil
	}
	if seed == nil {
		var zero T
		return zero, nil
	}
	if err := Save(s, key, *seed); err != nil {
		var zero T
		return zero, err
	}
	return *seed, nil
}

// Delete removes the value stored under key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	if s == nil || s.db == nil {
		return errors.New("kv: nil store")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
