// Package storage defines the key-value abstraction the marketplace core is
// written against. The core only sees Store and Tx; the sqlite implementation
// lives in internal/infrastructure/sqlite and an in-memory implementation in
// this package backs tests and local experimentation.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies one record in the logical keyspace. Keys are built from a
// table prefix plus path segments, e.g. "color_owner/16711680".
type Key string

// NewKey joins a prefix and its segments into a Key. Segments must not
// contain the separator.
func NewKey(prefix string, segments ...string) Key {
	if len(segments) == 0 {
		return Key(prefix)
	}
	return Key(prefix + "/" + strings.Join(segments, "/"))
}

// Tx is a transactional view over the keyspace. All reads and writes within
// one marketplace operation go through a single Tx.
type Tx interface {
	Get(key Key) ([]byte, bool, error)
	Set(key Key, value []byte) error
	Remove(key Key) error
	Has(key Key) (bool, error)
}

// Store provides transactional access to the keyspace. Update runs fn inside
// a read-write transaction: if fn returns an error, every mutation it made is
// rolled back and the error is returned unchanged. View runs fn read-only.
type Store interface {
	View(fn func(Tx) error) error
	Update(fn func(Tx) error) error
	Close() error
}

// GetJSON reads and decodes a value. The second return is false when the key
// is absent.
func GetJSON[T any](tx Tx, key Key) (T, bool, error) {
	var v T
	raw, ok, err := tx.Get(key)
	if err != nil || !ok {
		return v, ok, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes and writes a value.
func SetJSON[T any](tx Tx, key Key, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return tx.Set(key, raw)
}
