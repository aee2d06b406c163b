package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/kalepail/smol-sc/internal/storage"
)

// Store implements storage.Store on the kv table. Update maps to one SQLite
// transaction, so a failed marketplace operation leaves no partial writes.
type Store struct {
	db *DB
}

var _ storage.Store = (*Store)(nil)

// View runs fn in a read-only transaction.
func (s *Store) View(fn func(storage.Tx) error) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(&kvTx{tx: tx})
}

// Update runs fn in a read-write transaction, committing only if fn returns
// nil.
func (s *Store) Update(fn func(storage.Tx) error) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&kvTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type kvTx struct {
	tx *sql.Tx
}

func (t *kvTx) Get(key storage.Key) ([]byte, bool, error) {
	var value []byte
	err := t.tx.QueryRow(`SELECT v FROM kv WHERE k = ?`, string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (t *kvTx) Set(key storage.Key, value []byte) error {
	_, err := t.tx.Exec(
		`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		string(key), value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (t *kvTx) Remove(key storage.Key) error {
	if _, err := t.tx.Exec(`DELETE FROM kv WHERE k = ?`, string(key)); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (t *kvTx) Has(key storage.Key) (bool, error) {
	var one int
	err := t.tx.QueryRow(`SELECT 1 FROM kv WHERE k = ?`, string(key)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has %s: %w", key, err)
	}
	return true, nil
}
