// Package storelib exposes a SQLite-backed key/value store to Corvel
// chunks as typed userdata. It is the reference consumer of the userdata
// type-name boundary: every entry point goes through the adaptation layer
// in package bind.
package storelib

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/chazu/corvel/bind"
	"github.com/chazu/corvel/engine"
)

// TypeName is the registry key tagging store userdata.
const TypeName = "corvel.store"

// Store wraps one open database handle.
type Store struct {
	db   *sql.DB
	path string
}

// MarshalStack pushes the store as type-tagged userdata.
func (s *Store) MarshalStack(l *engine.State) {
	bind.NewUserData(l, TypeName, s)
}

// Open registers the store type and installs the global 'store' table.
func Open(l *engine.State) {
	bind.RegisterTypeFor[*Store](l, TypeName)
	l.Pop(1)

	l.NewTable()
	bind.SetFuncs(l, -1, map[string]any{
		"open":   openStore,
		"put":    (*Store).Put,
		"get":    (*Store).Get,
		"delete": (*Store).Delete,
		"count":  (*Store).Count,
		"close":  (*Store).Close,
	})
	l.SetGlobal("store")
}

func openStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Put inserts or replaces one entry.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, value)
	if err != nil {
		return fmt.Errorf("store: put %q: %w", key, err)
	}
	return nil
}

// Get returns the value for key, or a nil pointer (a nil slot VM-side)
// when the key is absent.
func (s *Store) Get(key string) (*string, error) {
	var v string
	err := s.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %q: %w", key, err)
	}
	return &v, nil
}

// Delete removes key, reporting whether it existed.
func (s *Store) Delete(key string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM kv WHERE k = ?`, key)
	if err != nil {
		return false, fmt.Errorf("store: delete %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: delete %q: %w", key, err)
	}
	return n > 0, nil
}

// Count returns the number of entries.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Close releases the database handle. Further operations on the store
// fail with a database error.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", s.path, err)
	}
	return nil
}
