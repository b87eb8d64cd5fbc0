// To handle all database interactions. This is our data access layer,
// keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup targets a row that does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when an insert violates a uniqueness constraint
// and the caller expected a creation.
var ErrConflict = errors.New("record already exists")

// Store provides all functions to interact with the database. The *sql.DB
// handle is injected at construction; nothing in this package reaches for
// ambient global state.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// isConstraintErr reports whether err is a SQLite uniqueness/FK constraint
// violation, so upsert logic can tell it apart from generic storage errors.
func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
