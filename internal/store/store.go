// Package store persists the app's durable state record. The record is a
// flat string-to-string map, written whole and read whole: partial writes
// would leave a record the restoration codec no longer trusts.
package store

import (
	"context"
	"errors"
	"log"
	"os"
)

// Store is the persistence interface used by the runtime.
type Store interface {
	// Load returns the current record, or ErrNotFound if none was ever saved.
	Load(ctx context.Context) (map[string]string, error)
	// Save replaces the record atomically.
	Save(ctx context.Context, rec map[string]string) error
	Close() error
}

var ErrNotFound = errors.New("not found")

// FromEnv picks Postgres when DATABASE_URL is set, in-memory otherwise.
func FromEnv() (Store, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		log.Printf("store: using postgres")
		return pg, nil
	}
	log.Printf("store: using in-memory store (set DATABASE_URL for persistence)")
	return NewMemory(), nil
}
