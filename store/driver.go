package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver. It contains all methods that
// store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate brings the schema up to date. Idempotent.
	Migrate(ctx context.Context) error

	UpsertSessionRecord(ctx context.Context, upsert *SessionRecord) (*SessionRecord, error)
	ListSessionRecords(ctx context.Context, find *FindSessionRecord) ([]*SessionRecord, error)
	DeleteSessionRecord(ctx context.Context, delete *DeleteSessionRecord) error
}
