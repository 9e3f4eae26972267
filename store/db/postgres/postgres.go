package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	// Import the Postgres driver.
	_ "github.com/lib/pq"

	"github.com/planwise/planwise/internal/profile"
	"github.com/planwise/planwise/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the Postgres database at profile.DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := DB{db: pgDB, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS planning_session (
	id TEXT PRIMARY KEY,
	state TEXT NOT NULL DEFAULT 'INIT',
	context TEXT NOT NULL DEFAULT '{}',
	media_plan TEXT,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_planning_session_updated_ts ON planning_session (updated_ts);
`

func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate postgres schema")
	}
	return nil
}

// placeholder returns the parameter marker for a 1-based position.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
