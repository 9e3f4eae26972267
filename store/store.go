package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/planwise/planwise/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) UpsertSessionRecord(ctx context.Context, upsert *SessionRecord) (*SessionRecord, error) {
	return s.driver.UpsertSessionRecord(ctx, upsert)
}

// GetSessionRecord returns one session by id, or nil when absent.
func (s *Store) GetSessionRecord(ctx context.Context, id string) (*SessionRecord, error) {
	list, err := s.driver.ListSessionRecords(ctx, &FindSessionRecord{ID: &id})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find session %s", id)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListSessionRecords(ctx context.Context, find *FindSessionRecord) ([]*SessionRecord, error) {
	return s.driver.ListSessionRecords(ctx, find)
}

func (s *Store) DeleteSessionRecord(ctx context.Context, delete *DeleteSessionRecord) error {
	return s.driver.DeleteSessionRecord(ctx, delete)
}
