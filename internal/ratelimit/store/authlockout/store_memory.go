package authlockout

import (
	"context"
	"sync"
	"time"

	"jamsession/internal/ratelimit/models"
)

// InMemoryAuthLockoutStore keeps lockout records in process memory.
// Records are lost on restart and are not shared between instances.
type InMemoryAuthLockoutStore struct {
	mu      sync.RWMutex
	records map[string]*models.AuthLockout // keyed by client address
}

func New() *InMemoryAuthLockoutStore {
	return &InMemoryAuthLockoutStore{
		records: make(map[string]*models.AuthLockout),
	}
}

func (s *InMemoryAuthLockoutStore) Get(_ context.Context, identifier string) (*models.AuthLockout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if record, exists := s.records[identifier]; exists {
		return clone(record), nil
	}
	return nil, nil
}

func (s *InMemoryAuthLockoutStore) RecordFailure(_ context.Context, identifier string, now time.Time) (*models.AuthLockout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.records[identifier]; exists {
		existing.FailureCount++
		existing.LastFailureAt = now
		return clone(existing), nil
	}

	record := &models.AuthLockout{
		Identifier:    identifier,
		FailureCount:  1,
		LastFailureAt: now,
	}
	s.records[identifier] = record
	return clone(record), nil
}

func (s *InMemoryAuthLockoutStore) Update(_ context.Context, record *models.AuthLockout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Identifier] = clone(record)
	return nil
}

func (s *InMemoryAuthLockoutStore) Clear(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identifier)
	return nil
}

// PurgeStale removes records whose lockout has elapsed, and unlocked records
// whose last failure is older than idleCutoff. It returns the number removed
// and the number of records still locked.
func (s *InMemoryAuthLockoutStore) PurgeStale(_ context.Context, now, idleCutoff time.Time) (purged, locked int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, record := range s.records {
		switch {
		case record.IsLockedAt(now):
			locked++
		case record.LockoutElapsedAt(now), record.LastFailureAt.Before(idleCutoff):
			delete(s.records, key)
			purged++
		}
	}
	return purged, locked, nil
}

func clone(record *models.AuthLockout) *models.AuthLockout {
	c := *record
	if record.LockedUntil != nil {
		until := *record.LockedUntil
		c.LockedUntil = &until
	}
	return &c
}
