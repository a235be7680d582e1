package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"jamsession/internal/ratelimit/metrics"
	"jamsession/internal/ratelimit/models"
	lockoutStore "jamsession/internal/ratelimit/store/authlockout"
)

type mockAuthLockoutStore struct {
	calls      int
	purged     int
	locked     int
	err        error
	lastNow    time.Time
	lastCutoff time.Time
}

func (m *mockAuthLockoutStore) PurgeStale(_ context.Context, now, idleCutoff time.Time) (int, int, error) {
	m.calls++
	m.lastNow = now
	m.lastCutoff = idleCutoff
	return m.purged, m.locked, m.err
}

type AuthLockoutCleanerSuite struct {
	suite.Suite
	store   *mockAuthLockoutStore
	service *Worker
	now     time.Time
}

func TestAuthLockoutCleanerSuite(t *testing.T) {
	suite.Run(t, new(AuthLockoutCleanerSuite))
}

func (s *AuthLockoutCleanerSuite) SetupTest() {
	s.now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	s.store = &mockAuthLockoutStore{}
	s.service = New(s.store, WithClock(func() time.Time { return s.now }))
}

func (s *AuthLockoutCleanerSuite) TestRunOncePassesLockoutWindowCutoff() {
	s.store.purged = 3
	s.store.locked = 1

	result, err := s.service.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, s.store.calls)
	s.Equal(s.now, s.store.lastNow)
	s.Equal(s.now.Add(-15*time.Minute), s.store.lastCutoff)
	s.Equal(3, result.EntriesPurged)
	s.Equal(1, result.LockedEntries)
}

func (s *AuthLockoutCleanerSuite) TestRunOncePropagatesStoreError() {
	s.store.err = errors.New("store unavailable")

	result, err := s.service.RunOnce(context.Background())
	s.Error(err)
	s.Nil(result)
}

func (s *AuthLockoutCleanerSuite) TestRunOnceAgainstMemoryStore() {
	store := lockoutStore.New()
	ctx := context.Background()
	elapsed := s.now.Add(-time.Minute)
	s.Require().NoError(store.Update(ctx, &models.AuthLockout{Identifier: "a", FailureCount: 5, LockedUntil: &elapsed}))
	_, err := store.RecordFailure(ctx, "b", s.now)
	s.Require().NoError(err)

	svc := New(store, WithClock(func() time.Time { return s.now }))
	result, err := svc.RunOnce(ctx)
	s.Require().NoError(err)
	s.Equal(1, result.EntriesPurged)

	record, err := store.Get(ctx, "b")
	s.Require().NoError(err)
	s.NotNil(record)
}

func (s *AuthLockoutCleanerSuite) TestStartRecordsMetricsAndStopsOnCancel() {
	s.store.purged = 2
	m := metrics.New(prometheus.NewRegistry())
	svc := New(s.store,
		WithInterval(10*time.Millisecond),
		WithMetrics(m),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	s.Eventually(func() bool {
		return testutil.ToFloat64(m.CleanupRunsTotal.WithLabelValues("success")) >= 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("worker did not stop")
	}
	s.GreaterOrEqual(testutil.ToFloat64(m.CleanupEntriesPurged), 2.0)
}

func (s *AuthLockoutCleanerSuite) TestPartialCountDecaysOnlyOnTickAfterIdleWindow() {
	store := lockoutStore.New()
	ctx := context.Background()
	lastFailure := s.now
	for range 4 {
		_, err := store.RecordFailure(ctx, "203.0.113.9", lastFailure)
		s.Require().NoError(err)
	}

	clock := lastFailure.Add(15 * time.Minute)
	svc := New(store, WithClock(func() time.Time { return clock }))

	result, err := svc.RunOnce(ctx)
	s.Require().NoError(err)
	s.Zero(result.EntriesPurged, "exactly 15 idle minutes is not yet past the window")
	record, err := store.Get(ctx, "203.0.113.9")
	s.Require().NoError(err)
	s.Require().NotNil(record)
	s.Equal(4, record.FailureCount)

	// Between ticks nothing decays, however long the address stays idle.
	clock = lastFailure.Add(20 * time.Minute)
	record, err = store.Get(ctx, "203.0.113.9")
	s.Require().NoError(err)
	s.Require().NotNil(record)

	result, err = svc.RunOnce(ctx)
	s.Require().NoError(err)
	s.Equal(1, result.EntriesPurged)
	record, err = store.Get(ctx, "203.0.113.9")
	s.Require().NoError(err)
	s.Nil(record)
}
