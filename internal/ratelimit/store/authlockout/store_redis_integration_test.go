//go:build integration

package authlockout_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"jamsession/internal/ratelimit/models"
	"jamsession/internal/ratelimit/store/authlockout"
	"jamsession/pkg/testutil/containers"
)

type RedisAuthLockoutStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *authlockout.RedisAuthLockoutStore
}

func TestRedisAuthLockoutStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisAuthLockoutStoreSuite))
}

func (s *RedisAuthLockoutStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = authlockout.NewRedis(s.redis.Client, authlockout.WithKeyPrefix("test:lockout:"))
}

func (s *RedisAuthLockoutStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisAuthLockoutStoreSuite) TestRecordFailureAndGet() {
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)
	ip := "203.0.113.20"

	record, err := s.store.Get(ctx, ip)
	s.Require().NoError(err)
	s.Nil(record)

	for i := 1; i <= 3; i++ {
		record, err = s.store.RecordFailure(ctx, ip, now)
		s.Require().NoError(err)
		s.Equal(i, record.FailureCount)
		s.Nil(record.LockedUntil)
	}

	stored, err := s.store.Get(ctx, ip)
	s.Require().NoError(err)
	s.Equal(3, stored.FailureCount)
	s.True(now.Equal(stored.LastFailureAt))

	ttl, err := s.redis.Client.PTTL(ctx, "test:lockout:"+ip).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 14*time.Minute, "each failure re-arms the idle window")
	s.LessOrEqual(ttl, 15*time.Minute)
}

func (s *RedisAuthLockoutStoreSuite) TestUpdateSetsLockoutExpiry() {
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)
	until := now.Add(2 * time.Second)
	ip := "203.0.113.21"

	s.Require().NoError(s.store.Update(ctx, &models.AuthLockout{
		Identifier:    ip,
		FailureCount:  5,
		LockedUntil:   &until,
		LastFailureAt: now,
	}))

	stored, err := s.store.Get(ctx, ip)
	s.Require().NoError(err)
	s.Require().NotNil(stored.LockedUntil)
	s.True(until.Equal(*stored.LockedUntil))

	next, err := s.store.RecordFailure(ctx, ip, now)
	s.Require().NoError(err)
	s.Equal(6, next.FailureCount)
	s.Require().NotNil(next.LockedUntil, "lockout survives further failures")

	s.Eventually(func() bool {
		record, err := s.store.Get(ctx, ip)
		return err == nil && record == nil
	}, 5*time.Second, 100*time.Millisecond, "record expires with the lockout")
}

func (s *RedisAuthLockoutStoreSuite) TestClear() {
	ctx := context.Background()
	ip := "203.0.113.22"

	_, err := s.store.RecordFailure(ctx, ip, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Clear(ctx, ip))

	record, err := s.store.Get(ctx, ip)
	s.NoError(err)
	s.Nil(record)
}

func (s *RedisAuthLockoutStoreSuite) TestConcurrentFailuresAcrossClients() {
	ctx := context.Background()
	ip := "203.0.113.23"
	other := authlockout.NewRedis(s.redis.Client, authlockout.WithKeyPrefix("test:lockout:"))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store := s.store
			if i%2 == 0 {
				store = other
			}
			_, err := store.RecordFailure(ctx, ip, time.Now())
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	record, err := s.store.Get(ctx, ip)
	s.Require().NoError(err)
	s.Equal(20, record.FailureCount)
}
