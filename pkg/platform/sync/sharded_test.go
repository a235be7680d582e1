package sync

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_SameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0
	var wg sync.WaitGroup

	for range 100 {
		wg.Go(func() {
			m.Lock("203.0.113.7")
			defer m.Unlock("203.0.113.7")
			counter++
		})
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestShardedMutex_ManyAddresses(t *testing.T) {
	m := NewShardedMutex()
	var wg sync.WaitGroup
	for i := range 200 {
		addr := fmt.Sprintf("10.0.%d.%d", i/256, i%256)
		wg.Go(func() {
			m.Lock(addr)
			defer m.Unlock(addr)
		})
	}
	wg.Wait()
}

func TestShardFor(t *testing.T) {
	assert.Equal(t, 0, shardFor(""))
	assert.Equal(t, shardFor("198.51.100.2"), shardFor("198.51.100.2"))

	seen := make(map[int]bool)
	for _, addr := range []string{"10.0.0.1", "10.0.0.2", "192.168.1.20", "2001:db8::1", "203.0.113.7", "unknown"} {
		idx := shardFor(addr)
		assert.True(t, idx >= 0 && idx < shardCount)
		seen[idx] = true
	}
	assert.GreaterOrEqual(t, len(seen), 3)
}
