// Package circuit tracks the health of an upstream dependency.
//
// A Breaker never short-circuits calls by itself: callers decide what an open
// circuit means. The access gate only logs and exports it, because skipping
// the gate would either deny everyone or grant everyone.
package circuit

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Transition is what a single recorded outcome did to the circuit.
type Transition int

const (
	NoChange Transition = iota
	Opened
	Closed
)

// Snapshot is a consistent view of the breaker for logs and metrics.
type Snapshot struct {
	State    State
	Failures int       // current consecutive failures
	OpenedAt time.Time // zero while closed
}

// Breaker opens after a run of consecutive failures and closes after a run
// of consecutive successes while open.
type Breaker struct {
	name         string
	openAfter    int
	closeAfter   int
	now          func() time.Time
	onTransition func(name string, t Transition, s Snapshot)

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
}

type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures that open the circuit. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.openAfter = n
		}
	}
}

// WithSuccessThreshold sets the consecutive successes that close it. Default 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.closeAfter = n
		}
	}
}

// WithOnTransition registers a hook called, outside the lock, whenever the
// circuit opens or closes.
func WithOnTransition(fn func(name string, t Transition, s Snapshot)) Option {
	return func(b *Breaker) {
		b.onTransition = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:       name,
		openAfter:  5,
		closeAfter: 3,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) IsOpen() bool {
	return b.Snapshot().State == StateOpen
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Breaker) snapshotLocked() Snapshot {
	return Snapshot{State: b.state, Failures: b.failures, OpenedAt: b.openedAt}
}

// Record feeds one call outcome into the breaker; a nil err is a success.
func (b *Breaker) Record(err error) Transition {
	b.mu.Lock()
	t := b.recordLocked(err)
	snap := b.snapshotLocked()
	b.mu.Unlock()

	if t != NoChange && b.onTransition != nil {
		b.onTransition(b.name, t, snap)
	}
	return t
}

func (b *Breaker) recordLocked(err error) Transition {
	if err != nil {
		b.failures++
		b.successes = 0
		if b.state == StateClosed && b.failures >= b.openAfter {
			b.state = StateOpen
			b.openedAt = b.now()
			return Opened
		}
		return NoChange
	}

	b.failures = 0
	if b.state == StateClosed {
		return NoChange
	}
	b.successes++
	if b.successes < b.closeAfter {
		return NoChange
	}
	b.state = StateClosed
	b.successes = 0
	b.openedAt = time.Time{}
	return Closed
}

// Reset closes the circuit and clears the counters without firing the hook.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	b.openedAt = time.Time{}
}
