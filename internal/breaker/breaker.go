// Package breaker implements the per-dependency circuit breaker that guards
// calls to the external completion APIs.
package breaker

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// State represents the state of a circuit breaker.
type State int

const (
	StateClosed   State = iota // Normal operation, calls allowed.
	StateOpen                  // Calls denied until the reset timeout elapses.
	StateHalfOpen              // Probing; calls allowed until the next record.
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of a breaker for health reporting.
type Snapshot struct {
	Name         string
	State        State
	Failures     int
	LastFailure  time.Time
	Threshold    int
	ResetTimeout time.Duration
}

// Breaker tracks consecutive failures of one upstream dependency.
//
// Each method is safe for concurrent use, but CanExecute followed by a later
// Record* call is not atomic: concurrent callers may all pass CanExecute while
// the breaker is half-open.
type Breaker struct {
	name         string
	threshold    int
	resetTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

type Option func(*Breaker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a closed breaker that opens after threshold consecutive
// failures and admits a probe once resetTimeout has elapsed.
func New(name string, threshold int, resetTimeout time.Duration, opts ...Option) (*Breaker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("breaker: name must not be empty")
	}
	if threshold <= 0 {
		return nil, errors.New("breaker: threshold must be positive")
	}
	if resetTimeout < 0 {
		return nil, errors.New("breaker: reset timeout must not be negative")
	}
	b := &Breaker{
		name:         name,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
		state:        StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Breaker) Name() string { return b.name }

// CanExecute reports whether a call may go through. An open breaker whose
// reset timeout has elapsed moves to half-open and admits the call.
func (b *Breaker) CanExecute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if !b.lastFailure.IsZero() && b.now().Sub(b.lastFailure) > b.resetTimeout {
			b.state = StateHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess clears the failure count and closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = StateClosed
}

// RecordFailure counts a failure and opens the breaker once the threshold is
// reached. A failed half-open probe reopens it immediately because the count
// was never reset.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
	if b.failures >= b.threshold {
		b.state = StateOpen
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Name:         b.name,
		State:        b.state,
		Failures:     b.failures,
		LastFailure:  b.lastFailure,
		Threshold:    b.threshold,
		ResetTimeout: b.resetTimeout,
	}
}
