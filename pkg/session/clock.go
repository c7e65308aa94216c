package session

import (
	"sync"
	"time"
)

// DefaultLeeway is how long before expiry the silent refresh fires
const DefaultLeeway = 60 * time.Second

// Timer is the part of *time.Timer the clock needs
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// TokenClock keeps at most one pending refresh callback
type TokenClock struct {
	mu        sync.Mutex
	leeway    time.Duration
	onDue     func()
	now       func() time.Time
	afterFunc AfterFunc

	timer    Timer
	deadline time.Time
	gen      uint64
}

// ClockOption configures a TokenClock
type ClockOption func(*TokenClock)

// WithClockNow replaces the time source
func WithClockNow(now func() time.Time) ClockOption {
	return func(c *TokenClock) { c.now = now }
}

// WithAfterFunc replaces the timer factory
func WithAfterFunc(fn AfterFunc) ClockOption {
	return func(c *TokenClock) { c.afterFunc = fn }
}

// NewTokenClock creates a clock that calls onDue leeway before each armed expiry
func NewTokenClock(leeway time.Duration, onDue func(), opts ...ClockOption) *TokenClock {
	c := &TokenClock{
		leeway:    leeway,
		onDue:     onDue,
		now:       time.Now,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Leeway returns the configured refresh leeway
func (c *TokenClock) Leeway() time.Duration {
	return c.leeway
}

// Arm cancels any pending callback and schedules one at expiry minus leeway.
// If that instant is not in the future nothing is scheduled and ErrTokenDue
// is returned; the caller decides whether to refresh immediately.
func (c *TokenClock) Arm(expiry time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	fireAt := expiry.Add(-c.leeway)
	delay := fireAt.Sub(c.now())
	if delay <= 0 {
		return ErrTokenDue
	}

	c.gen++
	gen := c.gen
	c.deadline = fireAt
	c.timer = c.afterFunc(delay, func() { c.fire(gen) })
	return nil
}

// Cancel stops the pending callback, if any
func (c *TokenClock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Pending reports whether a callback is scheduled
func (c *TokenClock) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Deadline returns when the pending callback fires
func (c *TokenClock) Deadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil {
		return time.Time{}, false
	}
	return c.deadline, true
}

func (c *TokenClock) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
		c.deadline = time.Time{}
	}
	// invalidates a callback that already started but has not taken the lock
	c.gen++
}

func (c *TokenClock) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.timer == nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.deadline = time.Time{}
	onDue := c.onDue
	c.mu.Unlock()

	if onDue != nil {
		onDue()
	}
}
