package security

import (
	"sync"
	"time"
)

// RateLimiter is a per-identifier token bucket.
// Buckets idle for more than an hour are dropped by a background goroutine
// until Stop is called.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	capacity int
	refill   time.Duration // time to regain one token

	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter allows capacity requests in a burst, then one per refill.
//
// Example:
//
//	// 5 login attempts per minute
//	limiter := NewRateLimiter(5, 12*time.Second)
//	defer limiter.Stop()
func NewRateLimiter(capacity int, refill time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		refill:   refill,
		ticker:   time.NewTicker(10 * time.Minute),
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow consumes a token for identifier and reports whether one was available.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[identifier]
	if !ok {
		rl.buckets[identifier] = &bucket{tokens: rl.capacity - 1, lastRefill: now}
		return rl.capacity > 0
	}

	if gained := int(now.Sub(b.lastRefill) / rl.refill); gained > 0 {
		b.tokens += gained
		if b.tokens > rl.capacity {
			b.tokens = rl.capacity
		}
		b.lastRefill = b.lastRefill.Add(time.Duration(gained) * rl.refill)
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Reset forgets identifier, restoring a full bucket.
func (rl *RateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, identifier)
}

func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for id, b := range rl.buckets {
				if now.Sub(b.lastRefill) > time.Hour {
					delete(rl.buckets, id)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() {
		rl.ticker.Stop()
		close(rl.done)
	})
}

// AccountLockout locks a username after too many failed logins.
type AccountLockout struct {
	mu       sync.Mutex
	accounts map[string]*lockoutState

	threshold int
	duration  time.Duration
	window    time.Duration
}

type lockoutState struct {
	failedAttempts int
	lastAttempt    time.Time
	lockedUntil    time.Time
}

// NewAccountLockout locks an account for duration once threshold failures
// happen with less than window between consecutive attempts.
func NewAccountLockout(threshold int, duration, window time.Duration) *AccountLockout {
	return &AccountLockout{
		accounts:  make(map[string]*lockoutState),
		threshold: threshold,
		duration:  duration,
		window:    window,
	}
}

// RecordFailedAttempt counts a failure and reports whether it locked the account.
func (al *AccountLockout) RecordFailedAttempt(identifier string) bool {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := time.Now()
	state, ok := al.accounts[identifier]
	if !ok || now.Sub(state.lastAttempt) > al.window {
		state = &lockoutState{}
		al.accounts[identifier] = state
	}

	state.failedAttempts++
	state.lastAttempt = now

	if state.failedAttempts >= al.threshold {
		state.lockedUntil = now.Add(al.duration)
		return true
	}
	return false
}

// IsLocked reports whether identifier is currently locked. An expired lock
// clears the failure count.
func (al *AccountLockout) IsLocked(identifier string) bool {
	al.mu.Lock()
	defer al.mu.Unlock()

	state, ok := al.accounts[identifier]
	if !ok || state.lockedUntil.IsZero() {
		return false
	}
	if time.Now().After(state.lockedUntil) {
		delete(al.accounts, identifier)
		return false
	}
	return true
}

// ResetAttempts clears failures for identifier. Call it after a successful login.
func (al *AccountLockout) ResetAttempts(identifier string) {
	al.mu.Lock()
	defer al.mu.Unlock()
	delete(al.accounts, identifier)
}

// LockoutRemaining returns how long identifier stays locked, or 0.
func (al *AccountLockout) LockoutRemaining(identifier string) time.Duration {
	al.mu.Lock()
	defer al.mu.Unlock()

	state, ok := al.accounts[identifier]
	if !ok || state.lockedUntil.IsZero() {
		return 0
	}
	if remaining := time.Until(state.lockedUntil); remaining > 0 {
		return remaining
	}
	return 0
}
