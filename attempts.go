package users

import (
	"sync"
	"time"
)

const (
	// DefaultMaxLoginAttempts is the failed attempt count at which an
	// identity is considered to have exceeded the limit.
	DefaultMaxLoginAttempts = 5
	// DefaultAttemptTTL is how long a counter survives after its last write.
	DefaultAttemptTTL = 15 * time.Minute
	// DefaultAttemptCapacity bounds how many distinct identities we track.
	DefaultAttemptCapacity = 100
)

type attemptEntry struct {
	count     int
	lastWrite time.Time
}

// LoginAttemptTracker counts failed login attempts per identity. Entries
// expire DefaultAttemptTTL after their last write, and when the tracker is
// at capacity the least recently written entry is evicted first. An absent
// entry counts as zero. Safe for concurrent use; increments for the same
// identity never lose updates.
type LoginAttemptTracker struct {
	mu          sync.Mutex
	entries     map[string]*attemptEntry
	maxAttempts int
	ttl         time.Duration
	capacity    int
	clock       func() time.Time
}

// TrackerOption configures a LoginAttemptTracker.
type TrackerOption func(*LoginAttemptTracker)

// WithTrackerClock overrides the tracker's time source.
func WithTrackerClock(clock func() time.Time) TrackerOption {
	return func(t *LoginAttemptTracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithTrackerLimits overrides the attempt threshold, entry TTL, and
// capacity. Zero values keep the defaults.
func WithTrackerLimits(maxAttempts int, ttl time.Duration, capacity int) TrackerOption {
	return func(t *LoginAttemptTracker) {
		if maxAttempts > 0 {
			t.maxAttempts = maxAttempts
		}
		if ttl > 0 {
			t.ttl = ttl
		}
		if capacity > 0 {
			t.capacity = capacity
		}
	}
}

// NewLoginAttemptTracker will create a new LoginAttemptTracker
func NewLoginAttemptTracker(opts ...TrackerOption) *LoginAttemptTracker {
	t := &LoginAttemptTracker{
		entries:     make(map[string]*attemptEntry),
		maxAttempts: DefaultMaxLoginAttempts,
		ttl:         DefaultAttemptTTL,
		capacity:    DefaultAttemptCapacity,
		clock:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// RecordFailure increments the counter for identity, creating it at 1 when
// absent or expired.
func (t *LoginAttemptTracker) RecordFailure(identity string) {
	now := t.clock()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[identity]
	if ok && t.expired(entry, now) {
		ok = false
	}

	if !ok {
		t.makeRoom(identity, now)
		t.entries[identity] = &attemptEntry{count: 1, lastWrite: now}
		return
	}

	entry.count++
	entry.lastWrite = now
}

// Evict removes the identity's counter entirely.
func (t *LoginAttemptTracker) Evict(identity string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, identity)
}

// Exceeded reports whether the identity has reached the maximum number of
// failed attempts. Absent or expired entries count as zero.
func (t *LoginAttemptTracker) Exceeded(identity string) bool {
	return t.Count(identity) >= t.maxAttempts
}

// Count returns the current failed attempt count for identity.
func (t *LoginAttemptTracker) Count(identity string) int {
	now := t.clock()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[identity]
	if !ok {
		return 0
	}
	if t.expired(entry, now) {
		delete(t.entries, identity)
		return 0
	}
	return entry.count
}

// Len returns the number of physically tracked identities, expired entries
// included. Exposed for capacity tests.
func (t *LoginAttemptTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// expired reports whether entry is logically absent. Callers hold t.mu.
func (t *LoginAttemptTracker) expired(entry *attemptEntry, now time.Time) bool {
	return now.Sub(entry.lastWrite) >= t.ttl
}

// makeRoom drops expired entries and, if still at capacity, the least
// recently written entry so a new identity can be inserted. Callers hold
// t.mu.
func (t *LoginAttemptTracker) makeRoom(identity string, now time.Time) {
	if len(t.entries) < t.capacity {
		return
	}

	for key, entry := range t.entries {
		if t.expired(entry, now) {
			delete(t.entries, key)
		}
	}

	for len(t.entries) >= t.capacity {
		oldestKey := ""
		var oldest time.Time
		for key, entry := range t.entries {
			if oldestKey == "" || entry.lastWrite.Before(oldest) {
				oldestKey = key
				oldest = entry.lastWrite
			}
		}
		if oldestKey == "" {
			return
		}
		delete(t.entries, oldestKey)
	}
}
