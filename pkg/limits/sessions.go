// Package limits caps how many live sessions a server holds at once.
package limits

import "sync/atomic"

// SessionLimiter counts live sessions against a fixed maximum.
type SessionLimiter struct {
	max     int32
	current atomic.Int32
	blocked atomic.Int64
}

// NewSessionLimiter creates a limiter. A non-positive max means no limit.
func NewSessionLimiter(max int) *SessionLimiter {
	return &SessionLimiter{max: int32(max)}
}

// Acquire takes a slot and reports whether one was free.
func (l *SessionLimiter) Acquire() bool {
	for {
		cur := l.current.Load()
		if l.max > 0 && cur >= l.max {
			l.blocked.Add(1)
			return false
		}
		if l.current.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Release frees a slot taken by Acquire.
func (l *SessionLimiter) Release() {
	l.current.Add(-1)
}

// Count returns the number of held slots.
func (l *SessionLimiter) Count() int {
	return int(l.current.Load())
}

// Max returns the configured maximum, or 0 when unlimited.
func (l *SessionLimiter) Max() int {
	return int(l.max)
}

// Blocked returns how many acquisitions were refused.
func (l *SessionLimiter) Blocked() int64 {
	return l.blocked.Load()
}
