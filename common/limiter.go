package common

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// KeyedLimiter hands out one token bucket per key.
type KeyedLimiter struct {
	inUse sync.Map
	limit rate.Limit
	burst int
	now   func() time.Time
}

func NewKeyedLimiter(limit rate.Limit, burst int) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{limit: limit, burst: burst, now: time.Now}
}

// Wait blocks until key may proceed or ctx is done.
func (l *KeyedLimiter) Wait(ctx context.Context, key interface{}) error {
	return l.get(key).Wait(ctx)
}

// Sweep forgets keys idle for longer than idle and returns how many were
// removed.
func (l *KeyedLimiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle).UnixNano()
	removed := 0
	l.inUse.Range(func(key, value interface{}) bool {
		if value.(*limiterEntry).lastSeen.Load() < cutoff {
			l.inUse.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len is the number of keys currently tracked.
func (l *KeyedLimiter) Len() int {
	n := 0
	l.inUse.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func (l *KeyedLimiter) get(key interface{}) *rate.Limiter {
	res, ok := l.inUse.Load(key)
	if !ok {
		res, _ = l.inUse.LoadOrStore(key, &limiterEntry{
			limiter: rate.NewLimiter(l.limit, l.burst),
		})
	}
	entry := res.(*limiterEntry)
	entry.lastSeen.Store(l.now().UnixNano())
	return entry.limiter
}
