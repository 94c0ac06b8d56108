package http

import (
	"sync"

	"golang.org/x/time/rate"
)

// sessionLimiter throttles inputs per session.
type sessionLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newSessionLimiter(limit rate.Limit, burst int) *sessionLimiter {
	if burst < 1 {
		burst = 1
	}
	return &sessionLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *sessionLimiter) allow(sessionID string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[sessionID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[sessionID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *sessionLimiter) forget(sessionID string) {
	l.mu.Lock()
	delete(l.limiters, sessionID)
	l.mu.Unlock()
}
