package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Upload throttling: 30 uploads per minute per session, with room for a
// burst while a user swaps icons around in the editor.
const (
	uploadRatePerSecond = rate.Limit(30.0 / 60.0)
	uploadBurst         = 10

	limiterIdleTTL = 30 * time.Minute
)

type sessionLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// uploadLimiter keeps one token bucket per upload session.
type uploadLimiter struct {
	mu       sync.Mutex
	limiters map[string]*sessionLimiter
}

func newUploadLimiter() *uploadLimiter {
	return &uploadLimiter{limiters: make(map[string]*sessionLimiter)}
}

func (u *uploadLimiter) allow(sessionID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	entry, ok := u.limiters[sessionID]
	if !ok {
		entry = &sessionLimiter{limiter: rate.NewLimiter(uploadRatePerSecond, uploadBurst)}
		u.limiters[sessionID] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter.Allow()
}

// prune drops limiters idle longer than limiterIdleTTL so abandoned sessions
// do not accumulate.
func (u *uploadLimiter) prune() {
	u.mu.Lock()
	defer u.mu.Unlock()

	cutoff := time.Now().Add(-limiterIdleTTL)
	for id, entry := range u.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(u.limiters, id)
		}
	}
}
