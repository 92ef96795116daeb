package ratelimiter

import (
	"sync"
	"time"
)

type Limiter interface {
	Allow(client string) (bool, time.Duration)
}

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

// FixedWindowRateLimiter counts requests per client within a fixed window.
// Counters reset wholesale when the window rolls over.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]int
	limit   int
	window  time.Duration
	started time.Time
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]int),
		limit:   limit,
		window:  window,
		started: time.Now(),
	}
}

// Allow reports whether the client may proceed, and, when denied, how long
// until the current window resets.
func (rl *FixedWindowRateLimiter) Allow(client string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	elapsed := time.Since(rl.started)
	if elapsed >= rl.window {
		rl.clients = make(map[string]int)
		rl.started = time.Now()
		elapsed = 0
	}

	if rl.clients[client] >= rl.limit {
		return false, rl.window - elapsed
	}
	rl.clients[client]++
	return true, 0
}
