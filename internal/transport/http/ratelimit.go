package http

import (
	"sync"
	"time"
)

// rateLimiter is a coarse per-instance limiter with a minute-long window.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	counter int
	reset   *time.Ticker
	stop    chan struct{}
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		return &rateLimiter{limit: 0}
	}
	r := &rateLimiter{
		limit: limit,
		reset: time.NewTicker(time.Minute),
		stop:  make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-r.reset.C:
				r.mu.Lock()
				r.counter = 0
				r.mu.Unlock()
			case <-r.stop:
				r.reset.Stop()
				return
			}
		}
	}()
	return r
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return r.counter <= r.limit
}
