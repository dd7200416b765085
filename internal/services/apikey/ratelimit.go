package apikey

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces per-key requests-per-minute limits with an in-memory
// sliding window. Windows are per process; a multi-instance deployment gets
// per-instance limits.
type RateLimiter struct {
	mu       sync.RWMutex
	requests map[uint][]time.Time
}

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[uint][]time.Time),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) CheckRateLimit(ctx context.Context, apiKeyID uint, limitRpm int) (bool, error) {
	if limitRpm <= 0 {
		return true, nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	oneMinuteAgo := now.Add(-1 * time.Minute)

	filtered := rl.requests[apiKeyID][:0]
	for _, reqTime := range rl.requests[apiKeyID] {
		if reqTime.After(oneMinuteAgo) {
			filtered = append(filtered, reqTime)
		}
	}
	rl.requests[apiKeyID] = filtered

	if len(filtered) >= limitRpm {
		return false, nil
	}

	rl.requests[apiKeyID] = append(filtered, now)
	return true, nil
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		oneMinuteAgo := time.Now().Add(-1 * time.Minute)

		for keyID, requests := range rl.requests {
			filtered := requests[:0]
			for _, reqTime := range requests {
				if reqTime.After(oneMinuteAgo) {
					filtered = append(filtered, reqTime)
				}
			}
			if len(filtered) == 0 {
				delete(rl.requests, keyID)
			} else {
				rl.requests[keyID] = filtered
			}
		}
		rl.mu.Unlock()
	}
}
