package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter ограничивает число запросов на ключ в скользящем окне
type RateLimiter[K comparable] struct {
	requests map[K][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter создает ограничитель: не более limit запросов за window.
// limit <= 0 отключает ограничение.
func NewRateLimiter[K comparable](limit int, window time.Duration) *RateLimiter[K] {
	return &RateLimiter[K]{
		requests: make(map[K][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter[K]) IsAllowed(key K) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()

	if requests, exists := rl.requests[key]; exists {
		var valid []time.Time
		for _, t := range requests {
			if now.Sub(t) < rl.window {
				valid = append(valid, t)
			}
		}
		rl.requests[key] = valid
	}

	if len(rl.requests[key]) >= rl.limit {
		return false
	}

	rl.requests[key] = append(rl.requests[key], now)
	return true
}

// Cleanup удаляет ключи без запросов в текущем окне
func (rl *RateLimiter[K]) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, requests := range rl.requests {
		if len(requests) == 0 || now.Sub(requests[len(requests)-1]) >= rl.window {
			delete(rl.requests, key)
		}
	}
}
