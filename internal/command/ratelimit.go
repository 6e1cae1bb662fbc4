// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package command

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Default rate limiting values.
const (
	// DefaultBurstCapacity is the maximum number of commands a player can
	// execute in a burst before rate limiting kicks in.
	DefaultBurstCapacity = 10

	// DefaultSustainedRate is the number of commands per second allowed as
	// sustained rate (token refill rate).
	DefaultSustainedRate = 2.0

	// MinBurstCapacity ensures burst capacity is at least 1.
	MinBurstCapacity = 1

	// MinSustainedRate ensures sustained rate is at least 0.1 tokens/second.
	MinSustainedRate = 0.1

	// DefaultCleanupInterval is the interval at which the background
	// goroutine runs to clean up stale buckets.
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultBucketMaxAge is the maximum idle age for a bucket before it is
	// eligible for cleanup.
	DefaultBucketMaxAge = time.Hour
)

// RateLimiterConfig configures the rate limiter. Zero values fall back to
// the defaults above.
type RateLimiterConfig struct {
	BurstCapacity   int
	SustainedRate   float64
	CleanupInterval time.Duration
	BucketMaxAge    time.Duration
}

// playerBucket tracks rate limiting state for a single player using the
// token bucket algorithm.
type playerBucket struct {
	tokens    float64
	lastCheck time.Time
}

// RateLimiter implements per-player rate limiting using a token bucket
// algorithm. It is safe for concurrent use.
//
// The RateLimiter runs a background goroutine to periodically clean up
// stale buckets. Call Close() to stop the goroutine.
type RateLimiter struct {
	mu            sync.Mutex
	buckets       map[ulid.ULID]*playerBucket
	burstCapacity int
	sustainedRate float64 // tokens per second
	bucketMaxAge  time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup

	// Gauge for tracked bucket count, nil without a registry.
	bucketGauge prometheus.Gauge
}

// NewRateLimiter creates a new rate limiter with the given configuration.
// It starts a background goroutine for cleanup. Call Close() to stop it.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return newRateLimiter(cfg, nil)
}

// NewRateLimiterWithRegistry creates a new rate limiter and registers a
// bucket count gauge with the provided Prometheus registry.
func NewRateLimiterWithRegistry(cfg RateLimiterConfig, reg prometheus.Registerer) *RateLimiter {
	return newRateLimiter(cfg, reg)
}

func newRateLimiter(cfg RateLimiterConfig, reg prometheus.Registerer) *RateLimiter {
	burstCapacity := cfg.BurstCapacity
	if burstCapacity <= 0 {
		burstCapacity = DefaultBurstCapacity
	}
	if burstCapacity < MinBurstCapacity {
		burstCapacity = MinBurstCapacity
	}

	sustainedRate := cfg.SustainedRate
	if sustainedRate <= 0 {
		sustainedRate = DefaultSustainedRate
	}
	if sustainedRate < MinSustainedRate {
		sustainedRate = MinSustainedRate
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	bucketMaxAge := cfg.BucketMaxAge
	if bucketMaxAge <= 0 {
		bucketMaxAge = DefaultBucketMaxAge
	}

	rl := &RateLimiter{
		buckets:       make(map[ulid.ULID]*playerBucket),
		burstCapacity: burstCapacity,
		sustainedRate: sustainedRate,
		bucketMaxAge:  bucketMaxAge,
		stopChan:      make(chan struct{}),
	}

	if reg != nil {
		rl.bucketGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mossgate_ratelimiter_buckets",
			Help: "Current number of tracked rate limiter buckets",
		})
		reg.MustRegister(rl.bucketGauge)
	}

	rl.wg.Add(1)
	go rl.cleanupLoop(cleanupInterval)

	return rl
}

// Allow checks if a command is allowed for the given player.
// Returns (allowed, cooldownMs) where cooldownMs is the time until the next
// token is available (0 if allowed). Each call consumes one token if
// available; tokens refill at the sustained rate up to the burst capacity.
func (rl *RateLimiter) Allow(playerID ulid.ULID) (allowed bool, cooldownMs int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	bucket, exists := rl.buckets[playerID]
	if !exists {
		// A new player starts with a full bucket.
		bucket = &playerBucket{
			tokens:    float64(rl.burstCapacity),
			lastCheck: now,
		}
		rl.buckets[playerID] = bucket
	}

	elapsed := now.Sub(bucket.lastCheck).Seconds()
	bucket.tokens += elapsed * rl.sustainedRate
	if bucket.tokens > float64(rl.burstCapacity) {
		bucket.tokens = float64(rl.burstCapacity)
	}
	bucket.lastCheck = now

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		return true, 0
	}

	deficit := 1.0 - bucket.tokens
	cooldownSeconds := deficit / rl.sustainedRate
	return false, int64(cooldownSeconds * 1000)
}

// BucketCount returns the number of tracked buckets, for tests and
// monitoring.
func (rl *RateLimiter) BucketCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Cleanup removes buckets idle since maxAge ago. Called automatically by
// the background goroutine.
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := time.Now().Add(-maxAge)
	for playerID, bucket := range rl.buckets {
		if bucket.lastCheck.Before(threshold) {
			delete(rl.buckets, playerID)
		}
	}
	if rl.bucketGauge != nil {
		rl.bucketGauge.Set(float64(len(rl.buckets)))
	}
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	defer rl.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup(rl.bucketMaxAge)
		case <-rl.stopChan:
			return
		}
	}
}

// Close stops the background cleanup goroutine.
func (rl *RateLimiter) Close() {
	close(rl.stopChan)
	rl.wg.Wait()
}
