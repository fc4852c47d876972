// Package ratelimit counts requests per client key over a sliding window.
package ratelimit

import (
	"context"
	"strings"
	"time"
)

// HealthCheckIdentity is the key given to load balancer probes. Limiters
// wrapped with Exempt(l, HealthCheckIdentity) never throttle them.
const HealthCheckIdentity = "health-check"

const healthCheckAgent = "ELB-HealthChecker"

type Limiter interface {
	// Allow records a hit for key and reports whether it fits the window.
	// Rejected hits are not recorded.
	Allow(ctx context.Context, key string) (bool, error)
}

type Policy struct {
	Window time.Duration
	Max    int
}

var (
	LoginPolicy  = Policy{Window: 5 * time.Minute, Max: 5}
	GlobalPolicy = Policy{Window: 15 * time.Minute, Max: 100}
)

// Identity derives the limiter key for a request.
func Identity(ip, userAgent string) string {
	if strings.Contains(userAgent, healthCheckAgent) {
		return HealthCheckIdentity
	}
	return ip
}

type exempt struct {
	next Limiter
	keys map[string]struct{}
}

// Exempt wraps l so that the given keys are always allowed and never counted.
func Exempt(l Limiter, keys ...string) Limiter {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return &exempt{next: l, keys: set}
}

func (e *exempt) Allow(ctx context.Context, key string) (bool, error) {
	if _, ok := e.keys[key]; ok {
		return true, nil
	}
	return e.next.Allow(ctx, key)
}
