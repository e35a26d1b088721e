// Package ratelimit throttles expensive or abuse-prone endpoints per client
// using a sliding window.
package ratelimit

import (
	"context"
	"time"
)

// Class groups endpoints that share a limit.
type Class string

const (
	ClassLogin  Class = "login"
	ClassExport Class = "export"
)

// Limit is the number of requests allowed per Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result describes the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until a slot frees up.
func (r Result) RetryAfter(now time.Time) int {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// Store records request timestamps per key.
type Store interface {
	Allow(ctx context.Context, key string, limit Limit) (Result, error)
	Reset(ctx context.Context, key string) error
}

func key(class Class, client string) string {
	return string(class) + ":" + client
}
