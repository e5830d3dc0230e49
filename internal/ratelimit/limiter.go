// Package ratelimit throttles repeated attempts per key, e.g. logins per
// client and email.
package ratelimit

import "context"

// Limiter decides whether one more attempt for key is allowed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
