// internal/notify/backoff.go
package notify

import (
    "math/rand"
    "time"
)

// BackoffFunc maps a retry count (1-based) to the delay before the next
// attempt.
type BackoffFunc func(retryCount int) time.Duration

// ExponentialBackoff doubles the delay per retry, capped at max, with ±50%
// jitter so repeated infrastructure failures don't re-poll in lockstep.
func ExponentialBackoff(base, max time.Duration) BackoffFunc {
    return func(retryCount int) time.Duration {
        if retryCount < 1 {
            retryCount = 1
        }
        d := base
        for i := 1; i < retryCount; i++ {
            d *= 2
            if d >= max {
                d = max
                break
            }
        }
        // jitter into [d/2, 3d/2)
        d = d/2 + time.Duration(rand.Int63n(int64(d)))
        if d > max {
            d = max
        }
        return d
    }
}

// DefaultBackoff is 30s doubling up to an hour.
var DefaultBackoff = ExponentialBackoff(30*time.Second, time.Hour)
