package httpx

import (
	"context"
	"net/http"
	"time"
)

func IsServerError(code int) bool {
	return code >= 500 && code <= 599
}

func IsRateLimited(code int) bool {
	return code == http.StatusTooManyRequests
}

// LinearBackoff returns base * attempt, where attempt counts from 1.
func LinearBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 || attempt <= 0 {
		return 0
	}
	return base * time.Duration(attempt)
}

// SleepCtx waits for d or until ctx is done, whichever comes first. Returns
// ctx.Err() when the wait was cut short.
func SleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
