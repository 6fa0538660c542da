package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// Retry runs fn up to maxAttempts times with exponential backoff and full
// jitter between attempts.
func Retry(logger *logrus.Logger, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err
			logger.Errorf("Attempt %d/%d failed: %v", attempt, maxAttempts, err)
			if attempt < maxAttempts {
				time.Sleep(Backoff(baseDelay, attempt))
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

// Backoff returns a jittered delay for the given attempt: a random duration
// in (0, base*2^(attempt-1)].
func Backoff(base time.Duration, attempt int) time.Duration {
	ceiling := base << (attempt - 1)
	if ceiling <= 0 {
		ceiling = base
	}
	return time.Duration(rand.Int63n(int64(ceiling))) + 1
}
