package reliability

import (
	"errors"
	"time"

	"github.com/everreach/warmthd/internal/contacts"
)

// IsRetryable classifies errors worth retrying. Recompute never persists
// partial state, so a transient store failure is always safe to retry;
// validation and not-found errors are not.
func IsRetryable(err error) bool {
	return errors.Is(err, contacts.ErrStoreUnavailable)
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
