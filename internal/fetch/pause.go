package fetch

import (
	"context"
	"time"
)

// Sleep waits for delay or until ctx is done, whichever comes first. Zero
// and negative delays return immediately.
func Sleep(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
