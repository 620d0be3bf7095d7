package hub

import (
	"context"
	"time"
)

// runScheduler refreshes the cache at every local midnight until the
// context is cancelled. Mirrors the vendor app's nightly re-sync.
//
// Failures are logged and swallowed: the previous cache stays
// authoritative and the scheduler rearms for the next midnight.
func (h *Hub) runScheduler(ctx context.Context) {
	defer h.wg.Done()

	for {
		next := nextMidnight(time.Now(), h.loc)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := h.Refresh(ctx); err != nil {
			h.logger.Warn("scheduled refresh failed", "error", err)
			continue
		}
		h.logger.Info("scheduled refresh completed")
	}
}

// nextMidnight returns the first midnight strictly after now in loc.
// AddDate handles DST transitions: the result is always wall-clock
// 00:00 on the following day.
func nextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, 1)
}
