package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/bargaj/collectcall/internal/domain"
)

// StartReaper launches a background worker that retires sessions whose calls
// went quiet (hang-up, dropped webhooks). onExpire receives each retired
// session so the caller can flush an unresponsive disposition. The worker
// stops when ctx is canceled.
func (r *Registry) StartReaper(ctx context.Context, ttl, interval time.Duration, onExpire func(callID string, s *domain.CallSession)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Session reaper stopped")
				return
			case <-ticker.C:
				if n := r.ReapIdle(ttl, onExpire); n > 0 {
					slog.Info("Session reaper pass complete", "retired", n)
				}
			}
		}
	}()
}
