// Package dialer places outbound collection calls to every borrower on
// record.
package dialer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bargaj/collectcall/internal/store"
	"github.com/google/uuid"
)

// CallPlacer starts one outbound call. Implemented by the telephony client.
type CallPlacer interface {
	PlaceCall(ctx context.Context, to, voiceURL string) (string, error)
}

// Result summarizes one dial batch.
type Result struct {
	BatchID string `json:"batch_id"`
	Placed  int    `json:"placed"`
	Failed  int    `json:"failed"`
}

// Dialer fans outbound calls over a bounded worker pool.
type Dialer struct {
	dir      store.Directory
	placer   CallPlacer
	voiceURL string
	workers  int
}

// New creates a dialer. voiceURL is the publicly reachable call-started
// webhook the provider fetches when a callee answers.
func New(dir store.Directory, placer CallPlacer, voiceURL string, workers int) *Dialer {
	if workers <= 0 {
		workers = 4
	}
	return &Dialer{dir: dir, placer: placer, voiceURL: voiceURL, workers: workers}
}

// DialAll places a call to every borrower in the directory. Individual
// placement failures are logged and counted, not fatal; the batch keeps
// going. Context cancellation stops new placements.
func (d *Dialer) DialAll(ctx context.Context) (Result, error) {
	res := Result{BatchID: uuid.NewString()}

	if d.placer == nil {
		return res, fmt.Errorf("telephony client not configured")
	}

	borrowers, err := d.dir.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list borrowers: %w", err)
	}
	if len(borrowers) == 0 {
		slog.Info("Dial batch empty", "batch_id", res.BatchID)
		return res, nil
	}

	slog.Info("Starting dial batch",
		"batch_id", res.BatchID, "borrowers", len(borrowers), "workers", d.workers)

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for phone := range jobs {
				sid, err := d.placer.PlaceCall(ctx, phone, d.voiceURL)
				mu.Lock()
				if err != nil {
					res.Failed++
					mu.Unlock()
					slog.Error("Failed to place call",
						"batch_id", res.BatchID, "phone", phone, "error", err)
					continue
				}
				res.Placed++
				mu.Unlock()
				slog.Info("Call placed",
					"batch_id", res.BatchID, "phone", phone, "call_id", sid)
			}
		}()
	}

	for _, b := range borrowers {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return res, ctx.Err()
		case jobs <- b.PhoneNumber:
		}
	}
	close(jobs)
	wg.Wait()

	slog.Info("Dial batch complete",
		"batch_id", res.BatchID, "placed", res.Placed, "failed", res.Failed)
	return res, nil
}
