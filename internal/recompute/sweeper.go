package recompute

import (
	"context"
	"log"
	"time"

	"github.com/everreach/warmthd/internal/reliability"
)

// StartSweeper periodically recomputes snapshots older than staleAfter.
// Snapshots are only as fresh as the last explicit recompute, so the sweeper
// bounds how stale the pipeline views and alerting can get.
func (s *Service) StartSweeper(ctx context.Context, interval, staleAfter time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx, staleAfter)
			}
		}
	}()
}

func (s *Service) sweep(ctx context.Context, staleAfter time.Duration) {
	cs, err := s.store.ListContacts(ctx)
	if err != nil && reliability.IsRetryable(err) {
		time.Sleep(reliability.ExponentialBackoff(1, time.Second, 30*time.Second))
		cs, err = s.store.ListContacts(ctx)
	}
	if err != nil {
		log.Printf("warmth sweep: list contacts: %v", err)
		if s.metrics != nil {
			s.metrics.SweepRuns.WithLabelValues("error").Inc()
		}
		return
	}

	cutoff := s.now().Add(-staleAfter)
	swept := 0
	for _, c := range cs {
		if ctx.Err() != nil {
			return
		}
		if c.Snapshot.Computed() && c.Snapshot.ComputedAt.After(cutoff) {
			continue
		}
		if _, err := s.Recompute(ctx, c.ID); err != nil {
			log.Printf("warmth sweep: recompute %s: %v", c.ID, err)
			continue
		}
		swept++
	}

	if s.metrics != nil {
		s.metrics.SweepRuns.WithLabelValues("ok").Inc()
	}
	if swept > 0 {
		log.Printf("warmth sweep: recomputed %d stale snapshots", swept)
	}
}
