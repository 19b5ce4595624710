package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrSweepersRunning is returned by Start when the sweeps are already running.
var ErrSweepersRunning = errors.New("session: sweepers already running")

// Start launches the periodic sweeps: expired sessions and the IP index every SweepInterval,
// rate-limit entries every RateLimitWindow. They run until ctx is done or Stop is called;
// either way Start may be called again once they have returned.
func (r *Registry) Start(ctx context.Context) error {
	r.sweepMu.Lock()
	defer r.sweepMu.Unlock()
	if r.group != nil {
		return ErrSweepersRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tick(gctx, r.cfg.SweepInterval, func() {
			if _, err := r.SweepExpiredSessions(gctx); err != nil {
				log.Printf("session: sweep expired: %v", err)
			}
			if _, err := r.SweepIPIndex(gctx); err != nil {
				log.Printf("session: sweep ip index: %v", err)
			}
		})
	})
	g.Go(func() error {
		return tick(gctx, r.cfg.RateLimitWindow, func() {
			r.SweepRateLimits()
		})
	})
	r.cancel = cancel
	r.group = g
	go func() {
		_ = g.Wait()
		cancel()
		r.sweepMu.Lock()
		if r.group == g {
			r.cancel, r.group = nil, nil
		}
		r.sweepMu.Unlock()
	}()
	return nil
}

// Stop cancels the sweeps and waits for them to return. It is a no-op if they are not running.
func (r *Registry) Stop() {
	r.sweepMu.Lock()
	cancel, g := r.cancel, r.group
	r.cancel, r.group = nil, nil
	r.sweepMu.Unlock()
	if g == nil {
		return
	}
	cancel()
	_ = g.Wait()
}

func tick(ctx context.Context, every time.Duration, fn func()) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fn()
		}
	}
}

// SweepExpiredSessions deletes every session past its expiry and returns how many were removed.
func (r *Registry) SweepExpiredSessions(ctx context.Context) (int, error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("session: delete expired: %w", err)
	}
	if n > 0 {
		r.metrics.terminated.Add(ctx, int64(n), reasonAttr("swept"))
	}
	return n, nil
}

// SweepIPIndex drops IP index entries that reference missing sessions.
func (r *Registry) SweepIPIndex(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.repo.PruneIPIndex(ctx)
	if err != nil {
		return 0, fmt.Errorf("session: prune ip index: %w", err)
	}
	return n, nil
}

// SweepRateLimits drops rate-limit windows that have reset.
func (r *Registry) SweepRateLimits() int {
	return r.limiter.Sweep(r.now())
}
