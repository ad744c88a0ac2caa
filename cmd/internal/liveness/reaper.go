package liveness

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Reaper drives the scan -> close -> notify -> sleep cycle.
//
// It holds no state between iterations; the candidate sets are rebuilt
// from the store every scan, so a closure missed in one iteration is
// caught by a later one as long as the row stays stale.
type Reaper struct {
	log     *slog.Logger
	cfg     Config
	store   Store
	emitter *Emitter
	metrics *Metrics

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewReaper constructs a Reaper.
func NewReaper(log *slog.Logger, cfg Config, store Store, emitter *Emitter, metrics *Metrics) *Reaper {
	return &Reaper{
		log:     log,
		cfg:     cfg,
		store:   store,
		emitter: emitter,
		metrics: metrics,
		now:     time.Now,
	}
}

// Run executes reap iterations until ctx is canceled.
//
// The sleep between iterations races a timer against ctx, so shutdown
// latency is bounded by the remaining wait, and ctx is re-checked before
// each scan. In-flight store calls are not forcibly aborted beyond the
// ctx plumbed into them.
//
// A store failure aborts the current iteration and is returned to the
// hosting harness, which is responsible for restart (crash-restart, not
// in-loop retry). Clean shutdown returns nil.
func (r *Reaper) Run(ctx context.Context) error {
	r.log.Info("reaper.start",
		"poll_interval", r.cfg.PollInterval,
		"session_idle_timeout", r.cfg.SessionIdleTimeout,
		"session_max_duration", r.cfg.SessionMaxDuration,
		"machine_idle_timeout", r.cfg.MachineIdleTimeout,
	)

	for {
		if ctx.Err() != nil {
			r.log.Info("reaper.stop", "reason", "context_done")
			return nil
		}

		if err := r.RunOnce(ctx); err != nil {
			r.metrics.IterationFailures.Inc()
			return fmt.Errorf("reap iteration: %w", err)
		}

		timer := time.NewTimer(r.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.log.Info("reaper.stop", "reason", "context_done")
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce performs a single scan/close/notify iteration.
//
// Candidates are processed sequentially to keep store load bounded and
// ordering simple. A lost conditional close is skipped silently; an
// emission failure is logged per entity and never aborts the batch.
func (r *Reaper) RunOnce(ctx context.Context) error {
	now := r.now().UTC()

	idle, err := r.store.StaleSessionsByIdle(ctx, now.Add(-r.cfg.SessionIdleTimeout))
	if err != nil {
		return fmt.Errorf("stale sessions by idle: %w", err)
	}
	aged, err := r.store.StaleSessionsByAge(ctx, now.Add(-r.cfg.SessionMaxDuration))
	if err != nil {
		return fmt.Errorf("stale sessions by age: %w", err)
	}
	machines, err := r.store.StaleMachines(ctx, now.Add(-r.cfg.MachineIdleTimeout))
	if err != nil {
		return fmt.Errorf("stale machines: %w", err)
	}

	for _, cand := range MergeStaleSessions(idle, aged, now, r.cfg.SessionIdleTimeout) {
		updated, err := r.store.CloseSessionIfActive(ctx, cand.ID)
		if err != nil {
			return fmt.Errorf("close session %s: %w", cand.ID, err)
		}
		if len(updated) == 0 {
			// Another writer closed it between scan and close.
			r.metrics.CloseConflicts.WithLabelValues("session").Inc()
			continue
		}

		// The reason stays in logs only; the row does not record it.
		r.log.Info("reaper.session.closed",
			"session_id", cand.ID,
			"account_id", cand.AccountID,
			"reason", string(cand.Reason),
			"last_active_at", cand.LastActiveAt,
		)
		r.metrics.SessionsClosed.WithLabelValues(string(cand.Reason)).Inc()

		if err := r.emitter.SessionClosed(ctx, cand.Session); err != nil {
			r.log.Error("reaper.session.emit.fail", "session_id", cand.ID, "err", err)
			r.metrics.PublishFailures.WithLabelValues("session").Inc()
		}
	}

	for _, m := range machines {
		updated, err := r.store.CloseMachineIfActive(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("close machine %s: %w", m.ID, err)
		}
		if len(updated) == 0 {
			r.metrics.CloseConflicts.WithLabelValues("machine").Inc()
			continue
		}

		r.log.Info("reaper.machine.closed",
			"machine_id", m.ID,
			"account_id", m.AccountID,
			"reason", string(ReasonIdleTimeout),
			"last_active_at", m.LastActiveAt,
		)
		r.metrics.MachinesClosed.Inc()

		if err := r.emitter.MachineClosed(ctx, m); err != nil {
			r.log.Error("reaper.machine.emit.fail", "machine_id", m.ID, "err", err)
			r.metrics.PublishFailures.WithLabelValues("machine").Inc()
		}
	}

	r.metrics.Iterations.Inc()
	return nil
}
