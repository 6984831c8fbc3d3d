package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"presence-chat/contract"
)

// PresenceTracker periodically evicts participants that stopped signaling.
//
// Each stale participant is evicted on its own: a failure is logged and the
// sweep moves on to the next one. The outcome of every sweep is reported
// to the health reporter.
type PresenceTracker struct {
	log      *slog.Logger
	presence contract.IPresence
	health   contract.HealthReporter
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
}

func NewPresenceTracker(log *slog.Logger, presence contract.IPresence,
	health contract.HealthReporter, interval, ttl time.Duration) *PresenceTracker {
	return &PresenceTracker{
		log:      log,
		presence: presence,
		health:   health,
		interval: interval,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (w *PresenceTracker) WithClock(now func() time.Time) *PresenceTracker {
	w.now = now
	return w
}

func (w *PresenceTracker) Run(ctx context.Context) error {
	w.log.Info("Starting presence tracker", "interval", w.interval, "ttl", w.ttl)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			evicted, err := w.Sweep(ctx)
			if err != nil {
				w.log.Warn("Presence sweep incomplete", "evicted", evicted, "error", err)
				continue
			}
			if evicted > 0 {
				w.log.Info("Inactive participants evicted", "count", evicted)
			}
		}
	}
}

// Sweep evicts every participant whose last signal is older than the TTL
// and returns how many were removed. Running it twice in a row is harmless.
func (w *PresenceTracker) Sweep(ctx context.Context) (int, error) {
	cutoff := w.now().Add(-w.ttl)
	stale, err := w.presence.Stale(ctx, cutoff)
	if err != nil {
		w.report(false)
		return 0, err
	}

	var evicted int
	var failures []error
	for _, participant := range stale {
		ok, err := w.presence.Evict(ctx, participant.Name, cutoff)
		if err != nil {
			w.log.Error("Unable to evict participant", "name", participant.Name, "error", err)
			failures = append(failures, err)
		}
		if ok {
			evicted++
		}
	}
	w.report(len(failures) == 0)
	return evicted, stderrors.Join(failures...)
}

func (w *PresenceTracker) report(healthy bool) {
	if w.health != nil {
		w.health.Report(healthy)
	}
}
