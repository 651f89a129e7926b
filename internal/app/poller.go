package app

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/five82/steward/internal/backend"
	"github.com/five82/steward/internal/logging"
	"github.com/five82/steward/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 30 * time.Second
)

// Source refreshes one client-paged resource.
type Source struct {
	Resource backend.Resource
	Fetch    func(ctx context.Context) (any, error)
}

// PollOptions tune StartPoller.
type PollOptions struct {
	Interval time.Duration
	Clock    clockwork.Clock
	Logger   zerolog.Logger
	// OnUpdate runs after every round, typically to wake the UI.
	OnUpdate func()
}

// StartPoller launches a background goroutine that refreshes every source,
// immediately and then on a cadence that backs off while rounds fail. It
// returns immediately.
func StartPoller(ctx context.Context, store *state.Store, sources []Source, opts PollOptions) {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := logging.Component(opts.Logger, "poller")

	go func() {
		failures := 0
		for {
			if refresh(ctx, store, sources, logger) {
				failures = 0
			} else {
				failures++
			}
			if opts.OnUpdate != nil {
				opts.OnUpdate()
			}

			delay := calculateBackoff(failures, interval)
			if failures > 0 {
				logger.Debug().Int("failures", failures).Dur("retry_in", delay).Msg("backing off")
			}
			timer := clock.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.Chan():
			}
		}
	}()
}

// refresh polls every source once and reports whether all succeeded.
func refresh(ctx context.Context, store *state.Store, sources []Source, logger zerolog.Logger) bool {
	ok := true
	for _, src := range sources {
		if ctx.Err() != nil {
			return ok
		}
		items, err := src.Fetch(ctx)
		store.Update(src.Resource, items, err)
		if err != nil {
			ok = false
			logger.Warn().Err(err).Str("resource", string(src.Resource)).Msg("poll failed")
		}
	}
	return ok
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff (or base when base is larger).
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	ceiling := max(maxBackoff, base)
	delay := base
	for range failures {
		delay *= 2
		if delay >= ceiling {
			return ceiling
		}
	}
	return delay
}
