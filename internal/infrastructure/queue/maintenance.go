package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultInterval = 24 * time.Hour

// Pruner removes expired local log events.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// Maintenance runs log pruning on a single worker: once at start, then on
// every tick and whenever Trigger is called, until ctx is cancelled. Runs
// never overlap.
type Maintenance struct {
	pruner   Pruner
	interval time.Duration
	trigger  chan struct{}
	log      zerolog.Logger
}

// NewMaintenance creates a Maintenance worker. If interval <= 0,
// defaultInterval is used.
func NewMaintenance(pruner Pruner, interval time.Duration, log zerolog.Logger) *Maintenance {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Maintenance{
		pruner:   pruner,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		log:      log.With().Str("component", "maintenance").Logger(),
	}
}

// Start launches the worker goroutine. The returned channel is closed once
// the worker has stopped.
func (m *Maintenance) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.run(ctx)
	}()
	return done
}

// Trigger requests an extra run. Requests made while one is already
// pending are merged.
func (m *Maintenance) Trigger() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

func (m *Maintenance) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.prune(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.prune(ctx)
		case <-m.trigger:
			m.prune(ctx)
		}
	}
}

func (m *Maintenance) prune(ctx context.Context) {
	n, err := m.pruner.Prune(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.log.Error().Err(err).Msg("log pruning failed")
		}
		return
	}
	m.log.Info().Int("deleted", n).Msg("log pruning finished")
}
