package cache

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// GCScheduler runs the engine's garbage collector on a cron schedule.
// Only useful with the file backend; scheduling it against any other
// backend is harmless because their collectors are no-ops.
type GCScheduler struct {
	engine Engine
	cron   *cron.Cron
	logger *slog.Logger
	power  int
}

// NewGCScheduler creates a scheduler that evicts stale records from
// engine. power bounds how many records a single pass samples.
func NewGCScheduler(engine Engine, power int, logger *slog.Logger) *GCScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GCScheduler{
		engine: engine,
		cron:   cron.New(),
		logger: logger,
		power:  power,
	}
}

// Start registers the collector under the given cron spec (e.g.
// "@every 5m") and starts the scheduler.
func (s *GCScheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		evicted := s.engine.RunGarbageCollector(context.Background(), s.power)
		if evicted > 0 {
			s.logger.Info("cache garbage collector pass",
				slog.Int("evicted", evicted),
				slog.Int("power", s.power),
			)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (s *GCScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
