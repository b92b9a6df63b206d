package session

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper periodically drops expired ephemeral entries and prunes durable
// sessions whose backend token has passed its embedded expiry.
type Sweeper struct {
	cron    *cron.Cron
	memory  *MemoryBackend // nil when the Redis backend is in use
	durable *DurableBackend
	log     zerolog.Logger
}

// NewSweeper creates a sweeper over the given backends. memory may be nil.
func NewSweeper(memory *MemoryBackend, durable *DurableBackend, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		cron:    cron.New(),
		memory:  memory,
		durable: durable,
		log:     log,
	}
}

// Start schedules the sweep every five minutes. It returns immediately.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@every 5m", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.memory != nil {
		if removed := s.memory.Sweep(); removed > 0 {
			s.log.Debug().Int("removed", removed).Msg("Swept expired ephemeral entries")
		}
	}

	pruned, err := s.durable.PruneExpired(ctx, TokenExpired)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to prune expired durable sessions")
		return
	}
	if pruned > 0 {
		s.log.Info().Int("pruned", pruned).Msg("Pruned sessions with expired tokens")
	}
}
