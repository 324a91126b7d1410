package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"go-acs-bot/internal/logger"
)

// LastPrunedKey is the settings key holding the last prune time (RFC3339)
const LastPrunedKey = "audit.last_pruned_at"

// AuditStore is the part of the database the scheduler maintains
type AuditStore interface {
	PruneLogs(ctx context.Context, before time.Time) (int64, error)
	SaveSetting(key, value string) error
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	store     AuditStore
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger
	now       func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler that drops audit entries older than retention
// every interval
func New(store AuditStore, retention, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		retention: retention,
		interval:  interval,
		log:       logger.WithComponent("scheduler"),
		now:       time.Now,
	}
}

// Start runs one prune immediately and then one per interval until Stop
func (s *Scheduler) Start(ctx context.Context) {
	if s.retention <= 0 || s.interval <= 0 {
		s.log.Info().Msg("audit pruning disabled")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runPrune(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runPrune(ctx)
			}
		}
	}()
}

// Stop halts the ticker and waits for a running prune
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) runPrune(ctx context.Context) {
	now := s.now().UTC()
	n, err := s.store.PruneLogs(ctx, now.Add(-s.retention))
	if err != nil {
		s.log.Error().Err(err).Msg("audit prune failed")
		return
	}
	if err := s.store.SaveSetting(LastPrunedKey, now.Format(time.RFC3339)); err != nil {
		s.log.Warn().Err(err).Msg("failed to record prune time")
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("audit log pruned")
	}
}
