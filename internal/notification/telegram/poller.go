package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// UpdateSource is what the poller needs from a client
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, pollTimeout int) ([]Update, error)
}

// Poller drives getUpdates until its context is cancelled
type Poller struct {
	source  UpdateSource
	timeout int
	log     zerolog.Logger
}

func NewPoller(source UpdateSource, pollTimeout int, log zerolog.Logger) *Poller {
	return &Poller{source: source, timeout: pollTimeout, log: log}
}

// Run hands every update to handle, in order. Errors back off exponentially;
// a 429 honours retry_after.
func (p *Poller) Run(ctx context.Context, handle func(Update)) error {
	var offset int64
	backoff := minBackoff

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := backoff
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				wait = time.Duration(apiErr.RetryAfter) * time.Second
			}
			p.log.Warn().Err(err).Dur("retry_in", wait).Msg("getUpdates failed")
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = minBackoff

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			handle(u)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
