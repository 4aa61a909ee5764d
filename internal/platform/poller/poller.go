package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Func is invoked on every tick. Errors are logged and do not stop the
// poller; a cancelled context does.
type Func func(ctx context.Context) error

// Poller runs a function at a fixed interval until stopped. The study sync
// from the upstream source uses it, but it carries no domain knowledge of
// its own.
type Poller struct {
	name     string
	interval time.Duration
	fn       Func
	logger   zerolog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(name string, interval time.Duration, fn Func, logger zerolog.Logger) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   logger,
	}
}

// Start launches the polling loop in its own goroutine. The first run
// happens after one full interval, not immediately.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.logger.Info().
			Str("poller", p.name).
			Dur("interval", p.interval).
			Msg("poller started")

		for {
			select {
			case <-ctx.Done():
				p.logger.Info().Str("poller", p.name).Msg("poller stopped")
				return
			case <-ticker.C:
				if err := p.fn(ctx); err != nil {
					p.logger.Error().Err(err).
						Str("poller", p.name).
						Msg("poll iteration failed")
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for the running iteration to finish.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}
