package migrate

import (
	"context"
	"time"
)

// Runner drives the migrator: one submission per tick, strictly sequential,
// until no pending submissions remain or the first error.
type Runner struct {
	migrator *Migrator
	interval time.Duration
}

// NewRunner creates a runner that waits interval between submissions.
func NewRunner(migrator *Migrator, interval time.Duration) *Runner {
	return &Runner{
		migrator: migrator,
		interval: interval,
	}
}

// Run processes submissions until none remain (nil), the context is cancelled
// between records (ctx.Err()), or a submission fails (the error, unretried).
// A record already being processed is never interrupted mid-flight: it either
// fully completes or its error ends the run.
func (r *Runner) Run(ctx context.Context) error {
	for {
		done, err := r.migrator.ProcessNext(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
	}
}
