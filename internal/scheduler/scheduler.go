package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/vuln-blog/internal/metrics"
	"github.com/robfig/cron/v3"
)

// purgeTimeout bounds a single purge run.
const purgeTimeout = 30 * time.Second

// SessionPurger deletes expired sessions and reports how many went.
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Run purges expired sessions on the cron spec (e.g. "@every 10m") until ctx
// is cancelled, then waits for a running purge to finish. An invalid spec is
// returned before anything is scheduled.
func Run(ctx context.Context, sessions SessionPurger, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { purge(ctx, sessions) }); err != nil {
		return fmt.Errorf("scheduler: invalid purge spec %q: %w", spec, err)
	}
	slog.Info("scheduler: session purge scheduled", "spec", spec)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func purge(ctx context.Context, sessions SessionPurger) {
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := sessions.DeleteExpired(ctx)
	if err != nil {
		slog.Error("scheduler: purge expired sessions", "error", err)
		return
	}
	metrics.AddSessionsPurged(n)
	if n > 0 {
		slog.Info("scheduler: purged expired sessions", "count", n)
	}
}
