package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crimson-sun/bulletin/internal/connector"
)

// Schedule runs Query on every tick of the standard five-field cron spec
// until ctx is cancelled. Each run after the first starts where the previous
// one ended, so a notice is queried once. A run still in progress when the
// next tick fires makes that tick a no-op.
func (p *Pipeline) Schedule(ctx context.Context, spec string, cfg connector.ConnectorConfig, params connector.QueryParams) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("pipeline schedule: parse %q: %w", spec, err)
	}

	var (
		mu   sync.Mutex
		next = params
	)
	run := func() {
		mu.Lock()
		q := next
		mu.Unlock()

		now := time.Now().UTC()
		q.End = now
		if err := p.Query(ctx, cfg, q); err != nil {
			slog.Warn("scheduled query failed", "provider", cfg.Provider, "error", err)
			return
		}

		mu.Lock()
		next.Start = now
		mu.Unlock()
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(sched, cron.FuncJob(run))
	c.Start()
	slog.Info("schedule started", "spec", spec, "next", sched.Next(time.Now()))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
