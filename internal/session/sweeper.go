package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// standardCronParser accepts classic 5-field cron expressions only.
var standardCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// Sweeper closes idle sessions on a cron schedule. A TTL of zero or
// less disables it.
type Sweeper struct {
	manager  *Manager
	schedule cron.Schedule
	ttl      time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper parses the cron expression and binds the sweep to the
// manager. The loop does not run until Start.
func NewSweeper(m *Manager, expr string, ttl time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("session: cron expression is required")
	}
	schedule, err := standardCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("session: invalid cron expression: %w", err)
	}
	return &Sweeper{manager: m, schedule: schedule, ttl: ttl, logger: logger}, nil
}

// Start launches the sweep loop. No-op when the TTL disables sweeping.
func (sw *Sweeper) Start() {
	if sw.ttl <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	sw.cancel = cancel
	sw.done = make(chan struct{})
	go sw.run(ctx)
}

func (sw *Sweeper) run(ctx context.Context) {
	defer close(sw.done)
	for {
		timer := time.NewTimer(time.Until(sw.schedule.Next(time.Now())))
		select {
		case <-timer.C:
			if n := sw.manager.CloseIdle(sw.ttl); n > 0 {
				sw.logger.Info("idle sessions closed", "count", n, "ttl", sw.ttl.String())
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Stop halts the loop and waits for it to exit. Safe to call when the
// sweeper never started.
func (sw *Sweeper) Stop() {
	if sw.cancel == nil {
		return
	}
	sw.cancel()
	<-sw.done
}
