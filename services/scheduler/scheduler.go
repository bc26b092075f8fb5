// Package scheduler runs the periodic jobs: for now the fee overdue sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/shule/core"
)

// FeeSweeper marks the fees past their due date as overdue.
type FeeSweeper interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	logger  core.Logger
	timeout time.Duration

	NowFunc func() time.Time // mockable
}

func New(conf *core.Config, logger core.Logger) *Scheduler {
	loc := conf.Timezone
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: 10 * time.Minute,
		NowFunc: time.Now,
	}
}

// AddFeeOverdueSweep schedules fees.MarkOverdue on spec (standard cron or "@daily"-style).
func (s *Scheduler) AddFeeOverdueSweep(spec string, fees FeeSweeper) error {
	if _, err := s.cron.AddFunc(spec, func() { s.SweepFees(fees) }); err != nil {
		return errors.Wrapf(err, "scheduling fee overdue sweep %q", spec)
	}
	return nil
}

// SweepFees runs one fee overdue sweep.
func (s *Scheduler) SweepFees(fees FeeSweeper) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := fees.MarkOverdue(ctx, s.NowFunc())
	if err != nil {
		s.logger.Error(fmt.Sprintf("fee overdue sweep: %v", err), err)
		return
	}
	if n > 0 {
		s.logger.Info(fmt.Sprintf("fee overdue sweep: %d fee(s) marked overdue", n))
	}
}

func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for the running jobs, at most until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger adapts core.Logger to cron.Logger.
type cronLogger struct {
	logger core.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, pairs(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(fmt.Sprintf("cron: %s: %v", msg, err), err, pairs(keysAndValues))
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}
