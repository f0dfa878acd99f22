package reconcile

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSchedule = "@every 1h"

type Scheduler struct {
	reconcile *ReconcileService
	log       *zap.Logger
	spec      string
	cron      *cron.Cron
}

func NewScheduler(reconcile *ReconcileService, spec string, log *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	cl := cronLogger{log: log.Sugar()}
	return &Scheduler{
		reconcile: reconcile,
		log:       log,
		spec:      spec,
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
	}
}

// Start registers the reconciliation job and starts the cron runner.
// Runs use ctx, so cancelling it aborts an in-flight pass.
func (s *Scheduler) Start(ctx context.Context) error {
	s.log.Info("starting reconcile scheduler", zap.String("schedule", s.spec))

	if _, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.reconcile.RunFull(ctx); err != nil {
			s.log.Error("scheduled reconciliation failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running pass to finish.
func (s *Scheduler) Stop() {
	s.log.Info("stopping reconcile scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) RunOnceNow(ctx context.Context) (*Summary, error) {
	return s.reconcile.RunFull(ctx)
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
