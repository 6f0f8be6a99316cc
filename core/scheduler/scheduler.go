package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner.
type Scheduler struct {
	ctx        context.Context
	cron       *cron.Cron
	logger     *zap.Logger
	runTimeout time.Duration
	jobs       []string
}

// New creates a stopped scheduler. ctx is the parent of every run context.
func New(ctx context.Context, cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RunTimeoutSeconds
	if timeout <= 0 {
		timeout = 300
	}

	cl := cronLogger{l: logger.Sugar()}
	return &Scheduler{
		ctx:        ctx,
		cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:     logger,
		runTimeout: time.Duration(timeout) * time.Second,
	}
}

// Add registers job under name. An empty spec leaves the job unscheduled.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		s.logger.Info("Job not scheduled", zap.String("job", name))
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		rctx, cancel := context.WithTimeout(s.ctx, s.runTimeout)
		defer cancel()

		start := time.Now()
		if err := job(rctx); err != nil {
			s.logger.Warn("Job failed", zap.String("job", name), zap.Duration("took", time.Since(start)), zap.Error(err))
			return
		}
		s.logger.Info("Job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return err
	}

	s.jobs = append(s.jobs, name)
	s.logger.Info("Job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	return append([]string(nil), s.jobs...)
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
