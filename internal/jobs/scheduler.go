package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/demodash/internal/config"
	"github.com/zulandar/demodash/internal/dashstate"
	"github.com/zulandar/demodash/internal/localstore"
	"github.com/zulandar/demodash/internal/store"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules. Overlapping runs of the same job
// are skipped and panics are recovered and logged.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
	ctx  context.Context
	jobs int
}

// NewScheduler creates an idle scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	logger = orDiscard(logger)
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(config.CronParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: logger,
		ctx: context.Background(),
	}
}

// Add registers job under name with a 5-field cron spec. A blank spec
// leaves the job disabled.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		s.log.Debug("job disabled", "job", name)
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			s.log.Error("job failed", "job", name, "error", err)
			return
		}
		s.log.Info("job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("jobs: schedule %s %q: %w", name, spec, err)
	}
	s.jobs++
	s.log.Info("job scheduled", "job", name, "schedule", spec)
	return nil
}

// Len returns the number of enabled jobs.
func (s *Scheduler) Len() int { return s.jobs }

// Run starts the scheduler and blocks until ctx is cancelled, then waits
// for running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}

// DigestJob builds the digest from backend and sends it to every notifier.
// A day with nothing to report sends nothing.
func DigestJob(backend store.Backend, notifiers []Notifier, now func() time.Time, logger *slog.Logger) Job {
	if now == nil {
		now = time.Now
	}
	logger = orDiscard(logger)
	return func(ctx context.Context) error {
		d, err := LoadDigest(ctx, backend, now())
		if err != nil {
			return err
		}
		if d == nil {
			logger.Info("digest suppressed: nothing due")
			return nil
		}
		var errs []error
		for _, n := range notifiers {
			if err := n.Notify(ctx, d); err != nil {
				errs = append(errs, err)
				continue
			}
			logger.Info("digest sent", "notifier", n.Name(), "rfis", len(d.RFIs), "tasks", len(d.Tasks))
		}
		return errors.Join(errs...)
	}
}

// LoadDigest reads every collection from backend and builds the digest.
func LoadDigest(ctx context.Context, backend store.Backend, now time.Time) (*Digest, error) {
	ds, err := store.LoadAll(ctx, backend)
	if err != nil {
		return nil, fmt.Errorf("jobs: digest: %w", err)
	}
	st := dashstate.New(nil, nil)
	st.Load(ds)
	return BuildDigest(st.Snapshot(), now), nil
}

// MirrorJob copies the source backend into the local-mode document.
func MirrorJob(source store.Backend, local *localstore.Store, logger *slog.Logger) Job {
	logger = orDiscard(logger)
	return func(ctx context.Context) error {
		ds, err := local.Sync(ctx, source)
		if err != nil {
			return fmt.Errorf("jobs: mirror: %w", err)
		}
		logger.Info("local mirror updated", "path", local.Path(),
			"projects", len(ds.Projects), "rfis", len(ds.RFIs), "tasks", len(ds.Tasks))
		return nil
	}
}

// Notifiers builds the notifiers configured in cfg.
func Notifiers(cfg config.JobsConfig) ([]Notifier, error) {
	var out []Notifier
	if cfg.SlackWebhook != "" {
		out = append(out, NewSlackNotifier(cfg.SlackWebhook))
	}
	if cfg.DiscordWebhook != "" {
		n, err := NewDiscordNotifier(cfg.DiscordWebhook)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
