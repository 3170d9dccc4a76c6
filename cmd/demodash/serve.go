package main

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"
	"github.com/zulandar/demodash/internal/config"
	"github.com/zulandar/demodash/internal/dashboard"
	"github.com/zulandar/demodash/internal/db"
	"github.com/zulandar/demodash/internal/jobs"
	"github.com/zulandar/demodash/internal/localstore"
	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		seed       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and web dashboard",
		Long: `Serves the REST API and dashboard from the relational store (sqlite or
mysql). Scheduled jobs from the config run alongside: the project digest
to Slack/Discord and the local-mode mirror.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, seed)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	cmd.Flags().BoolVar(&seed, "seed", false, "load demo data into an empty database")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, seed bool) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	gormDB, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if seed || cfg.Store.Seed {
		seeded, err := db.Seed(ctx, gormDB, models.DemoData())
		if err != nil {
			return err
		}
		if seeded {
			fmt.Fprintln(out, "Seeded demo data")
		}
	}

	backend := store.NewGorm(gormDB)

	sched, err := newScheduler(cfg.Jobs, backend, cfg.Local.Dir, logger)
	if err != nil {
		return err
	}
	var wg sync.WaitGroup
	if sched.Len() > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Run(ctx)
		}()
	}

	err = dashboard.Start(ctx, dashboard.StartOpts{
		Backend: backend,
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Out:     out,
		Logger:  logger,
	})
	cancel()
	wg.Wait()
	return err
}

// newScheduler registers the digest and mirror jobs enabled in cfg.
func newScheduler(cfg config.JobsConfig, backend store.Backend, localDir string, logger *slog.Logger) (*jobs.Scheduler, error) {
	sched := jobs.NewScheduler(logger)

	if cfg.DigestSchedule != "" {
		notifiers, err := jobs.Notifiers(cfg)
		if err != nil {
			return nil, err
		}
		if len(notifiers) == 0 {
			logger.Warn("digest scheduled without a slack or discord webhook; skipping")
		} else if err := sched.Add("digest", cfg.DigestSchedule, jobs.DigestJob(backend, notifiers, nil, logger)); err != nil {
			return nil, err
		}
	}

	if cfg.MirrorSchedule != "" {
		local, err := localstore.Open(localDir)
		if err != nil {
			return nil, err
		}
		if err := sched.Add("mirror", cfg.MirrorSchedule, jobs.MirrorJob(backend, local, logger)); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
