package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/demodash/internal/dashboard"
	"github.com/zulandar/demodash/internal/localstore"
	"github.com/zulandar/demodash/internal/models"
)

func newMockCmd() *cobra.Command {
	var (
		configPath string
		port       int
		latency    time.Duration
		noSeed     bool
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve the API from the local document store",
		Long: `Serves the same REST API and dashboard from the local-mode JSON document,
with simulated network latency on every /api call. An empty document is
filled with demo data unless --no-seed is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMock(cmd, configPath, port, latency, noSeed)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	cmd.Flags().DurationVar(&latency, "latency", -1, "simulated latency per API call (overrides config)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "leave an empty document empty")
	return cmd
}

func runMock(cmd *cobra.Command, configPath string, port int, latency time.Duration, noSeed bool) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if latency >= 0 {
		cfg.Local.Latency = latency
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	local, err := localstore.Open(cfg.Local.Dir)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if snap := local.Snapshot(); !noSeed && len(snap.Projects) == 0 && len(snap.RFIs) == 0 && len(snap.Tasks) == 0 {
		if err := local.Replace(ctx, models.DemoData()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Seeded demo data into %s\n", local.Path())
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		Backend: local,
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Out:     out,
		Logger:  logger,
		Latency: cfg.Local.Latency,
	})
}
