package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/zulandar/demodash/internal/config"
	"github.com/zulandar/demodash/internal/dashstate"
	"github.com/zulandar/demodash/internal/db"
	"github.com/zulandar/demodash/internal/store"
	"gorm.io/gorm"
)

const defaultConfigPath = "demodash.yaml"

func addConfigFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "config", "c", defaultConfigPath, "path to demodash config file")
}

// loadConfig reads the config file. A missing default file falls back to
// the built-in defaults; a missing explicit file is an error.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the text logger configured by cfg.Log, writing to w.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(cfg.Log.Level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(cmd.Context())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// openDB connects to the configured store and migrates it.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := db.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		db.Close(gormDB)
		return nil, err
	}
	return gormDB, nil
}

// selectBackend picks the API server when it answers and the local
// document store otherwise.
func selectBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Backend, error) {
	return dashstate.SelectBackend(ctx, dashstate.SelectOptions{
		APIURL:       cfg.Remote.URL,
		ProbeTimeout: cfg.Remote.ProbeTimeout,
		Timeout:      cfg.Remote.Timeout,
		LocalDir:     cfg.Local.Dir,
		Logger:       logger,
	})
}

// describeBackend names where b keeps its data.
func describeBackend(b store.Backend, cfg *config.Config) string {
	switch b.Mode() {
	case store.ModeRemote:
		return fmt.Sprintf("remote (%s)", cfg.Remote.URL)
	case store.ModeLocal:
		return fmt.Sprintf("local (%s)", cfg.Local.Dir)
	default:
		return string(b.Mode())
	}
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
