package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/demodash/internal/jobs"
)

func newDigestCmd() *cobra.Command {
	var (
		configPath string
		date       string
		send       bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print or send the project digest",
		Long: `Builds the digest of pending RFIs due within a week and this week's open
tasks. Prints it by default; with --send it goes to the Slack and Discord
webhooks from the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, date, send)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&date, "date", "", "digest as of this day (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&send, "send", false, "send to the configured webhooks instead of printing")
	return cmd
}

func runDigest(cmd *cobra.Command, configPath, date string, send bool) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	now, err := parseDay(date)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	backend, err := selectBackend(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	d, err := jobs.LoadDigest(cmd.Context(), backend, now)
	if err != nil {
		return err
	}
	if d == nil {
		fmt.Fprintln(out, "Nothing due; no digest.")
		return nil
	}
	if !send {
		fmt.Fprintln(out, d.Text())
		return nil
	}

	notifiers, err := jobs.Notifiers(cfg.Jobs)
	if err != nil {
		return err
	}
	if len(notifiers) == 0 {
		return errors.New("no webhook configured: set jobs.slack_webhook or jobs.discord_webhook")
	}
	for _, n := range notifiers {
		if err := n.Notify(cmd.Context(), d); err != nil {
			return err
		}
		fmt.Fprintf(out, "Digest sent to %s\n", n.Name())
	}
	return nil
}
