package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/demodash/internal/config"
	"github.com/zulandar/demodash/internal/db"
	"github.com/zulandar/demodash/internal/models"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBSeedCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the demodash tables",
		Long:  "Connects to the configured sqlite or mysql store and migrates all tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	gormDB, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	fmt.Fprintf(out, "Connected to %s\n", storeName(cfg))
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
	fmt.Fprintln(out, "\nDemodash database initialized successfully.")
	return nil
}

func newDBSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into an empty database",
		Long:  "Inserts the demo projects, RFIs and tasks. A database that already has projects is left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runDBSeed(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	gormDB, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	demo := models.DemoData()
	seeded, err := db.Seed(cmd.Context(), gormDB, demo)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Fprintln(out, "Database already has projects; nothing seeded.")
		return nil
	}
	fmt.Fprintf(out, "Seeded %d projects, %d RFIs, %d tasks\n", len(demo.Projects), len(demo.RFIs), len(demo.Tasks))
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop all tables and reload demo data",
		Long: `Drops every demodash table, migrates them again and loads the demo data.
All existing projects, RFIs, tasks and documents are lost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if !skipConfirm {
		if !isTerminal(os.Stdin) {
			return fmt.Errorf("refusing to reset %s without a terminal; pass --yes", storeName(cfg))
		}
		if !confirmReset(cmd, storeName(cfg)) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	gormDB, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	if err := db.Reset(cmd.Context(), gormDB, models.DemoData()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Reset %s: %d tables re-created with demo data\n", storeName(cfg), len(db.AllModels()))
	return nil
}

// confirmReset prompts the user and returns true if they confirm.
func confirmReset(cmd *cobra.Command, name string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "This will DELETE every table in %s. Continue? [y/N] ", name)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// storeName describes the configured relational store.
func storeName(cfg *config.Config) string {
	if cfg.Store.Driver == config.DriverMySQL {
		m := cfg.Store.MySQL
		return fmt.Sprintf("mysql database %s at %s:%d", m.Database, m.Host, m.Port)
	}
	return "sqlite database " + cfg.Store.Path
}
