package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/demodash/internal/dashstate"
	"github.com/zulandar/demodash/internal/sheet"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export projects as CSV",
		Long:  "Writes every project as a CSV spreadsheet, from the API server when it answers and the local document otherwise.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, configPath, output)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, configPath, output string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	backend, err := selectBackend(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	projects, err := backend.ListProjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	if output == "" {
		return sheet.WriteProjects(cmd.OutOrStdout(), projects)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := sheet.WriteProjects(f, projects); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d projects to %s\n", len(projects), output)
	return nil
}

func newImportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import projects from CSV",
		Long: `Creates one project per CSV row. Every row is validated before anything is
written; a file with an invalid row imports nothing, and a failed write
removes the projects already created. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, args[0])
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runImport(cmd *cobra.Command, configPath, path string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	rows, err := sheet.ReadProjects(r)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	backend, err := selectBackend(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	d := dashstate.NewDispatcher(dashstate.New(backend, logger), logger)
	ids := make([]int64, 0, len(rows))
	for i, f := range rows {
		res, err := d.Dispatch(cmd.Context(), dashstate.CreateProject{Fields: f})
		if err != nil {
			return fmt.Errorf("import %s: row %d: %w", path, i+2, errors.Join(err, rollbackImport(cmd.Context(), d, ids)))
		}
		ids = append(ids, res.ID)
	}
	for i, f := range rows {
		fmt.Fprintf(out, "Created project %d: %s\n", ids[i], *f.Name)
	}
	fmt.Fprintf(out, "Imported %d projects into %s\n", len(rows), describeBackend(backend, cfg))
	return nil
}

// rollbackImport deletes the projects an aborted import already created.
func rollbackImport(ctx context.Context, d *dashstate.Dispatcher, ids []int64) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, id := range ids {
		if _, err := d.Dispatch(ctx, dashstate.DeleteProject{ID: id}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
