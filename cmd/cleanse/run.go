// cmd/cleanse/run.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/cleaner"
	"github.com/feedbackops/cleanse/pkg/pipeline"
	"github.com/feedbackops/cleanse/pkg/registry"
)

func newRunCmd() *cobra.Command {
	var (
		strategy     string
		structured   []string
		unstructured []string
		output       string
		store        bool
		registryDB   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cleaning pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if output != "" {
				cfg.OutputPath = output
			}
			if registryDB != "" {
				cfg.RegistryPath = registryDB
			}
			if len(structured) == 0 && cfg.StructuredPath != "" {
				structured = []string{cfg.StructuredPath}
			}
			if len(unstructured) == 0 && cfg.UnstructuredPath != "" {
				unstructured = []string{cfg.UnstructuredPath}
			}

			p, err := pipeline.New(strategy, cfg, logger)
			if err != nil {
				return err
			}
			for _, path := range structured {
				p.AddStructured(path)
			}
			for _, path := range unstructured {
				p.AddUnstructured(path)
			}

			ctx := cmd.Context()
			cleaned, err := p.Run(ctx)
			if err != nil {
				if errors.Is(err, pipeline.ErrNoData) {
					return fmt.Errorf("nothing to clean: %w", err)
				}
				return err
			}

			outputPath, err := p.Save(cleaned)
			if err != nil {
				return err
			}

			result := p.ExportChangeReport(outputPath)
			logger.Info("Change report exported",
				zap.Int("sinksWritten", result.Written()),
				zap.Int("sinkFailures", len(result.Errors)))

			if store {
				if err := storeRun(ctx, p, cfg.RegistryPath, outputPath, logger); err != nil {
					return err
				}
			}

			fmt.Fprint(os.Stdout, p.Metrics().Report())
			fmt.Fprintf(os.Stdout, "Cleaned dataset: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", cleaner.NameBaseline,
		"cleaning strategy: baseline, statistical or encoder")
	cmd.Flags().StringSliceVar(&structured, "structured", nil,
		"structured source file (CSV or Excel), repeatable")
	cmd.Flags().StringSliceVar(&unstructured, "unstructured", nil,
		"unstructured source (text directory or JSON file), repeatable")
	cmd.Flags().StringVar(&output, "output", "", "output directory for cleaned data")
	cmd.Flags().BoolVar(&store, "store", false, "record the run in the registry")
	cmd.Flags().StringVar(&registryDB, "registry-db", "", "registry database path")

	return cmd
}

func storeRun(ctx context.Context, p *pipeline.Pipeline, registryPath, outputPath string, logger *zap.Logger) error {
	reg, err := registry.Open(registryPath, logger)
	if err != nil {
		return err
	}
	defer reg.Close()

	if err := reg.Initialize(ctx); err != nil {
		return err
	}

	runID, err := p.RecordRun(ctx, reg, outputPath)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Recorded run %d in %s\n", runID, registryPath)
	return nil
}

func newRunsCmd() *cobra.Command {
	var (
		limit      int
		registryDB string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if registryDB != "" {
				cfg.RegistryPath = registryDB
			}

			reg, err := registry.Open(cfg.RegistryPath, logger)
			if err != nil {
				return err
			}
			defer reg.Close()

			ctx := cmd.Context()
			if err := reg.Initialize(ctx); err != nil {
				return err
			}

			runs, err := reg.GetRecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(os.Stdout, "No runs recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tTIMESTAMP\tCLEANER\tRECORDS\tCHANGES\tDURATION\tSTATUS")
			for _, run := range runs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%.2fs\t%s\n",
					run.RunID, run.Timestamp, run.CleanerType,
					run.TotalRecords, run.TotalChanges,
					run.DurationSeconds, run.Status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of runs to list")
	cmd.Flags().StringVar(&registryDB, "registry-db", "", "registry database path")

	return cmd
}
