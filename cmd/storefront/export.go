package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/cosmetics-storefront/catalog"
	"github.com/aluiziolira/cosmetics-storefront/pipeline"
)

func (a *app) exportCommand() *cobra.Command {
	var (
		search   string
		category string
		output   string
		format   string
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Walk every catalog page and write the products to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			if cmd.Flags().Changed("output") {
				cfg.OutputFile = output
			}
			if cmd.Flags().Changed("format") {
				cfg.OutputFormat = strings.ToLower(format)
			}
			if err := cfg.Validate(); err != nil {
				return fail("invalid configuration", err)
			}

			writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
			if err != nil {
				return fail("creating writer", err)
			}
			defer func() {
				if err := writer.Close(); err != nil {
					slog.Error("close writer", slog.Any("error", err))
				}
			}()

			index, err := catalog.NewCategoryIndex(a.client, cfg.CategoryCacheSize)
			if err != nil {
				return err
			}
			if err := index.Refresh(ctx); err != nil {
				slog.Warn("exporting without category names", slog.Any("error", err))
			}

			slog.Info("starting export",
				slog.String("base_url", cfg.BaseURL),
				slog.String("output", cfg.OutputFile),
				slog.String("format", cfg.OutputFormat),
			)

			p := pipeline.NewPipeline(ctx, writer, cfg)
			p.Start(workers)
			if cfg.Verbose {
				p.StartMetricsReporting(10 * time.Second)
			}

			startTime := time.Now()
			stats, exportErr := catalog.Export(ctx, a.client, p, search, category, index)
			if err := p.Close(); err != nil {
				return fail("pipeline shutdown failed", err)
			}
			if exportErr != nil {
				return report(cmd, "catalog export", exportErr)
			}
			if stats.Exported > 0 {
				if err := writer.Validate(); err != nil {
					return fail("output validation failed", err)
				}
			}

			printSummary(cmd.OutOrStdout(), stats, time.Since(startTime), a.client.TotalRetries(), cfg.OutputFile, p.Stats())
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only export products matching this text")
	cmd.Flags().StringVarP(&category, "category", "c", catalog.AllCategories, "Only export this category id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv, json, or dual")
	cmd.Flags().IntVar(&workers, "workers", 2, "Pipeline workers")
	return cmd
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "json":
		return pipeline.NewJSONWriter(filename)
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "dual":
		jsonFilename := strings.TrimSuffix(filename, ".csv") + ".jsonl"
		return pipeline.NewDualWriter(filename, jsonFilename)
	default:
		return nil, errors.Errorf("unsupported format: %s", format)
	}
}

func printSummary(out io.Writer, stats catalog.ExportStats, duration time.Duration, retries int, outputFile string, ps pipeline.Stats) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(out, "\n"+separator)
	fmt.Fprintln(out, "Export complete")

	written := ps.Written
	itemsPerSec := 0.0
	if duration.Seconds() > 0 {
		itemsPerSec = float64(written) / duration.Seconds()
	}

	fmt.Fprintf(out, "  Pages:         %d\n", stats.Pages)
	fmt.Fprintf(out, "  Fetched:       %d\n", stats.Fetched)
	fmt.Fprintf(out, "  Matched:       %d\n", stats.Exported)
	fmt.Fprintf(out, "  Written:       %d\n", written)
	fmt.Fprintf(out, "  Retries:       %d\n", retries)
	if len(ps.Skipped) > 0 {
		fmt.Fprintf(out, "  Skipped:       %v\n", ps.Skipped)
	}
	fmt.Fprintf(out, "  Duration:      %v\n", duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  Items/sec:     %.2f\n", itemsPerSec)
	fmt.Fprintf(out, "  Output file:   %s\n", outputFile)
	fmt.Fprintln(out, separator)
}
