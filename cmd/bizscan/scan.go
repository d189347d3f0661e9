package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bizscan/bizscan/internal/config"
	"github.com/bizscan/bizscan/internal/log"
	"github.com/bizscan/bizscan/internal/model"
	"github.com/bizscan/bizscan/internal/pipeline"
	"github.com/bizscan/bizscan/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [website-url]...",
		Short: "Crawl a website and extract business information",
		Long: `Scan crawls a business website and collects structured information
from its schema.org JSON-LD markup, with HTML heuristics as fallback:
contact details, ratings and reviews, services, opening hours,
licensing, and social media profiles.

Examples:
  # Full crawl of a single site
  bizscan scan example.com

  # Quick scan: root page plus well-known paths only
  bizscan scan --quick example.com

  # Scan several sites concurrently
  bizscan scan --batch 4 site1.com site2.com site3.com

  # Output JSON, or export to spreadsheet formats
  bizscan scan --json example.com
  bizscan scan --csv --excel -o reports/example example.com

Rules file (.bizscan) example:
  exclude_paths:
    - /admin
    - /cart
  priority_paths:
    - /about
    - /contact
    - /services
  variables:
    - slogan
    - awards`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl behavior flags
	cmd.Flags().BoolP("quick", "q", false,
		"Quick scan: fetch only the root page and well-known paths")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetch workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxAttempts,
		"Total fetch attempts per page, the first included")
	cmd.Flags().DurationP("delay", "d", config.DefaultCrawlDelay,
		"Politeness delay between requests")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans when multiple URLs are given")

	// Rules file
	cmd.Flags().StringP("config", "c", "",
		"Rules file path (default: .bizscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().Bool("csv", false,
		"Additionally export the report to a CSV file")
	cmd.Flags().Bool("excel", false,
		"Additionally export the report to an Excel workbook")
	cmd.Flags().StringP("output", "o", "",
		"Output path: report destination, and base name for exports")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	if err := loadRules(cfg, logger); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// buildConfig creates a Config from command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	var err error

	cfg.QuickScan, err = cmd.Flags().GetBool("quick")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxAttempts, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.RulesFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.CSVExport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	cfg.ExcelExport, err = cmd.Flags().GetBool("excel")
	if err != nil {
		return nil, err
	}

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its
// parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadRules fills cfg.Rules from the rules file. An explicitly named
// file must exist; an unreadable discovered file downgrades to empty
// rules with a warning so a broken .bizscan never blocks a scan.
func loadRules(cfg *config.Config, logger *slog.Logger) error {
	explicit := cfg.RulesFilePath != ""
	path := config.FindRulesFile(cfg.RulesFilePath)

	if path == "" {
		if explicit {
			return fmt.Errorf("rules file not found: %s", cfg.RulesFilePath)
		}
		cfg.Rules = &config.Rules{}
		return nil
	}

	rules, err := config.LoadRulesFile(path)
	if err != nil {
		if explicit {
			return fmt.Errorf("failed to load rules file %s: %w", path, err)
		}
		logger.Warn("ignoring unreadable rules file", "path", path, "error", err)
		cfg.Rules = &config.Rules{}
		return nil
	}

	cfg.Rules = rules
	logger.Debug("rules loaded",
		"path", path,
		"exclude", len(rules.ExcludePaths),
		"priority", len(rules.PriorityPaths),
		"variables", len(rules.Variables),
	)
	return nil
}

// runScan executes the scan for all targets.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return config.ErrNoTarget
	}

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, logger)
	}
	return runSequentialScan(ctx, cfg, logger)
}

// newPipeline builds the scan pipeline for one target.
func newPipeline(cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
	)
	p.AddSteps(
		pipeline.NewCrawlStep(cfg, pipeline.WithCrawlLogger(logger)),
		pipeline.NewSummaryStep(logger),
	)
	return p
}

// runSequentialScan scans targets one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Scanning %s...\n", target)
		start := time.Now()

		scanReport := model.NewScanReport(target)
		if err := newPipeline(cfg, logger).Execute(ctx, scanReport); err != nil {
			if errors.Is(err, context.Canceled) {
				// Partial results are still worth printing.
				logger.Warn("scan cancelled", "target", target)
			} else {
				logger.Error("scan failed", "target", target, "error", err)
				fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
				continue
			}
		}

		fmt.Printf("Scan completed in %s\n", time.Since(start).Round(time.Millisecond))

		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchScan scans multiple targets concurrently.
func runBatchScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)
	start := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return newPipeline(cfg, logger) },
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	results, err := bp.ProcessBatch(ctx, cfg.Targets)
	for i, scanReport := range results {
		if scanReport == nil {
			continue
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(results), scanReport.SeedURL)
		if outErr := outputReport(cfg, scanReport); outErr != nil {
			logger.Error("report failed", "target", scanReport.SeedURL, "error", outErr)
		}
	}

	fmt.Printf("\nBatch scan completed in %s\n", time.Since(start).Round(time.Millisecond))
	return err
}

// outputReport renders the report in the requested format and runs the
// configured spreadsheet exports.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	output := os.Stdout
	if cfg.OutputPath != "" && (cfg.JSONReport || cfg.MarkdownReport) {
		f, err := createOutputFile(cfg.OutputPath)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck // read-only close after write
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output)
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
	if _, err := w.Write(scanReport); err != nil {
		return err
	}

	if cfg.CSVExport {
		err := exportTo(cfg, scanReport, "csv", func(w io.Writer) report.Writer {
			return report.NewCSVWriter(w)
		})
		if err != nil {
			return err
		}
	}
	if cfg.ExcelExport {
		err := exportTo(cfg, scanReport, "xlsx", func(w io.Writer) report.Writer {
			return report.NewExcelWriter(w)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// exportTo writes one export file next to the configured output path.
func exportTo(cfg *config.Config, scanReport *model.ScanReport, ext string, newWriter func(w io.Writer) report.Writer) error {
	path := exportPath(cfg.OutputPath, scanReport.Domain, ext)
	f, err := createOutputFile(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read-only close after write

	if _, err := newWriter(f).Write(scanReport); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	fmt.Printf("Exported %s\n", path)
	return nil
}

// exportPath derives the export file path from the output base or the
// scanned domain.
func exportPath(base, domain, ext string) string {
	if base == "" {
		name := strings.ReplaceAll(domain, ".", "_")
		if name == "" {
			name = "bizscan"
		}
		return name + "." + ext
	}
	if existing := filepath.Ext(base); existing != "" {
		base = strings.TrimSuffix(base, existing)
	}
	return base + "." + ext
}

// createOutputFile creates the file and any missing parent directories.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-chosen path
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
