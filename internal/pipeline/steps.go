package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bizscan/bizscan/internal/config"
	"github.com/bizscan/bizscan/internal/crawler"
	"github.com/bizscan/bizscan/internal/extract"
	"github.com/bizscan/bizscan/internal/model"
)

// CrawlStep runs the crawl-and-extract engine: it wires the fetcher,
// path policy, spider, extractor and aggregator together and fills the
// report with the crawl outcome and the aggregated business record.
type CrawlStep struct {
	cfg    *config.Config
	logger *slog.Logger

	// client overrides the HTTP client used by the fetcher.
	// Tests point it at a local server.
	client *http.Client
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// WithCrawlHTTPClient sets a custom HTTP client for the fetcher.
func WithCrawlHTTPClient(client *http.Client) CrawlStepOption {
	return func(s *CrawlStep) {
		s.client = client
	}
}

// NewCrawlStep creates the crawl step from the scan configuration.
func NewCrawlStep(cfg *config.Config, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do crawls the target and aggregates business information into the
// report. A cancelled crawl is not an error: the report keeps whatever
// was gathered and is marked cancelled.
func (s *CrawlStep) Do(ctx context.Context, report *model.ScanReport) error {
	client := s.client
	if client == nil {
		client = &http.Client{Timeout: s.cfg.Timeout}
	}

	fetcher := crawler.NewFetcher(
		crawler.WithHTTPClient(client),
		crawler.WithUserAgent(config.DefaultUserAgent),
		crawler.WithMaxBodySize(config.DefaultMaxBodySize),
		crawler.WithRetryPolicy(crawler.RetryPolicy{
			MaxAttempts: s.cfg.MaxAttempts,
			BaseDelay:   s.cfg.BackoffBase,
			Jitter:      true,
		}),
		crawler.WithFetcherLogger(s.logger),
	)

	rules := s.cfg.Rules
	if rules == nil {
		rules = &config.Rules{}
	}
	policy := crawler.NewPathPolicy(rules.ExcludePaths, rules.PriorityPaths)

	extractor := extract.NewExtractor(
		extract.WithVariables(rules.Variables),
		extract.WithExtractorLogger(s.logger),
	)
	aggregator := extract.NewAggregator(s.logger)

	handler := func(page *model.Page, content *crawler.PageContent, class crawler.Class) {
		fragments := extractor.Extract(content)
		aggregator.Merge(fragments, page.URL, class == crawler.ClassPriority)
	}

	opts := []crawler.SpiderOption{
		crawler.WithMaxPages(s.cfg.MaxPages),
		crawler.WithWorkers(s.cfg.Workers),
		crawler.WithPathPolicy(policy),
		crawler.WithPageHandler(handler),
		crawler.WithSpiderLogger(s.logger),
	}
	if s.cfg.QuickScan {
		opts = append(opts,
			crawler.WithQuickScan(true),
			crawler.WithQuickScanPages(s.cfg.QuickScanPages),
		)
	}
	if s.cfg.CrawlDelay > 0 {
		opts = append(opts, crawler.WithCrawlDelay(
			rate.NewLimiter(rate.Every(s.cfg.CrawlDelay), 1),
		))
	}

	spider := crawler.NewSpider(fetcher, opts...)
	result, err := spider.Run(ctx, report.SeedURL)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", report.SeedURL, err)
	}

	report.SeedURL = result.SeedURL
	report.Domain = result.Domain
	report.Mode = model.ModeFullCrawl
	if s.cfg.QuickScan {
		report.Mode = model.ModeQuickScan
	}
	report.PagesVisited = result.PagesVisited
	report.PagesFailed = result.PagesFailed
	report.Cancelled = result.Cancelled
	report.Failures = result.Failures
	report.Business = aggregator.Info()

	return nil
}

// SummaryStep finalizes the report and logs the scan outcome.
type SummaryStep struct {
	logger *slog.Logger
}

// NewSummaryStep creates the summary step.
func NewSummaryStep(logger *slog.Logger) *SummaryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryStep{logger: logger}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do records the elapsed time and logs whether the record came out
// complete.
func (s *SummaryStep) Do(_ context.Context, report *model.ScanReport) error {
	report.Elapsed = time.Since(report.StartedAt)

	fields := 0
	complete := false
	if report.Business != nil {
		fields = len(report.Business.FieldNames())
		complete = report.Business.Complete()
	}

	s.logger.Info("scan finished",
		"target", report.SeedURL,
		"mode", report.Mode,
		"pages_visited", report.PagesVisited,
		"pages_failed", report.PagesFailed,
		"fields_found", fields,
		"complete", complete,
		"elapsed", report.Elapsed,
	)

	return nil
}
