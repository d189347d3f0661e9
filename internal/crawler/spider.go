package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/bizscan/bizscan/internal/model"
)

// Spider defaults.
const (
	DefaultMaxPages       = 100
	DefaultWorkers        = 4
	DefaultQuickScanPages = 6
)

// PageHandler receives every successfully fetched page together with
// its parsed content and the path classification of its URL. Handlers
// run on the controller goroutine, never concurrently.
type PageHandler func(page *model.Page, content *PageContent, class Class)

// Result summarizes one crawl.
type Result struct {
	// SeedURL is the normalized starting URL.
	SeedURL string

	// Domain is the seed host the crawl was confined to.
	Domain string

	// PagesVisited counts pages fetched and parsed successfully.
	PagesVisited int

	// PagesFailed counts pages that failed after retries.
	PagesFailed int

	// Dispatched counts fetch attempts started, successes and
	// failures both.
	Dispatched int

	// Cancelled reports whether the crawl stopped early on context
	// cancellation. Counts and failures cover the work finished
	// before the stop.
	Cancelled bool

	// Failures records each failed page with its error classification.
	Failures []model.PageFailure
}

// visitedSet is a concurrency-safe set of URLs already queued.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]bool)}
}

// Visit marks the URL and reports whether this call was the first to
// do so. Check and insert are one critical section so two callers can
// never both claim a URL.
func (v *visitedSet) Visit(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[url] {
		return false
	}
	v.seen[url] = true
	return true
}

// wellKnownPaths are the pages a quick scan probes beyond the root.
// They mirror where small-business sites keep contact and service
// details.
var wellKnownPaths = []string{
	"/about",
	"/about-us",
	"/contact",
	"/contact-us",
	"/services",
	"/locations",
	"/reviews",
	"/testimonials",
}

// isWellKnownPath reports whether a path is one a quick scan probes.
func isWellKnownPath(path string) bool {
	path = normalizePath(path)
	for _, known := range wellKnownPaths {
		if path == known {
			return true
		}
	}
	return false
}

// Spider walks a single domain breadth-first, fetching with a bounded
// worker pool and handing each page to the configured handler. A quick
// scan skips the frontier entirely: it fetches the root, then probes
// only root links that match both a priority rule and a well-known
// path.
type Spider struct {
	fetcher  *Fetcher
	policy   *PathPolicy
	handler  PageHandler
	maxPages int
	workers  int
	quick    bool
	quickMax int
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages caps how many pages a full crawl dispatches.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithWorkers sets the number of concurrent fetch workers.
func WithWorkers(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithQuickScan switches the spider to quick-scan mode.
func WithQuickScan(enabled bool) SpiderOption {
	return func(s *Spider) {
		s.quick = enabled
	}
}

// WithQuickScanPages caps the total pages a quick scan fetches,
// the root included.
func WithQuickScanPages(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.quickMax = n
		}
	}
}

// WithCrawlDelay applies a politeness delay between fetches across all
// workers. Nil disables the limiter.
func WithCrawlDelay(limiter *rate.Limiter) SpiderOption {
	return func(s *Spider) {
		s.limiter = limiter
	}
}

// WithPathPolicy sets the include and exclude rules applied to every
// discovered link.
func WithPathPolicy(policy *PathPolicy) SpiderOption {
	return func(s *Spider) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithPageHandler sets the callback invoked for each fetched page.
func WithPageHandler(handler PageHandler) SpiderOption {
	return func(s *Spider) {
		s.handler = handler
	}
}

// WithSpiderLogger sets the logger used for crawl progress.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider around the given fetcher.
func NewSpider(fetcher *Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  fetcher,
		policy:   NewPathPolicy(nil, nil),
		maxPages: DefaultMaxPages,
		workers:  DefaultWorkers,
		quickMax: DefaultQuickScanPages,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// outcome is one finished fetch handed back to the controller.
type outcome struct {
	url  string
	page *model.Page
	err  error
}

// Run crawls starting from seedURL and returns the crawl summary.
// Cancelling the context stops the crawl; the result then carries
// whatever pages completed before the stop, with Cancelled set.
func (s *Spider) Run(ctx context.Context, seedURL string) (*Result, error) {
	seed, err := Normalize(seedURL, nil)
	if err != nil {
		return nil, err
	}

	result := &Result{SeedURL: seed, Domain: Domain(seed)}
	if s.quick {
		s.quickScan(ctx, seed, result)
	} else {
		s.fullCrawl(ctx, seed, result)
	}

	s.logger.Info("crawl finished",
		"domain", result.Domain,
		"visited", result.PagesVisited,
		"failed", result.PagesFailed,
		"cancelled", result.Cancelled,
	)
	return result, nil
}

// quickScan fetches the root, then probes the root links that match
// both a priority rule and a well-known path. Sequential, no link
// expansion beyond the root page.
func (s *Spider) quickScan(ctx context.Context, seed string, result *Result) {
	if !s.politeWait(ctx, result) {
		return
	}
	result.Dispatched++
	content := s.processPage(result, s.fetchOutcome(ctx, seed))
	if content == nil {
		return
	}

	for _, target := range s.quickTargets(content.Links, result.Domain) {
		if ctx.Err() != nil {
			result.Cancelled = true
			return
		}
		if !s.politeWait(ctx, result) {
			return
		}
		result.Dispatched++
		s.processPage(result, s.fetchOutcome(ctx, target))
	}
}

// quickTargets selects the quick-scan probe list from the root page's
// links, bounded by the quick-scan page budget.
func (s *Spider) quickTargets(links []string, domain string) []string {
	var targets []string
	seen := make(map[string]bool)
	for _, link := range links {
		if len(targets) >= s.quickMax-1 {
			break
		}
		if seen[link] || !SameDomain(link, domain) {
			continue
		}
		if s.policy.ClassifyURL(link) != ClassPriority {
			continue
		}
		u, err := url.Parse(link)
		if err != nil || !isWellKnownPath(u.Path) {
			continue
		}
		seen[link] = true
		targets = append(targets, link)
	}
	return targets
}

// politeWait blocks on the crawl-delay limiter when one is configured.
// Returns false when the wait was cut short by cancellation.
func (s *Spider) politeWait(ctx context.Context, result *Result) bool {
	if s.limiter == nil {
		return true
	}
	if err := s.limiter.Wait(ctx); err != nil {
		result.Cancelled = true
		return false
	}
	return true
}

// fullCrawl runs the breadth-first crawl with a worker pool. The
// controller goroutine owns the frontier and the visited set; workers
// only fetch. The loop exits once nothing is in flight and the frontier
// is either empty or past the page budget.
func (s *Spider) fullCrawl(ctx context.Context, seed string, result *Result) {
	tasks := make(chan string)
	outcomes := make(chan outcome)

	g, workerCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			for url := range tasks {
				if s.limiter != nil {
					if err := s.limiter.Wait(workerCtx); err != nil {
						outcomes <- outcome{url: url, err: err}
						continue
					}
				}
				outcomes <- s.fetchOutcome(workerCtx, url)
			}
			return nil
		})
	}

	visited := newVisitedSet()
	visited.Visit(seed)
	queue := []string{seed}
	inflight := 0

loop:
	for inflight > 0 || (len(queue) > 0 && result.Dispatched < s.maxPages) {
		// A nil channel parks the send case when there is nothing to
		// dispatch, leaving the select waiting on outcomes alone.
		var sendCh chan string
		var next string
		if len(queue) > 0 && result.Dispatched < s.maxPages {
			sendCh = tasks
			next = queue[0]
		}

		select {
		case <-ctx.Done():
			result.Cancelled = true
			break loop
		case sendCh <- next:
			queue = queue[1:]
			inflight++
			result.Dispatched++
		case out := <-outcomes:
			inflight--
			if content := s.processPage(result, out); content != nil {
				queue = s.enqueueLinks(queue, visited, content.Links, result.Domain)
			}
		}
	}

	close(tasks)
	go func() {
		g.Wait() //nolint:errcheck // workers always return nil
		close(outcomes)
	}()
	for range outcomes {
		// Drain fetches that were in flight when the loop exited so
		// no worker is left blocked on a send.
	}
}

// enqueueLinks appends newly discovered same-domain links to the
// frontier. Excluded paths are never enqueued, and the visited set
// guarantees each URL is dispatched at most once per crawl.
func (s *Spider) enqueueLinks(queue []string, visited *visitedSet, links []string, domain string) []string {
	for _, link := range links {
		if !SameDomain(link, domain) {
			continue
		}
		if s.policy.ClassifyURL(link) == ClassExcluded {
			continue
		}
		if visited.Visit(link) {
			queue = append(queue, link)
		}
	}
	return queue
}

// fetchOutcome performs one fetch and packages the result.
func (s *Spider) fetchOutcome(ctx context.Context, url string) outcome {
	page, err := s.fetcher.Fetch(ctx, url)
	return outcome{url: url, page: page, err: err}
}

// processPage records one fetch outcome and runs the page handler.
// Returns the parsed content on success, nil when the page failed.
func (s *Spider) processPage(result *Result, out outcome) *PageContent {
	if out.err != nil {
		s.recordFailure(result, out)
		return nil
	}

	content, err := ParsePage(out.page)
	if err != nil {
		result.PagesFailed++
		result.Failures = append(result.Failures, model.PageFailure{
			URL:     out.url,
			Kind:    "parse",
			Message: err.Error(),
		})
		return nil
	}

	result.PagesVisited++
	out.page.Title = content.Title
	s.logger.Debug("page fetched", "url", out.url, "links", len(content.Links))

	if s.handler != nil {
		s.handler(out.page, content, s.policy.ClassifyURL(out.url))
	}
	return content
}

// recordFailure appends one failure entry for a fetch error. Outcomes
// aborted by crawl cancellation are dropped, not counted against the
// site.
func (s *Spider) recordFailure(result *Result, out outcome) {
	if errors.Is(out.err, context.Canceled) || errors.Is(out.err, context.DeadlineExceeded) {
		s.logger.Debug("page dispatch cancelled", "url", out.url)
		return
	}
	result.PagesFailed++
	failure := model.PageFailure{URL: out.url, Message: out.err.Error()}
	var ferr *FetchError
	if errors.As(out.err, &ferr) {
		failure.Kind = ferr.Kind.String()
	} else {
		failure.Kind = "connection"
	}
	result.Failures = append(result.Failures, failure)
	s.logger.Debug("page failed", "url", out.url, "kind", failure.Kind)
}
