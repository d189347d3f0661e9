package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/bizscan/bizscan/internal/model"
)

// Fetcher defaults.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 1 * time.Second
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
	DefaultUserAgent   = "bizscan/1.0 (+https://github.com/bizscan/bizscan)"
)

// ErrorKind classifies a fetch failure.
type ErrorKind int

const (
	// KindInvalidURL means the URL could not be requested at all.
	KindInvalidURL ErrorKind = iota

	// KindTimeout means the request or connection timed out.
	KindTimeout

	// KindConnection means the connection failed (DNS, refused, reset).
	KindConnection

	// KindHTTP means the server answered with an error status code.
	KindHTTP
)

// String returns the kind name used in failure reports.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// FetchError is the failure variant of a fetch: the error taxonomy the
// spider records in the failure report.
type FetchError struct {
	// URL is the requested URL.
	URL string

	// Kind is the failure classification.
	Kind ErrorKind

	// StatusCode is the HTTP status for KindHTTP failures, 0 otherwise.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error { return e.Err }

// retryableStatus is the set of HTTP statuses worth retrying.
// Everything else (404 included) is surfaced immediately.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// Retryable reports whether the failure is transient enough to retry.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindConnection:
		return true
	case KindHTTP:
		return retryableStatus[e.StatusCode]
	default:
		return false
	}
}

// RetryPolicy controls retry-with-backoff behavior.
type RetryPolicy struct {
	// MaxAttempts is the total number of requests for one URL,
	// the first attempt included.
	MaxAttempts int

	// BaseDelay is the backoff base; the delay before retry n is
	// BaseDelay * 2^n.
	BaseDelay time.Duration

	// Jitter adds up to 50% random spread on top of each delay so
	// concurrent workers retrying the same host do not align.
	Jitter bool

	// Sleep waits for the given duration or until the context is done.
	// Nil means a real timer. The wait is per-task and never blocks
	// other workers.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the policy used when none is configured:
// three attempts with a jittered 1s/2s exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBackoffBase,
		Jitter:      true,
	}
}

// delay computes the backoff before retry number n (0-based).
func (p RetryPolicy) delay(n int) time.Duration {
	d := p.BaseDelay << uint(n)
	if d <= 0 {
		return 0
	}
	if p.Jitter {
		d += rand.N(d/2 + 1)
	}
	return d
}

// wait sleeps for the backoff before retry n, honoring cancellation.
func (p RetryPolicy) wait(ctx context.Context, n int) error {
	d := p.delay(n)
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fetcher retrieves pages over HTTP with a bounded timeout and the
// configured retry policy. It has no mutable state beyond its read-only
// configuration and is safe for concurrent use by multiple workers.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	retry       RetryPolicy
	logger      *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets a custom HTTP client. The client's timeout bounds
// every request; tests pass a client wired to an httptest server.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps how many response bytes are read per page.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) FetcherOption {
	return func(f *Fetcher) {
		f.retry = p
	}
}

// WithFetcherLogger sets the logger used for retry diagnostics.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher with the default timeout, body limit,
// user agent and retry policy.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		retry:       DefaultRetryPolicy(),
	}

	for _, opt := range opts {
		opt(f)
	}

	// At least one attempt always happens, so Fetch returns either a
	// page or a *FetchError even under a misconfigured policy.
	if f.retry.MaxAttempts < 1 {
		f.retry.MaxAttempts = 1
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// Fetch retrieves one page, retrying transient failures per the policy.
// It returns the page on success or a *FetchError after the last attempt.
// Non-retryable failures (a 404, a malformed URL) surface immediately
// after a single request.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &FetchError{URL: rawURL, Kind: KindInvalidURL, Err: errors.Join(err, ErrInvalidURL)}
	}

	var last *FetchError
	for attempt := 0; attempt < f.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := f.retry.wait(ctx, attempt-1); err != nil {
				return nil, last
			}
		}

		page, ferr := f.fetchOnce(ctx, rawURL)
		if ferr == nil {
			return page, nil
		}
		last = ferr
		if !ferr.Retryable() || ctx.Err() != nil {
			return nil, ferr
		}

		f.logger.Debug("retrying fetch",
			"url", rawURL,
			"attempt", attempt+1,
			"maxAttempts", f.retry.MaxAttempts,
			"error", ferr.Error(),
		)
	}

	return nil, last
}

// fetchOnce performs a single GET and classifies any failure.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*model.Page, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: KindInvalidURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: classifyNetError(err), Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read side already checked

	if resp.StatusCode >= http.StatusBadRequest {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024)) //nolint:errcheck
		return nil, &FetchError{URL: rawURL, Kind: KindHTTP, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: classifyNetError(err), Err: err}
	}

	return &model.Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// classifyNetError separates timeouts from other transport failures.
func classifyNetError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return KindTimeout
	}
	return KindConnection
}
