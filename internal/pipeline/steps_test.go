package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bizscan/bizscan/internal/config"
	"github.com/bizscan/bizscan/internal/model"
)

// TestCrawlStep runs the whole crawl-and-extract engine against a
// local two-page site.
func TestCrawlStep(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"/": `<html>
<head>
<title>Acme Plumbing - Home</title>
<script type="application/ld+json">
{"@type": "LocalBusiness", "name": "Acme Plumbing", "aggregateRating": {"ratingValue": "4.9", "reviewCount": "24176"}}
</script>
</head>
<body><a href="/contact">Contact</a></body>
</html>`,
		"/contact": `<html>
<head><script type="application/ld+json">{"@type": "LocalBusiness", "telephone": "(214) 324-8811"}</script></head>
<body></body>
</html>`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	cfg := config.NewConfig()
	cfg.Rules = &config.Rules{PriorityPaths: []string{"/contact"}}

	step := NewCrawlStep(cfg,
		WithCrawlLogger(discardLogger()),
		WithCrawlHTTPClient(srv.Client()),
	)
	if step.Name() != "crawl" {
		t.Errorf("Name = %q", step.Name())
	}

	report := model.NewScanReport(srv.URL)
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if report.PagesVisited != 2 {
		t.Errorf("pages visited = %d, want 2", report.PagesVisited)
	}
	if report.Mode != model.ModeFullCrawl {
		t.Errorf("mode = %q, want full", report.Mode)
	}
	if report.Domain == "" {
		t.Error("domain not recorded")
	}

	name, ok := report.Business.Get(model.FieldName)
	if !ok || name.Value != "Acme Plumbing" {
		t.Errorf("name = %+v, ok=%v", name, ok)
	}
	rating, _ := report.Business.Get(model.FieldRating)
	if rating.Value != "4.9/5" {
		t.Errorf("rating = %q, want 4.9/5", rating.Value)
	}
	count, _ := report.Business.Get(model.FieldReviewCount)
	if count.Value != "24,176" {
		t.Errorf("review count = %q, want 24,176", count.Value)
	}
	phone, _ := report.Business.Get(model.FieldTelephone)
	if phone.Value != "(214) 324-8811" {
		t.Errorf("telephone = %q", phone.Value)
	}
	if !phone.Priority {
		t.Error("telephone came from a priority page")
	}
}

// TestCrawlStepQuickScan verifies the quick mode lands in the report.
func TestCrawlStepQuickScan(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><head><title>Acme</title></head><body></body></html>")
	}))
	defer srv.Close()

	cfg := config.NewConfig()
	cfg.QuickScan = true

	report := model.NewScanReport(srv.URL)
	step := NewCrawlStep(cfg,
		WithCrawlLogger(discardLogger()),
		WithCrawlHTTPClient(srv.Client()),
	)
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if report.Mode != model.ModeQuickScan {
		t.Errorf("mode = %q, want quick", report.Mode)
	}
	if report.PagesVisited != 1 {
		t.Errorf("pages visited = %d, want the root only", report.PagesVisited)
	}
}

// TestSummaryStep tests report finalization.
func TestSummaryStep(t *testing.T) {
	t.Parallel()

	report := model.NewScanReport("https://example.com/")
	step := NewSummaryStep(discardLogger())
	if step.Name() != "summary" {
		t.Errorf("Name = %q", step.Name())
	}

	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if report.Elapsed <= 0 {
		t.Error("elapsed time not recorded")
	}
}
