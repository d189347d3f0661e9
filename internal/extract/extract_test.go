package extract

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bizscan/bizscan/internal/crawler"
	"github.com/bizscan/bizscan/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pageContent(t *testing.T, pageURL, html string) *crawler.PageContent {
	t.Helper()

	content, err := crawler.ParsePage(&model.Page{
		URL:      pageURL,
		FinalURL: pageURL,
		Body:     []byte(html),
	})
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	return content
}

// TestExtractLocalBusinessSchema tests the structured-data tier against
// a typical small-business page.
func TestExtractLocalBusinessSchema(t *testing.T) {
	t.Parallel()

	html := `<html>
<head>
<title>Acme Plumbing - Home</title>
<script type="application/ld+json">
{
	"@context": "https://schema.org",
	"@type": "Plumber",
	"name": "Acme Plumbing",
	"telephone": "(214) 324-8811",
	"url": "https://acmeplumbing.com",
	"priceRange": "$$",
	"aggregateRating": {
		"@type": "AggregateRating",
		"ratingValue": "4.9",
		"reviewCount": "24176"
	},
	"address": {
		"@type": "PostalAddress",
		"streetAddress": "123 Main St",
		"addressLocality": "Dallas",
		"addressRegion": "TX",
		"postalCode": "75201"
	},
	"openingHoursSpecification": [
		{"@type": "OpeningHoursSpecification", "dayOfWeek": "Monday", "opens": "08:00", "closes": "17:00"},
		{"@type": "OpeningHoursSpecification", "dayOfWeek": "Tuesday", "opens": "08:00", "closes": "17:00"}
	],
	"sameAs": ["https://facebook.com/acmeplumbing", "https://twitter.com/acmeplumbing"]
}
</script>
</head>
<body><p>Welcome</p></body>
</html>`

	content := pageContent(t, "https://acmeplumbing.com/", html)
	agg := NewAggregator(discardLogger())
	agg.Merge(NewExtractor(WithExtractorLogger(discardLogger())).Extract(content), "https://acmeplumbing.com/", true)

	info := agg.Info()
	tests := []struct {
		field string
		want  string
	}{
		{model.FieldName, "Acme Plumbing"},
		{model.FieldTelephone, "(214) 324-8811"},
		{model.FieldRating, "4.9/5"},
		{model.FieldReviewCount, "24,176"},
		{model.FieldWebsite, "https://acmeplumbing.com"},
		{model.FieldPriceRange, "$$"},
		{model.FieldAddress, "123 Main St, Dallas, TX, 75201"},
		{model.FieldOpeningHours, "Monday: 08:00 - 17:00, Tuesday: 08:00 - 17:00"},
		{model.FieldSocialMedia, "facebook: https://facebook.com/acmeplumbing, twitter: https://twitter.com/acmeplumbing"},
	}
	for _, tt := range tests {
		field, ok := info.Get(tt.field)
		if !ok {
			t.Errorf("field %q not extracted", tt.field)
			continue
		}
		if field.Value != tt.want {
			t.Errorf("field %q = %q, want %q", tt.field, field.Value, tt.want)
		}
		if field.Source != "https://acmeplumbing.com/" {
			t.Errorf("field %q attributed to %q", tt.field, field.Source)
		}
	}
}

// TestExtractRepairsMalformedJSON verifies that sloppy JSON-LD (a
// trailing comma here) still yields fields after a repair pass.
func TestExtractRepairsMalformedJSON(t *testing.T) {
	t.Parallel()

	html := `<html><head><script type="application/ld+json">
{"@type": "LocalBusiness", "name": "Acme Plumbing", "telephone": "(214) 324-8811",}
</script></head><body></body></html>`

	content := pageContent(t, "https://example.com/", html)
	fragments := NewExtractor(WithExtractorLogger(discardLogger())).Extract(content)

	found := false
	for _, frag := range fragments {
		if frag.Source != SourceSchema {
			continue
		}
		for _, fv := range frag.Fields {
			if fv.Name == model.FieldTelephone && fv.Value == "(214) 324-8811" {
				found = true
			}
		}
	}
	if !found {
		t.Error("telephone not recovered from malformed schema block")
	}
}

// TestExtractGraphFlattening verifies @graph containers are walked.
func TestExtractGraphFlattening(t *testing.T) {
	t.Parallel()

	html := `<html><head><script type="application/ld+json">
{
	"@context": "https://schema.org",
	"@graph": [
		{"@type": "WebSite", "name": "acmeplumbing.com"},
		{"@type": "LocalBusiness", "name": "Acme Plumbing", "email": "Info@AcmePlumbing.com"}
	]
}
</script></head><body></body></html>`

	content := pageContent(t, "https://example.com/", html)
	agg := NewAggregator(discardLogger())
	agg.Merge(NewExtractor(WithExtractorLogger(discardLogger())).Extract(content), "https://example.com/", false)

	name, ok := agg.Info().Get(model.FieldName)
	if !ok || name.Value != "Acme Plumbing" {
		// The WebSite node's name describes the site, not the business.
		t.Errorf("name = %+v, ok=%v, want the LocalBusiness name", name, ok)
	}
	email, ok := agg.Info().Get(model.FieldEmail)
	if !ok || email.Value != "info@acmeplumbing.com" {
		t.Errorf("email = %+v, want lower-cased", email)
	}
}

// TestExtractFallbackHeuristics tests the HTML tier on a page with no
// structured data at all.
func TestExtractFallbackHeuristics(t *testing.T) {
	t.Parallel()

	html := `<html>
<head>
	<title>Acme Plumbing - Home</title>
	<meta name="description" content="Dallas plumbing experts">
	<meta name="keywords" content="plumber, dallas">
</head>
<body>
	<header><img class="logo" src="/img/logo.png" alt="logo"></header>
	<p>Call us at (214) 324-8811 or email Info@AcmePlumbing.com.</p>
	<p>24/7 emergency service. License # TX-12345.</p>
	<a href="/quote">Get a Free Estimate</a>
	<a href="https://facebook.com/acmeplumbing">Facebook</a>
	<a href="/specials">Coupons and Specials</a>
	<div class="address-block">123 Main Street, Dallas, TX 75201</div>
</body>
</html>`

	content := pageContent(t, "https://acmeplumbing.com/", html)
	agg := NewAggregator(discardLogger())
	agg.Merge(NewExtractor(WithExtractorLogger(discardLogger())).Extract(content), "https://acmeplumbing.com/", false)

	info := agg.Info()
	tests := []struct {
		field string
		want  string
	}{
		{model.FieldName, "Acme Plumbing"},
		{model.FieldTelephone, "(214) 324-8811"},
		{model.FieldEmail, "info@acmeplumbing.com"},
		{model.FieldLogo, "https://acmeplumbing.com/img/logo.png"},
		{model.FieldQuoteURL, "https://acmeplumbing.com/quote"},
		{model.FieldSocialMedia, "facebook: https://facebook.com/acmeplumbing"},
		{model.FieldOffer, "available"},
		{model.FieldEmergency, "24/7"},
		{model.FieldOpeningHours, "24/7"},
		{model.FieldLicense, "TX-12345"},
		{model.FieldAddress, "123 Main Street, Dallas, TX 75201"},
		{model.FieldMetaDescription, "Dallas plumbing experts"},
		{model.FieldMetaKeywords, "plumber, dallas"},
	}
	for _, tt := range tests {
		field, ok := info.Get(tt.field)
		if !ok {
			t.Errorf("field %q not extracted", tt.field)
			continue
		}
		if field.Value != tt.want {
			t.Errorf("field %q = %q, want %q", tt.field, field.Value, tt.want)
		}
	}
}

// TestExtractMicrodataAddress tests the itemprop address markers on a
// page with neither an <address> element nor address-classed blocks.
func TestExtractMicrodataAddress(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<div itemscope itemtype="https://schema.org/LocalBusiness">
	<span itemprop="address">123 Main Street, Dallas, TX 75201</span>
</div>
</body></html>`

	content := pageContent(t, "https://example.com/", html)
	agg := NewAggregator(discardLogger())
	agg.Merge(NewExtractor(WithExtractorLogger(discardLogger())).Extract(content), "https://example.com/", false)

	got, ok := agg.Info().Get(model.FieldAddress)
	if !ok {
		t.Fatal("address not extracted")
	}
	if got.Value != "123 Main Street, Dallas, TX 75201" {
		t.Errorf("address = %q", got.Value)
	}
}

// TestExtractSchemaBeatsFallback verifies tier ordering within a page:
// a schema value wins over an HTML heuristic for the same field.
func TestExtractSchemaBeatsFallback(t *testing.T) {
	t.Parallel()

	html := `<html>
<head>
<title>Some Other Title</title>
<script type="application/ld+json">{"@type": "LocalBusiness", "name": "Acme Plumbing"}</script>
</head>
<body><p>Call (555) 000-1111</p></body>
</html>`

	content := pageContent(t, "https://example.com/", html)
	agg := NewAggregator(discardLogger())
	agg.Merge(NewExtractor(WithExtractorLogger(discardLogger())).Extract(content), "https://example.com/", false)

	name, _ := agg.Info().Get(model.FieldName)
	if name.Value != "Acme Plumbing" {
		t.Errorf("name = %q, want the schema value over the page title", name.Value)
	}
	// The fallback tier still contributes the fields schema left empty.
	phone, ok := agg.Info().Get(model.FieldTelephone)
	if !ok || phone.Value != "(555) 000-1111" {
		t.Errorf("telephone = %+v, want the fallback value", phone)
	}
}

// TestAggregatorFillOnceAcrossPages verifies that earlier pages own
// their fields for the rest of the crawl.
func TestAggregatorFillOnceAcrossPages(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(WithExtractorLogger(discardLogger()))
	agg := NewAggregator(discardLogger())

	root := pageContent(t, "https://example.com/", `<html><head>
<script type="application/ld+json">{"@type": "LocalBusiness", "telephone": "(214) 324-8811"}</script>
</head><body></body></html>`)
	agg.Merge(extractor.Extract(root), "https://example.com/", false)

	contact := pageContent(t, "https://example.com/contact", `<html><head>
<script type="application/ld+json">{"@type": "LocalBusiness", "telephone": "(555) 999-0000", "email": "help@example.com"}</script>
</head><body></body></html>`)
	agg.Merge(extractor.Extract(contact), "https://example.com/contact", true)

	phone, _ := agg.Info().Get(model.FieldTelephone)
	if phone.Value != "(214) 324-8811" {
		t.Errorf("telephone = %q, first page's value must be kept", phone.Value)
	}
	if phone.Source != "https://example.com/" {
		t.Errorf("telephone source = %q", phone.Source)
	}

	email, ok := agg.Info().Get(model.FieldEmail)
	if !ok || email.Source != "https://example.com/contact" {
		t.Errorf("email = %+v, ok=%v, want contribution from the later page", email, ok)
	}
}

// TestExtractCategoriesLanguagesFounders tests the organization detail
// properties of a structured-data node.
func TestExtractCategoriesLanguagesFounders(t *testing.T) {
	t.Parallel()

	html := `<html><head><script type="application/ld+json">
{
	"@context": "https://schema.org",
	"@type": ["Plumber", "LocalBusiness"],
	"name": "Acme Plumbing",
	"additionalType": "https://schema.org/HomeAndConstructionBusiness",
	"serviceType": ["Plumbing", "Drain Cleaning"],
	"inLanguage": ["en", "es"],
	"founder": [
		{"@type": "Person", "name": "Jane Smith", "jobTitle": "Owner"},
		{"@type": "Person", "name": "Bob Jones"},
		{"@type": "Person", "name": "Jane Smith", "jobTitle": "CEO"}
	]
}
</script></head><body></body></html>`

	content := pageContent(t, "https://acmeplumbing.com/", html)
	agg := NewAggregator(discardLogger())
	agg.Merge(NewExtractor(WithExtractorLogger(discardLogger())).Extract(content), "https://acmeplumbing.com/", true)

	info := agg.Info()
	tests := []struct {
		field string
		want  string
	}{
		{model.FieldCategories, "Plumber, LocalBusiness, HomeAndConstructionBusiness, Plumbing, Drain Cleaning"},
		{model.FieldLanguages, "en, es"},
		{model.FieldFounders, "Jane Smith (Owner), Bob Jones"},
	}
	for _, tt := range tests {
		got, ok := info.Get(tt.field)
		if !ok {
			t.Errorf("%s: not set", tt.field)
			continue
		}
		if got.Value != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, got.Value, tt.want)
		}
	}
}

// TestExtractCategoriesSkipsPageTypes tests that a page-level node does
// not lock the categories field with its own type.
func TestExtractCategoriesSkipsPageTypes(t *testing.T) {
	t.Parallel()

	html := `<html><head><script type="application/ld+json">
{"@type": "WebPage", "name": "Home", "inLanguage": "en"}
</script></head><body></body></html>`

	content := pageContent(t, "https://example.com/", html)
	agg := NewAggregator(discardLogger())
	agg.Merge(NewExtractor(WithExtractorLogger(discardLogger())).Extract(content), "https://example.com/", false)

	if f, ok := agg.Info().Get(model.FieldCategories); ok {
		t.Errorf("categories = %q, want unset", f.Value)
	}
	if f, ok := agg.Info().Get(model.FieldLanguages); !ok || f.Value != "en" {
		t.Errorf("languages = %v %v, want \"en\"", f, ok)
	}
}

// TestExtractVariables tests custom schema properties requested via
// configuration.
func TestExtractVariables(t *testing.T) {
	t.Parallel()

	html := `<html><head><script type="application/ld+json">
{"@type": "LocalBusiness", "name": "Acme", "slogan": "We fix pipes"}
</script></head><body></body></html>`

	content := pageContent(t, "https://example.com/", html)
	extractor := NewExtractor(
		WithVariables([]string{"slogan"}),
		WithExtractorLogger(discardLogger()),
	)
	agg := NewAggregator(discardLogger())
	agg.Merge(extractor.Extract(content), "https://example.com/", false)

	slogan, ok := agg.Info().Get("slogan")
	if !ok || slogan.Value != "We fix pipes" {
		t.Errorf("slogan = %+v, ok=%v", slogan, ok)
	}
}

// TestFormatRating tests rating normalization.
func TestFormatRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{"4.9", "4.9/5"},
		{"4.9/5", "4.9/5"},
		{float64(5), "5/5"},
		{"4.70", "4.7/5"},
		{"not a number", ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := formatRating(tt.in); got != tt.want {
			t.Errorf("formatRating(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestFormatCount tests review-count normalization.
func TestFormatCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{"24176", "24,176"},
		{"24,176", "24,176"},
		{float64(1234567), "1,234,567"},
		{"100", "100"},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := formatCount(tt.in); got != tt.want {
			t.Errorf("formatCount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestParseHours tests the hour formats seen in the wild.
func TestParseHours(t *testing.T) {
	t.Parallel()

	t.Run("24 hour mentions collapse", func(t *testing.T) {
		t.Parallel()

		got := parseHours(map[string]any{"openingHours": "Mo-Su 24 hours"})
		if got != "24/7" {
			t.Errorf("got %q, want 24/7", got)
		}
	})

	t.Run("plain string kept", func(t *testing.T) {
		t.Parallel()

		got := parseHours(map[string]any{"openingHours": "Mo-Fr 08:00-17:00"})
		if got != "Mo-Fr 08:00-17:00" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("schema day urls stripped", func(t *testing.T) {
		t.Parallel()

		got := parseHours(map[string]any{
			"openingHoursSpecification": []any{
				map[string]any{
					"dayOfWeek": "https://schema.org/Saturday",
					"opens":     "09:00",
					"closes":    "13:00",
				},
			},
		})
		if got != "Saturday: 09:00 - 13:00" {
			t.Errorf("got %q", got)
		}
	})
}

// TestParseServices tests service collection from offers.
func TestParseServices(t *testing.T) {
	t.Parallel()

	node := map[string]any{
		"hasOfferCatalog": map[string]any{
			"itemListElement": []any{
				map[string]any{"itemOffered": map[string]any{"name": "Drain Cleaning"}},
				map[string]any{"name": "Water Heaters"},
				map[string]any{"itemOffered": map[string]any{"name": "Drain Cleaning"}},
			},
		},
	}
	got := parseServices(node, nil)
	if got != "Drain Cleaning, Water Heaters" {
		t.Errorf("got %q", got)
	}
}

// TestJoinSocialLinks tests platform ordering and dedup.
func TestJoinSocialLinks(t *testing.T) {
	t.Parallel()

	got := joinSocialLinks([]string{
		"https://instagram.com/acme",
		"https://facebook.com/acme",
		"https://facebook.com/acme-duplicate",
		"https://example.com/not-social",
	})
	want := "facebook: https://facebook.com/acme, instagram: https://instagram.com/acme"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestNameFromTitle tests title cleanup.
func TestNameFromTitle(t *testing.T) {
	t.Parallel()

	if got := nameFromTitle("Acme Plumbing - Home"); got != "Acme Plumbing" {
		t.Errorf("got %q", got)
	}
	long := strings.Repeat("x", 150)
	if got := nameFromTitle(long); len(got) != 100 {
		t.Errorf("len = %d, want capped at 100", len(got))
	}
	multibyte := strings.Repeat("Ü", 150)
	got := nameFromTitle(multibyte)
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("rune count = %d, want capped at 100", n)
	}
}
