package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bizscan/bizscan/internal/model"
)

// PageContent is the parsed view of one fetched page: the pieces the
// extraction layer works from. Doc keeps the parsed tree so downstream
// heuristics can run their own selectors without reparsing the body.
type PageContent struct {
	// Title is the <title> text, trimmed.
	Title string

	// Links holds the normalized absolute same-or-cross-domain link
	// targets found on the page, in document order, deduplicated.
	Links []string

	// SchemaBlocks holds the raw text of every
	// <script type="application/ld+json"> block, in document order.
	SchemaBlocks []string

	// MetaTags maps meta name or property attributes to content values.
	// The first occurrence of each key wins.
	MetaTags map[string]string

	// BaseURL is the URL links were resolved against, normally the
	// page's final URL after redirects.
	BaseURL *url.URL

	// Doc is the parsed document.
	Doc *goquery.Document
}

// ParsePage parses a fetched page into its content view. Link targets
// are resolved against the final URL and normalized; targets that fail
// normalization (javascript:, mailto:, bare fragments) are dropped.
func ParsePage(page *model.Page) (*PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, err
	}

	baseRaw := page.FinalURL
	if baseRaw == "" {
		baseRaw = page.URL
	}
	base, err := url.Parse(baseRaw)
	if err != nil {
		return nil, ErrInvalidURL
	}

	content := &PageContent{
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		MetaTags: make(map[string]string),
		BaseURL:  base,
		Doc:      doc,
	}

	seen := make(map[string]bool)
	doc.Find("a[href], link[href], area[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		// Stylesheets and icons are not crawl targets.
		if goquery.NodeName(s) == "link" {
			if rel, _ := s.Attr("rel"); !strings.Contains(strings.ToLower(rel), "canonical") {
				return
			}
		}
		normalized, err := Normalize(href, base)
		if err != nil {
			return
		}
		if seen[normalized] {
			return
		}
		seen[normalized] = true
		content.Links = append(content.Links, normalized)
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		content.SchemaBlocks = append(content.SchemaBlocks, text)
	})

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("name")
		if !ok {
			key, ok = s.Attr("property")
		}
		if !ok || key == "" {
			return
		}
		value, ok := s.Attr("content")
		if !ok {
			return
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if _, dup := content.MetaTags[key]; dup {
			return
		}
		content.MetaTags[key] = strings.TrimSpace(value)
	})

	return content, nil
}
