package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bizscan/bizscan/internal/crawler"
	"github.com/bizscan/bizscan/internal/model"
)

// Phone formats tried in order, US formats before the looser ones.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}`),
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
	regexp.MustCompile(`\b\d{10}\b`),
}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

var licensePattern = regexp.MustCompile(`(?i)(?:license|lic)\s*[:#]?\s*([A-Z0-9][A-Z0-9-]+)`)

var whitespacePattern = regexp.MustCompile(`\s+`)

var addressClassPattern = regexp.MustCompile(`(?i)address|location`)

// Title suffixes stripped when deriving a business name from <title>.
var titleSuffixes = []string{
	" - Home",
	" | Home",
	" - Official Site",
	" | Official Site",
}

var logoSelectors = []string{
	`img[alt*="logo" i]`,
	`img.logo`,
	`.logo img`,
	`header img`,
}

var quoteKeywords = []string{
	"quote",
	"free estimate",
	"get estimate",
	"request quote",
	"request a quote",
	"get quote",
	"estimate",
}

var offerKeywords = []string{
	"coupon",
	"offer",
	"discount",
	"special",
	"deal",
	"promo",
	"promotion",
	"sale",
	"save",
}

var emergencyKeywords = []string{
	"24/7",
	"24 hour",
	"24 hours",
	"emergency service",
	"emergency repair",
	"available 24",
	"always available",
	"round the clock",
	"emergency",
}

var licenseKeywords = []string{
	"licensed",
	"license #",
	"license:",
	"lic #",
	"lic.",
	"contractor license",
	"state license",
	"bonded",
	"insured",
	"certified",
	"certification",
}

// fallbackFragment scans the rendered HTML for fields. It emits
// everything it finds; the aggregator's fill-once rule makes these
// values effective only where the schema tier produced nothing.
func fallbackFragment(content *crawler.PageContent) Fragment {
	frag := Fragment{Source: SourceHTML}
	doc := content.Doc
	text := whitespacePattern.ReplaceAllString(doc.Text(), " ")
	textLower := strings.ToLower(text)

	for _, pattern := range phonePatterns {
		if match := pattern.FindString(text); match != "" {
			frag.add(model.FieldTelephone, strings.TrimSpace(match))
			break
		}
	}

	if match := emailPattern.FindString(text); match != "" {
		frag.add(model.FieldEmail, strings.ToLower(match))
	}

	frag.add(model.FieldName, nameFromTitle(content.Title))
	frag.add(model.FieldLogo, logoFromDoc(content))
	frag.add(model.FieldQuoteURL, quoteLink(content))
	frag.add(model.FieldSocialMedia, socialLinks(doc))

	if linkTextContains(doc, offerKeywords) {
		frag.add(model.FieldOffer, "available")
	}

	for _, kw := range emergencyKeywords {
		if strings.Contains(textLower, kw) {
			frag.add(model.FieldEmergency, "24/7")
			if strings.Contains(kw, "24") {
				frag.add(model.FieldOpeningHours, "24/7")
			}
			break
		}
	}

	for _, kw := range licenseKeywords {
		if !strings.Contains(textLower, kw) {
			continue
		}
		if m := licensePattern.FindStringSubmatch(text); m != nil {
			frag.add(model.FieldLicense, m[1])
		} else {
			frag.add(model.FieldLicense, "licensed")
		}
		break
	}

	frag.add(model.FieldAddress, addressFromDoc(doc))

	return frag
}

// nameFromTitle strips boilerplate suffixes off a page title and caps
// its length.
func nameFromTitle(title string) string {
	for _, suffix := range titleSuffixes {
		title = strings.ReplaceAll(title, suffix, "")
	}
	title = strings.TrimSpace(title)
	if runes := []rune(title); len(runes) > 100 {
		title = string(runes[:100])
	}
	return title
}

// logoFromDoc probes the common logo image locations.
func logoFromDoc(content *crawler.PageContent) string {
	for _, selector := range logoSelectors {
		img := content.Doc.Find(selector).First()
		src, ok := img.Attr("src")
		if !ok || src == "" {
			continue
		}
		if absolute, err := crawler.Normalize(src, content.BaseURL); err == nil {
			return absolute
		}
	}
	return ""
}

// quoteLink finds the most quote-like link on the page, falling back to
// any contact link.
func quoteLink(content *crawler.PageContent) string {
	var contact string
	var quote string
	content.Doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		linkText := strings.ToLower(strings.TrimSpace(s.Text()))
		absolute, err := crawler.Normalize(href, content.BaseURL)
		if err != nil {
			return true
		}
		for _, kw := range quoteKeywords {
			if strings.Contains(linkText, kw) {
				quote = absolute
				return false
			}
		}
		if contact == "" && strings.Contains(linkText, "contact") {
			contact = absolute
		}
		return true
	})
	if quote != "" {
		return quote
	}
	return contact
}

// socialLinks collects social profile links from page anchors.
func socialLinks(doc *goquery.Document) string {
	var urls []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			urls = append(urls, href)
		}
	})
	return joinSocialLinks(urls)
}

// linkTextContains reports whether any anchor text contains one of the
// keywords.
func linkTextContains(doc *goquery.Document, keywords []string) bool {
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		linkText := strings.ToLower(strings.TrimSpace(s.Text()))
		for _, kw := range keywords {
			if strings.Contains(linkText, kw) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// addressFromDoc reads <address> elements, microdata itemprop markers,
// and address-classed blocks. Very short matches are ignored as
// navigation noise.
func addressFromDoc(doc *goquery.Document) string {
	result := ""
	doc.Find(`address, [itemprop="address"], [itemprop="streetAddress"], div[class]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) != "address" {
			prop, _ := s.Attr("itemprop")
			if prop != "address" && prop != "streetAddress" {
				class, _ := s.Attr("class")
				if goquery.NodeName(s) != "div" || !addressClassPattern.MatchString(class) {
					return true
				}
			}
		}
		text := strings.TrimSpace(whitespacePattern.ReplaceAllString(s.Text(), " "))
		if len(text) > 10 {
			result = text
			return false
		}
		return true
	})
	return result
}

// metaFragment reads the page description and keywords out of meta
// tags, preferring the plain description over Open Graph.
func metaFragment(content *crawler.PageContent) Fragment {
	frag := Fragment{Source: SourceMeta}

	desc := content.MetaTags["description"]
	if desc == "" {
		desc = content.MetaTags["og:description"]
	}
	frag.add(model.FieldMetaDescription, desc)
	frag.add(model.FieldMetaKeywords, content.MetaTags["keywords"])

	return frag
}
