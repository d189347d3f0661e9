package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/bizscan/bizscan/internal/crawler"
	"github.com/bizscan/bizscan/internal/model"
)

// Fragment sources, recorded for diagnostics.
const (
	SourceSchema = "schema"
	SourceHTML   = "html"
	SourceMeta   = "meta"
)

// FieldValue is one extracted key/value pair.
type FieldValue struct {
	Name  string
	Value string
}

// Fragment is the ordered set of field values one extraction tier
// produced from a single page. Fragments live only for the duration of
// that page's merge.
type Fragment struct {
	Source string
	Fields []FieldValue
}

func (f *Fragment) add(name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	f.Fields = append(f.Fields, FieldValue{Name: name, Value: value})
}

// schema node types that describe the page rather than the business;
// their name property is never the business name.
var pageLevelTypes = map[string]bool{
	"WebPage":        true,
	"WebSite":        true,
	"BreadcrumbList": true,
	"ItemList":       true,
}

// Extractor pulls business fields out of parsed page content.
// It carries no per-page state and is safe for reuse across pages.
type Extractor struct {
	variables []string
	logger    *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithVariables adds custom schema properties to search for beyond the
// recognized vocabulary. Matches land in the record's Extra set.
func WithVariables(vars []string) ExtractorOption {
	return func(e *Extractor) {
		e.variables = vars
	}
}

// WithExtractorLogger sets the logger used for decode diagnostics.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract produces the ordered fragments for one page: schema fragments
// in document order, then custom variable matches, then the HTML
// fallback tier, then meta tags. The ordering is what makes structured
// data authoritative under the aggregator's fill-once rule.
func (e *Extractor) Extract(content *crawler.PageContent) []Fragment {
	var fragments []Fragment
	var nodes []map[string]any

	for _, block := range content.SchemaBlocks {
		decoded := e.decodeBlock(block)
		nodes = append(nodes, decoded...)
		for _, node := range decoded {
			frag := schemaFragment(node)
			if len(frag.Fields) > 0 {
				fragments = append(fragments, frag)
			}
		}
	}

	if len(e.variables) > 0 && len(nodes) > 0 {
		frag := variableFragment(nodes, e.variables)
		if len(frag.Fields) > 0 {
			fragments = append(fragments, frag)
		}
	}

	fallback := fallbackFragment(content)
	if len(fallback.Fields) > 0 {
		fragments = append(fragments, fallback)
	}

	meta := metaFragment(content)
	if len(meta.Fields) > 0 {
		fragments = append(fragments, meta)
	}

	return fragments
}

// decodeBlock parses one JSON-LD block into its schema nodes. Malformed
// JSON gets one repair pass before the block is skipped. Top-level
// arrays and nested @graph containers are flattened in document order.
func (e *Extractor) decodeBlock(raw string) []map[string]any {
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			e.logger.Debug("skipping unreadable schema block", "error", repairErr.Error())
			return nil
		}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			e.logger.Debug("skipping unreadable schema block", "error", err.Error())
			return nil
		}
	}

	var nodes []map[string]any
	work := []any{data}
	for len(work) > 0 {
		item := work[0]
		work = work[1:]
		switch v := item.(type) {
		case []any:
			work = append(work, v...)
		case map[string]any:
			nodes = append(nodes, v)
			if graph, ok := v["@graph"]; ok {
				work = append(work, graph)
			}
		}
	}
	return nodes
}

// schemaFragment reads the business vocabulary out of one schema node.
func schemaFragment(node map[string]any) Fragment {
	frag := Fragment{Source: SourceSchema}
	types := typeList(node)

	if !hasPageLevelType(types) {
		name := stringValue(node["name"])
		if name == "" {
			name = stringValue(node["legalName"])
		}
		frag.add(model.FieldName, name)
	}

	desc := stringValue(node["description"])
	if desc == "" {
		desc = stringValue(node["about"])
	}
	frag.add(model.FieldDescription, desc)

	if u := stringValue(node["url"]); strings.HasPrefix(u, "http") {
		frag.add(model.FieldWebsite, u)
	}

	frag.add(model.FieldLogo, logoURL(node["logo"]))

	if agg, ok := node["aggregateRating"].(map[string]any); ok {
		frag.add(model.FieldRating, formatRating(agg["ratingValue"]))
		count := formatCount(agg["reviewCount"])
		if count == "" {
			count = formatCount(agg["ratingCount"])
		}
		frag.add(model.FieldReviewCount, count)
	}

	frag.add(model.FieldAddress, parseAddress(node["address"]))
	frag.add(model.FieldAreaServed, parseAreas(node))

	hours := parseHours(node)
	frag.add(model.FieldOpeningHours, hours)
	if strings.Contains(hours, "24") {
		frag.add(model.FieldEmergency, "24/7")
	}

	for _, key := range []string{"telephone", "phone", "contactPhone", "phoneNumber"} {
		frag.add(model.FieldTelephone, stringValue(node[key]))
	}

	for _, cp := range nodeList(node["contactPoint"]) {
		frag.add(model.FieldTelephone, stringValue(cp["telephone"]))
		frag.add(model.FieldEmail, strings.ToLower(stringValue(cp["email"])))
	}
	frag.add(model.FieldEmail, strings.ToLower(stringValue(node["email"])))

	frag.add(model.FieldServices, parseServices(node, types))

	// Page-level types would pollute categories with "WebPage" etc.
	if !hasPageLevelType(types) {
		frag.add(model.FieldCategories, parseCategories(node, types))
	}

	languages := joinValues(node["inLanguage"])
	if languages == "" {
		languages = joinValues(node["availableLanguage"])
	}
	frag.add(model.FieldLanguages, languages)

	price := stringValue(node["priceRange"])
	if price == "" {
		price = stringValue(node["price"])
	}
	frag.add(model.FieldPriceRange, price)

	payment := joinValues(node["paymentAccepted"])
	if payment == "" {
		payment = joinValues(node["paymentMethod"])
	}
	frag.add(model.FieldPayment, payment)

	founded := stringValue(node["foundingDate"])
	if founded == "" {
		founded = stringValue(node["dateFounded"])
	}
	frag.add(model.FieldFoundingDate, founded)
	frag.add(model.FieldFounders, parseFounders(node["founder"]))

	frag.add(model.FieldSocialMedia, socialFromSameAs(node["sameAs"]))

	return frag
}

// typeList normalizes @type to a string slice.
func typeList(node map[string]any) []string {
	switch v := node["@type"].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func hasPageLevelType(types []string) bool {
	for _, t := range types {
		if pageLevelTypes[t] {
			return true
		}
	}
	return false
}

// stringValue renders a scalar schema value as a trimmed string.
// Numbers come out of encoding/json as float64; integral values are
// rendered without a decimal point.
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// logoURL extracts the URL from a logo value, which schema.org allows
// as either a bare string or an ImageObject.
func logoURL(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if s := stringValue(t["url"]); s != "" {
			return s
		}
		return stringValue(t["@id"])
	default:
		return ""
	}
}

// joinValues renders a scalar or list schema value as one
// comma-separated string.
func joinValues(v any) string {
	switch t := v.(type) {
	case []any:
		var parts []string
		for _, item := range t {
			if s := stringValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return stringValue(v)
	}
}

// nodeList normalizes a value that may be one object or a list of
// objects.
func nodeList(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		var out []map[string]any
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// formatRating normalizes a rating value to the "4.9/5" form.
func formatRating(v any) string {
	s := stringValue(v)
	if s == "" {
		return ""
	}
	s = strings.TrimSuffix(s, "/5")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64) + "/5"
}

// formatCount normalizes a review count to comma-grouped digits,
// "24176" and "24,176" both becoming "24,176".
func formatCount(v any) string {
	s := strings.ReplaceAll(stringValue(v), ",", "")
	if s == "" {
		return ""
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return ""
	}
	return groupDigits(n)
}

func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// parseAddress renders a postal address node or string as one line.
func parseAddress(v any) string {
	switch addr := v.(type) {
	case string:
		return strings.TrimSpace(addr)
	case map[string]any:
		var parts []string
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"} {
			if s := stringValue(addr[key]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// parseAreas collects the service area under any of its property names.
func parseAreas(node map[string]any) string {
	var areas []string
	for _, key := range []string{"areaServed", "serviceArea", "areasServed", "coverageArea"} {
		switch v := node[key].(type) {
		case string:
			areas = append(areas, strings.TrimSpace(v))
		case map[string]any:
			if name := areaName(v); name != "" {
				areas = append(areas, name)
			}
		case []any:
			for _, item := range v {
				switch a := item.(type) {
				case string:
					areas = append(areas, strings.TrimSpace(a))
				case map[string]any:
					if name := areaName(a); name != "" {
						areas = append(areas, name)
					}
				}
			}
		}
	}
	return strings.Join(areas, ", ")
}

func areaName(m map[string]any) string {
	for _, key := range []string{"name", "addressLocality", "@id"} {
		if s := stringValue(m[key]); s != "" {
			return s
		}
	}
	return ""
}

// parseHours renders opening hours. Anything mentioning 24-hour
// availability collapses to "24/7"; structured specifications become a
// sorted day-to-times listing.
func parseHours(node map[string]any) string {
	switch oh := node["openingHours"].(type) {
	case string:
		lower := strings.ToLower(oh)
		if strings.Contains(lower, "24") || strings.Contains(lower, "always") {
			return "24/7"
		}
		return strings.TrimSpace(oh)
	case []any:
		var parts []string
		for _, item := range oh {
			s := stringValue(item)
			if strings.Contains(strings.ToLower(s), "24") {
				return "24/7"
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}

	dayHours := make(map[string]string)
	for _, spec := range nodeList(node["openingHoursSpecification"]) {
		opens := stringValue(spec["opens"])
		closes := stringValue(spec["closes"])
		if opens == "" || closes == "" {
			continue
		}
		var days []string
		switch d := spec["dayOfWeek"].(type) {
		case string:
			days = []string{d}
		case []any:
			for _, item := range d {
				if s, ok := item.(string); ok {
					days = append(days, s)
				}
			}
		}
		for _, day := range days {
			day = strings.TrimPrefix(day, "https://schema.org/")
			day = strings.TrimPrefix(day, "http://schema.org/")
			dayHours[day] = opens + " - " + closes
		}
	}
	if len(dayHours) == 0 {
		return ""
	}

	days := make([]string, 0, len(dayHours))
	for day := range dayHours {
		days = append(days, day)
	}
	sort.Strings(days)
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, fmt.Sprintf("%s: %s", day, dayHours[day]))
	}
	return strings.Join(parts, ", ")
}

// parseServices collects service names from the offer catalog, direct
// offers, and Service-typed nodes.
func parseServices(node map[string]any, types []string) string {
	var services []string
	seen := make(map[string]bool)
	appendService := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		services = append(services, name)
	}

	if catalog, ok := node["hasOfferCatalog"].(map[string]any); ok {
		for _, item := range nodeList(catalog["itemListElement"]) {
			appendService(offerName(item))
		}
	}
	for _, offer := range nodeList(node["makesOffer"]) {
		appendService(offerName(offer))
	}
	for _, t := range types {
		if t == "Service" {
			appendService(stringValue(node["name"]))
			break
		}
	}

	return strings.Join(services, ", ")
}

// parseCategories collects business categories from the node's types
// and the category-like properties. Values given as schema.org URLs are
// reduced to their type name.
func parseCategories(node map[string]any, types []string) string {
	var categories []string
	seen := make(map[string]bool)
	appendCategory := func(name string) {
		name = strings.TrimPrefix(name, "https://schema.org/")
		name = strings.TrimPrefix(name, "http://schema.org/")
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		categories = append(categories, name)
	}

	for _, t := range types {
		appendCategory(t)
	}
	for _, key := range []string{"additionalType", "category", "industry", "serviceType"} {
		switch v := node[key].(type) {
		case []any:
			for _, item := range v {
				appendCategory(stringValue(item))
			}
		default:
			appendCategory(stringValue(v))
		}
	}

	return strings.Join(categories, ", ")
}

// parseFounders renders founder entries as "Name (Job Title)", deduped
// by name. The founder property may be one Person or a list.
func parseFounders(v any) string {
	var founders []string
	seen := make(map[string]bool)
	for _, person := range nodeList(v) {
		name := stringValue(person["name"])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if title := stringValue(person["jobTitle"]); title != "" {
			name += " (" + title + ")"
		}
		founders = append(founders, name)
	}
	return strings.Join(founders, ", ")
}

func offerName(offer map[string]any) string {
	if name := stringValue(offer["name"]); name != "" {
		return name
	}
	if item, ok := offer["itemOffered"].(map[string]any); ok {
		return stringValue(item["name"])
	}
	return ""
}

// socialPlatforms maps URL substrings to canonical platform names, in
// reporting order.
var socialPlatforms = []struct {
	needle   string
	platform string
}{
	{"facebook", "facebook"},
	{"fb.com", "facebook"},
	{"twitter", "twitter"},
	{"x.com", "twitter"},
	{"instagram", "instagram"},
	{"linkedin", "linkedin"},
	{"youtube", "youtube"},
	{"pinterest", "pinterest"},
	{"tiktok", "tiktok"},
	{"snapchat", "snapchat"},
}

// identifySocialPlatform returns the canonical platform name for a
// social profile URL, or "" when the URL is not a known platform.
func identifySocialPlatform(url string) string {
	lower := strings.ToLower(url)
	for _, p := range socialPlatforms {
		if strings.Contains(lower, p.needle) {
			return p.platform
		}
	}
	return ""
}

// socialFromSameAs renders sameAs profile links as one
// "platform: url" listing.
func socialFromSameAs(v any) string {
	var urls []string
	switch t := v.(type) {
	case string:
		urls = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				urls = append(urls, s)
			}
		}
	}
	return joinSocialLinks(urls)
}

// joinSocialLinks renders profile URLs as "platform: url" pairs, one
// per platform, first link per platform winning.
func joinSocialLinks(urls []string) string {
	byPlatform := make(map[string]string)
	for _, u := range urls {
		platform := identifySocialPlatform(u)
		if platform == "" {
			continue
		}
		if _, ok := byPlatform[platform]; !ok {
			byPlatform[platform] = u
		}
	}
	if len(byPlatform) == 0 {
		return ""
	}
	var parts []string
	for _, p := range socialPlatforms {
		if u, ok := byPlatform[p.platform]; ok {
			parts = append(parts, p.platform+": "+u)
			delete(byPlatform, p.platform)
		}
	}
	return strings.Join(parts, ", ")
}

// variableFragment searches decoded schema nodes for custom properties
// requested via configuration. Object and list values are re-encoded as
// compact JSON.
func variableFragment(nodes []map[string]any, variables []string) Fragment {
	frag := Fragment{Source: SourceSchema}
	wanted := make(map[string]bool, len(variables))
	for _, v := range variables {
		wanted[v] = true
	}

	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(t))
			for key := range t {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				if wanted[key] {
					frag.add(key, renderValue(t[key]))
				}
				walk(t[key])
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		}
	}
	for _, node := range nodes {
		walk(node)
	}
	return frag
}

func renderValue(v any) string {
	if s := stringValue(v); s != "" {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}
