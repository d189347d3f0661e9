package model

import "strings"

// Canonical field names of the recognized business vocabulary.
// These are the keys of the flat field mapping exposed to report writers
// and the names matched against structured-data properties.
const (
	FieldName            = "name"
	FieldDescription     = "description"
	FieldWebsite         = "website"
	FieldLogo            = "logo"
	FieldRating          = "rating"
	FieldReviewCount     = "reviewCount"
	FieldAddress         = "address"
	FieldAreaServed      = "areaServed"
	FieldOpeningHours    = "openingHours"
	FieldTelephone       = "telephone"
	FieldEmail           = "email"
	FieldServices        = "services"
	FieldCategories      = "categories"
	FieldLanguages       = "languages"
	FieldPriceRange      = "priceRange"
	FieldPayment         = "paymentAccepted"
	FieldLicense         = "license"
	FieldEmergency       = "emergencyService"
	FieldOffer           = "offer"
	FieldQuoteURL        = "quoteURL"
	FieldFoundingDate    = "foundingDate"
	FieldFounders        = "founders"
	FieldSocialMedia     = "socialMedia"
	FieldMetaDescription = "metaDescription"
	FieldMetaKeywords    = "metaKeywords"
)

// RecognizedFields returns the canonical vocabulary in report order.
func RecognizedFields() []string {
	return []string{
		FieldName, FieldDescription, FieldWebsite, FieldLogo,
		FieldRating, FieldReviewCount, FieldAddress, FieldAreaServed,
		FieldOpeningHours, FieldTelephone, FieldEmail, FieldServices,
		FieldCategories, FieldLanguages, FieldPriceRange, FieldPayment,
		FieldLicense, FieldEmergency, FieldOffer, FieldQuoteURL,
		FieldFoundingDate, FieldFounders, FieldSocialMedia,
		FieldMetaDescription, FieldMetaKeywords,
	}
}

// Field is one populated slot of the business record: the stored value,
// the page it came from, and whether that page was priority-classified.
type Field struct {
	// Value is the normalized textual value (e.g. "4.9/5" for a rating).
	Value string `json:"value"`

	// Source is the URL of the page that contributed the value.
	Source string `json:"source"`

	// Priority reports whether the source page matched a priority rule.
	Priority bool `json:"priority,omitempty"`
}

// BusinessInfo is the aggregate business record built up over a crawl.
// Each slot is nil until the first page provides a value; once set, a slot
// is never overwritten (fill-once semantics). Properties requested via
// configuration that fall outside the recognized vocabulary land in Extra.
//
// BusinessInfo is not safe for concurrent mutation; a single owner
// (the crawl controller's result loop) performs all writes.
type BusinessInfo struct {
	Name            *Field `json:"name,omitempty"`
	Description     *Field `json:"description,omitempty"`
	Website         *Field `json:"website,omitempty"`
	Logo            *Field `json:"logo,omitempty"`
	Rating          *Field `json:"rating,omitempty"`
	ReviewCount     *Field `json:"review_count,omitempty"`
	Address         *Field `json:"address,omitempty"`
	AreaServed      *Field `json:"area_served,omitempty"`
	OpeningHours    *Field `json:"opening_hours,omitempty"`
	Telephone       *Field `json:"telephone,omitempty"`
	Email           *Field `json:"email,omitempty"`
	Services        *Field `json:"services,omitempty"`
	Categories      *Field `json:"categories,omitempty"`
	Languages       *Field `json:"languages,omitempty"`
	PriceRange      *Field `json:"price_range,omitempty"`
	Payment         *Field `json:"payment_accepted,omitempty"`
	License         *Field `json:"license,omitempty"`
	Emergency       *Field `json:"emergency_service,omitempty"`
	Offer           *Field `json:"offer,omitempty"`
	QuoteURL        *Field `json:"quote_url,omitempty"`
	FoundingDate    *Field `json:"founding_date,omitempty"`
	Founders        *Field `json:"founders,omitempty"`
	SocialMedia     *Field `json:"social_media,omitempty"`
	MetaDescription *Field `json:"meta_description,omitempty"`
	MetaKeywords    *Field `json:"meta_keywords,omitempty"`

	// Extra holds configured properties outside the recognized vocabulary.
	Extra map[string]Field `json:"extra,omitempty"`

	// extraOrder preserves first-seen order of Extra keys for reporting.
	extraOrder []string
}

// NewBusinessInfo returns an empty business record.
func NewBusinessInfo() *BusinessInfo {
	return &BusinessInfo{}
}

// slot maps a canonical field name to its struct slot.
// Returns nil for names outside the recognized vocabulary.
func (b *BusinessInfo) slot(name string) **Field {
	switch name {
	case FieldName:
		return &b.Name
	case FieldDescription:
		return &b.Description
	case FieldWebsite:
		return &b.Website
	case FieldLogo:
		return &b.Logo
	case FieldRating:
		return &b.Rating
	case FieldReviewCount:
		return &b.ReviewCount
	case FieldAddress:
		return &b.Address
	case FieldAreaServed:
		return &b.AreaServed
	case FieldOpeningHours:
		return &b.OpeningHours
	case FieldTelephone:
		return &b.Telephone
	case FieldEmail:
		return &b.Email
	case FieldServices:
		return &b.Services
	case FieldCategories:
		return &b.Categories
	case FieldLanguages:
		return &b.Languages
	case FieldPriceRange:
		return &b.PriceRange
	case FieldPayment:
		return &b.Payment
	case FieldLicense:
		return &b.License
	case FieldEmergency:
		return &b.Emergency
	case FieldOffer:
		return &b.Offer
	case FieldQuoteURL:
		return &b.QuoteURL
	case FieldFoundingDate:
		return &b.FoundingDate
	case FieldFounders:
		return &b.Founders
	case FieldSocialMedia:
		return &b.SocialMedia
	case FieldMetaKeywords:
		return &b.MetaKeywords
	case FieldMetaDescription:
		return &b.MetaDescription
	default:
		return nil
	}
}

// Set stores a value for the named field if the field is still unset.
// Empty values are ignored. It reports whether the value was stored.
//
// This is the whole of the aggregate's fill-once invariant: once a field
// has a value, no later call changes it regardless of content.
func (b *BusinessInfo) Set(name, value, source string, priority bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	f := Field{Value: value, Source: source, Priority: priority}

	if s := b.slot(name); s != nil {
		if *s != nil {
			return false
		}
		*s = &f
		return true
	}

	// Unrecognized property requested via configuration.
	if b.Extra == nil {
		b.Extra = make(map[string]Field)
	}
	if _, ok := b.Extra[name]; ok {
		return false
	}
	b.Extra[name] = f
	b.extraOrder = append(b.extraOrder, name)
	return true
}

// Get returns the field stored under name, if any.
func (b *BusinessInfo) Get(name string) (Field, bool) {
	if s := b.slot(name); s != nil {
		if *s == nil {
			return Field{}, false
		}
		return **s, true
	}
	f, ok := b.Extra[name]
	return f, ok
}

// FieldNames returns the names of all populated fields, recognized
// vocabulary first in canonical order, then extras in first-seen order.
func (b *BusinessInfo) FieldNames() []string {
	names := make([]string, 0)
	for _, name := range RecognizedFields() {
		if s := b.slot(name); s != nil && *s != nil {
			names = append(names, name)
		}
	}
	names = append(names, b.extraOrder...)
	return names
}

// Fields returns the flat field→value mapping exposed to exporters.
// Absent fields are omitted, never present as empty strings.
func (b *BusinessInfo) Fields() map[string]string {
	out := make(map[string]string)
	for _, name := range b.FieldNames() {
		f, _ := b.Get(name)
		out[name] = f.Value
	}
	return out
}

// Sources returns the field→source-page mapping for populated fields.
func (b *BusinessInfo) Sources() map[string]string {
	out := make(map[string]string)
	for _, name := range b.FieldNames() {
		f, _ := b.Get(name)
		out[name] = f.Source
	}
	return out
}

// Complete reports whether every required field has been found.
// The required set matches what a business listing minimally needs:
// name, phone, address, services and hours.
func (b *BusinessInfo) Complete() bool {
	return b.Name != nil &&
		b.Telephone != nil &&
		b.Address != nil &&
		b.Services != nil &&
		b.OpeningHours != nil
}
