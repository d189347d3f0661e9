package model

// Page represents a single fetched web page.
// It is transient: the crawler produces it, the extractor consumes it,
// and it is discarded once the page's fields have been merged into the
// aggregate business record.
type Page struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL after following redirects. Link resolution
	// must use this as the base, not URL.
	FinalURL string `json:"final_url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the value of the Content-Type response header.
	ContentType string `json:"content_type"`

	// Title is the page title from the <title> tag. Filled by the parser.
	Title string `json:"title,omitempty"`

	// Body is the response body, truncated to the fetcher's body limit.
	Body []byte `json:"-"`
}
