package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a raw link cannot be turned into an
// absolute HTTP(S) URL with a host. Invalid links are dropped by the
// caller; they are never fatal to a crawl.
var ErrInvalidURL = errors.New("invalid url")

// Normalize canonicalizes a raw link into a comparable absolute URL.
//
// Relative references are resolved against base (which may be nil for
// seed URLs). A missing scheme defaults to https. The scheme and host are
// lower-cased, the fragment is stripped, and a trailing slash is removed
// except on the root path. Two URLs that normalize to the same string are
// the same crawl target.
//
// Fragment-only references and non-HTTP(S) schemes (mailto, tel,
// javascript, data) fail with ErrInvalidURL, as does any input that
// resolves to a URL without a host. Normalize is idempotent:
// Normalize(Normalize(u)) == Normalize(u) for every valid u.
func Normalize(raw string, base *url.URL) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", fmt.Errorf("%w: empty or fragment-only reference", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if base != nil {
		u = base.ResolveReference(u)
	}

	// A bare "example.com/about" parses as a path with no host.
	// Re-parse with an https scheme so the host lands where it belongs.
	if u.Scheme == "" && u.Host == "" && base == nil {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
	}

	if u.Scheme == "" {
		u.Scheme = "https"
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	u.Host = strings.ToLower(u.Host)
	if u.Host == "" {
		return "", fmt.Errorf("%w: no host in %q", ErrInvalidURL, raw)
	}

	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
		if u.Path == "" {
			u.Path = "/"
		}
	}

	return u.String(), nil
}

// Domain extracts the lower-cased host from a URL.
// Returns "" when the URL cannot be parsed.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// SameDomain reports whether rawURL belongs to the given domain.
func SameDomain(rawURL, domain string) bool {
	host := Domain(rawURL)
	if host == "" || domain == "" {
		return false
	}
	return strings.EqualFold(host, domain)
}
