package crawler

import (
	"net/url"
	"strings"
)

// Class is the path policy classification of a URL path.
type Class int

const (
	// ClassNeutral is a path matched by no rule.
	ClassNeutral Class = iota

	// ClassPriority is a path matched by a priority rule.
	ClassPriority

	// ClassExcluded is a path matched by an exclusion rule.
	// Exclusion always wins over priority.
	ClassExcluded
)

// String returns the classification name.
func (c Class) String() string {
	switch c {
	case ClassPriority:
		return "priority"
	case ClassExcluded:
		return "excluded"
	default:
		return "neutral"
	}
}

// PathPolicy classifies URL paths against two ordered prefix rule sets:
// exclusions and priorities. The rule sets are loaded once per crawl and
// immutable afterwards, so a single policy may be shared by all workers.
type PathPolicy struct {
	exclude  []string
	priority []string
}

// NewPathPolicy builds a policy from raw exclude and priority prefixes.
// Rules are normalized to begin with "/" and carry no trailing slash;
// blank rules are dropped. Empty rule sets classify everything Neutral.
func NewPathPolicy(exclude, priority []string) *PathPolicy {
	return &PathPolicy{
		exclude:  normalizeRules(exclude),
		priority: normalizeRules(priority),
	}
}

// Classify returns the classification for a URL path.
// Exclusion rules are evaluated before priority rules.
func (p *PathPolicy) Classify(path string) Class {
	path = normalizePath(path)

	for _, rule := range p.exclude {
		if matchPrefix(path, rule) {
			return ClassExcluded
		}
	}
	for _, rule := range p.priority {
		if matchPrefix(path, rule) {
			return ClassPriority
		}
	}
	return ClassNeutral
}

// ClassifyURL classifies the path component of a URL.
// Unparseable URLs are Neutral.
func (p *PathPolicy) ClassifyURL(rawURL string) Class {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ClassNeutral
	}
	return p.Classify(u.Path)
}

// matchPrefix reports whether path starts with the rule prefix on a
// path-segment boundary, so "/collection" never matches "/collections".
// The root rule "/" matches only the root path.
func matchPrefix(path, rule string) bool {
	return path == rule || strings.HasPrefix(path, rule+"/")
}

// normalizePath forces a leading "/" and strips the trailing slash,
// keeping the bare root as "/".
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}

// normalizeRules normalizes each rule prefix and drops blanks.
func normalizeRules(rules []string) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, normalizePath(r))
	}
	return out
}
