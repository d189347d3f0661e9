package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRulesFile is the default rules file name.
const DefaultRulesFile = ".bizscan"

// ErrRulesNotFound is returned when the rules file does not exist.
var ErrRulesNotFound = errors.New("rules file not found")

// Rules holds the path policy and custom extraction variables loaded
// from the rules file.
type Rules struct {
	// ExcludePaths are path prefixes never crawled (admin areas,
	// cart pages, login forms).
	ExcludePaths []string `yaml:"exclude_paths"`

	// PriorityPaths are path prefixes worth visiting first and probed
	// by quick scans (about, contact, services).
	PriorityPaths []string `yaml:"priority_paths"`

	// Variables are extra schema properties to search for beyond the
	// recognized vocabulary.
	Variables []string `yaml:"variables"`
}

// LoadRulesFile loads path rules from a YAML file. A missing file
// returns ErrRulesNotFound; callers decide whether that matters based
// on whether the path was explicitly specified.
func LoadRulesFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided rules path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRulesNotFound
		}
		return nil, err
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}

	rules.ExcludePaths = normalizePaths(rules.ExcludePaths)
	rules.PriorityPaths = normalizePaths(rules.PriorityPaths)
	rules.Variables = trimNonEmpty(rules.Variables)

	return &rules, nil
}

// FindRulesFile locates the rules file: an explicit path wins, then
// .bizscan in the current directory, then in the home directory.
// Returns "" when no file is found.
func FindRulesFile(path string) string {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultRulesFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultRulesFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// normalizePaths trims entries, drops empty ones, and ensures each
// starts with a slash.
func normalizePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}
	return out
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
