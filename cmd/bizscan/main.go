// Package main provides the entry point for the bizscan CLI.
//
// bizscan crawls a business website and extracts structured information
// (contacts, ratings, services, hours, licensing) from its schema.org
// markup, falling back to HTML heuristics where markup is missing.
//
// Usage:
//
//	bizscan scan <website-url>
//	bizscan scan --quick <website-url>
//
// See --help for all available options.
package main

// main is the entry point for bizscan.
func main() {
	Execute()
}
