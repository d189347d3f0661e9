// Package config holds the scanner configuration.
//
// Configuration flows one way: CLI flags and the optional rules file
// populate a Config, Validate checks it, and the populated struct is
// passed down by dependency injection. Nothing in the package reads
// global state after startup.
package config
