// Package extract turns parsed pages into business information.
//
// Extraction runs in two tiers. The schema tier decodes JSON-LD blocks
// (repairing malformed JSON before giving up) and reads the schema.org
// business vocabulary out of each node. The fallback tier scans the
// rendered HTML with pattern heuristics for fields the markup did not
// provide. Both tiers emit ordered fragments; the aggregator folds them
// into one record with fill-once semantics, so markup always beats
// heuristics and earlier pages always beat later ones.
package extract
