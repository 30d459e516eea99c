// Package hierarchy turns taxonomy rows into STIX locations and the
// containment relationships between them.
//
// # Levels
//
// Four kinds of location are built, from most to least specific:
//
//	country → intermediate region → sub-region → region
//
// Countries are built once per row. Region, sub-region and intermediate
// region locations are built the first time their name appears in file
// order; empty names never produce a location.
//
// # Relationships
//
// [Synthesizer] emits, in this order:
//
//  1. country → sub-region ("sub-region")
//  2. country → region ("region")
//  3. country → intermediate region ("intermediate-region")
//  4. sub-region → region ("region")
//  5. intermediate region → sub-region ("sub-region")
//
// Each pass looks up the first row that mentions the source name. A target
// name with no matching location is skipped without an error.
//
// # Staging
//
// Every location and relationship is written to the staging store only if
// its identifier is not already there.
package hierarchy
