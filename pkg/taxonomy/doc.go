// Package taxonomy reads the ISO-3166 country and regional codes table.
//
// The table is a CSV file with one row per country. Only the columns listed
// in [RequiredColumns] are read; any other column is ignored, and
// intermediate-region may be absent or empty.
//
// [Index] answers "which row first mentions this name" for countries,
// sub-regions and intermediate regions, preserving file order.
package taxonomy
