// Package dataprocessing loads import-declaration spreadsheets into an
// in-memory table and normalizes it for analysis: header whitespace is
// trimmed, repeated column names are deduplicated, and the rate-category and
// duty-rate columns are resolved by name, by position, or defaulted.
//
// A Table is immutable once normalized. Every analysis pass derives new data
// from it; nothing downstream mutates the loaded rows.
package dataprocessing
