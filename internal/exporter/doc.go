// Package exporter renders an analysis report into its output artifacts:
// a multi-sheet Excel workbook, a Word document with summary sections and
// sample tables, and per-result CSV exports.
package exporter
