// Package analysis implements the four review passes over a normalized
// declaration table: the duty-refund candidate filter, the low-risk filter,
// the tariff-code consistency check, and the unit-price variance grouping,
// plus the workbook summary counts.
//
// Each pass reads the shared table and produces its own result; no pass
// mutates the table or depends on another pass's output. Pipeline.Run wires
// them together and contains failures at step boundaries.
package analysis
