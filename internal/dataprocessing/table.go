package dataprocessing

import (
	"strconv"
	"strings"
)

// ResolutionMethod records which lookup strategy produced a canonical column.
type ResolutionMethod int

const (
	// ResolvedByName means the column was matched against its header text.
	ResolvedByName ResolutionMethod = iota
	// ResolvedByIndex means the column was taken from its fixed position.
	ResolvedByIndex
	// ResolvedByDefault means no column existed and a default was injected.
	ResolvedByDefault
)

// String returns the string representation of the resolution method.
func (m ResolutionMethod) String() string {
	switch m {
	case ResolvedByName:
		return "name"
	case ResolvedByIndex:
		return "index"
	case ResolvedByDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Resolution describes how one canonical column was located in the source.
type Resolution struct {
	Key    string           `json:"key"`
	Header string           `json:"header"`
	Index  int              `json:"index"`
	Method ResolutionMethod `json:"method"`
}

// Table is one loaded spreadsheet: an ordered header row plus data rows.
// All cells are kept as text; numeric access goes through Float, which
// mirrors the lenient parsing the declaration exports require.
type Table struct {
	Columns []string
	Rows    [][]string

	byName      map[string]int
	byCanonical map[string]int
	resolutions map[string]Resolution
}

// NewTable builds a table over the given header and rows. Short rows are
// allowed; missing cells read as empty strings.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns:     columns,
		Rows:        rows,
		byName:      make(map[string]int, len(columns)),
		byCanonical: make(map[string]int),
		resolutions: make(map[string]Resolution),
	}
	for i, c := range columns {
		if _, exists := t.byName[c]; !exists {
			t.byName[c] = i
		}
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of a column by its header text.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.byName[name]
	return i, ok
}

// Canonical returns the position of a column by its canonical key.
func (t *Table) Canonical(key string) (int, bool) {
	i, ok := t.byCanonical[key]
	return i, ok
}

// HasCanonical reports whether a canonical column was resolved.
func (t *Table) HasCanonical(key string) bool {
	_, ok := t.byCanonical[key]
	return ok
}

// Resolution returns the resolution record for a canonical key.
func (t *Table) Resolution(key string) (Resolution, bool) {
	r, ok := t.resolutions[key]
	return r, ok
}

// Resolutions returns all resolution records keyed by canonical name.
func (t *Table) Resolutions() map[string]Resolution {
	out := make(map[string]Resolution, len(t.resolutions))
	for k, v := range t.resolutions {
		out[k] = v
	}
	return out
}

// cell returns the raw cell at (row, col), or "" when the row is short.
func (t *Table) cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Value returns the trimmed cell for a canonical key, or "" when the column
// is absent.
func (t *Table) Value(row int, key string) string {
	col, ok := t.byCanonical[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(t.cell(row, col))
}

// Float returns the cell for a canonical key parsed as a number. Thousands
// separators are tolerated; anything unparseable reads as 0.
func (t *Table) Float(row int, key string) float64 {
	return ParseLenientFloat(t.Value(row, key))
}

// ParseLenientFloat parses declaration-export numerics: commas stripped,
// blanks and garbage become 0.
func ParseLenientFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
