package dataprocessing

import (
	"log/slog"
	"strconv"
	"strings"
)

// NormalizeHeaders trims whitespace from every header and deduplicates
// repeats: the first occurrence keeps its name, the k-th repeat becomes
// "name_k".
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	taken := make(map[string]bool, len(headers))

	for i, h := range headers {
		name := strings.TrimSpace(h)
		if n, dup := seen[name]; dup {
			k := n
			candidate := name + "_" + strconv.Itoa(k)
			for taken[candidate] {
				k++
				candidate = name + "_" + strconv.Itoa(k)
			}
			seen[name] = k + 1
			out[i] = candidate
		} else {
			seen[name] = 1
			out[i] = name
		}
		taken[out[i]] = true
	}
	return out
}

// Normalize produces the analysis-ready table: headers cleaned, canonical
// columns resolved, the rate-category column coerced to trimmed text and the
// duty-rate column coerced to numeric with zero fill. The input table is not
// modified.
func Normalize(t *Table) *Table {
	headers := NormalizeHeaders(t.Columns)

	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]string, len(r))
		copy(row, r)
		rows[i] = row
	}

	n := NewTable(headers, rows)

	// Resolve every canonical column we recognize by header text.
	for i, h := range headers {
		key, ok := matchColumn(h)
		if !ok {
			continue
		}
		if _, exists := n.byCanonical[key]; exists {
			continue
		}
		n.byCanonical[key] = i
		n.resolutions[key] = Resolution{Key: key, Header: h, Index: i, Method: ResolvedByName}
	}

	resolvePositional(n, ColRateCategory, rateCategoryIndex, DefaultRateCategory)
	resolvePositional(n, ColDutyRate, dutyRateIndex, "0")

	coerceRateCategory(n)
	coerceDutyRate(n)

	for _, key := range []string{ColRateCategory, ColDutyRate} {
		r := n.resolutions[key]
		slog.Debug("resolved column",
			slog.String("key", r.Key),
			slog.String("header", r.Header),
			slog.Int("index", r.Index),
			slog.String("method", r.Method.String()))
	}

	return n
}

// resolvePositional applies the name -> index -> default strategy chain for
// the two positionally identified columns.
func resolvePositional(t *Table, key string, index int, defaultValue string) {
	if t.HasCanonical(key) {
		return
	}

	if len(t.Columns) > dutyRateIndex {
		t.byCanonical[key] = index
		t.resolutions[key] = Resolution{Key: key, Header: t.Columns[index], Index: index, Method: ResolvedByIndex}
		return
	}

	// Inject a synthetic column holding the documented default.
	idx := len(t.Columns)
	t.Columns = append(t.Columns, key)
	t.byName[key] = idx
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], defaultValue)
	}
	t.byCanonical[key] = idx
	t.resolutions[key] = Resolution{Key: key, Header: key, Index: idx, Method: ResolvedByDefault}
}

func coerceRateCategory(t *Table) {
	col := t.byCanonical[ColRateCategory]
	for i := range t.Rows {
		v := strings.TrimSpace(t.cell(i, col))
		if v == "" {
			v = DefaultRateCategory
		}
		setCell(t, i, col, v)
	}
}

func coerceDutyRate(t *Table) {
	col := t.byCanonical[ColDutyRate]
	for i := range t.Rows {
		v := ParseLenientFloat(t.cell(i, col))
		setCell(t, i, col, strconv.FormatFloat(v, 'f', -1, 64))
	}
}

// setCell widens short rows as needed before writing.
func setCell(t *Table, row, col int, value string) {
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
}
