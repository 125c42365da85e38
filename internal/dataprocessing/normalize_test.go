package dataprocessing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeaders(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		expected []string
	}{
		{
			name:     "trims whitespace",
			headers:  []string{" Declaration No ", "Tariff Code\t"},
			expected: []string{"Declaration No", "Tariff Code"},
		},
		{
			name:     "deduplicates repeats with numeric suffix",
			headers:  []string{"Spec", "Spec", "Spec"},
			expected: []string{"Spec", "Spec_1", "Spec_2"},
		},
		{
			name:     "suffix collision bumps the counter",
			headers:  []string{"Spec", "Spec_1", "Spec"},
			expected: []string{"Spec", "Spec_1", "Spec_2"},
		},
		{
			name:     "empty headers dedupe too",
			headers:  []string{"", "", "A"},
			expected: []string{"", "_1", "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeaders(tt.headers))
		})
	}
}

func TestNormalize_ResolvesByName(t *testing.T) {
	raw := NewTable(
		[]string{"Declaration No", "Rate Category", "Duty Rate", "Unit Price"},
		[][]string{
			{"D-001", " A ", "8.5", "10"},
			{"D-002", "", "garbage", "20"},
		},
	)

	n := Normalize(raw)

	res, ok := n.Resolution(ColRateCategory)
	require.True(t, ok)
	assert.Equal(t, ResolvedByName, res.Method)

	assert.Equal(t, "A", n.Value(0, ColRateCategory))
	assert.Equal(t, DefaultRateCategory, n.Value(1, ColRateCategory))
	assert.Equal(t, 8.5, n.Float(0, ColDutyRate))
	assert.Equal(t, 0.0, n.Float(1, ColDutyRate))
}

func TestNormalize_PositionalFallback(t *testing.T) {
	// Wide export with unrecognizable headers: the rate category and duty
	// rate live at fixed offsets 70 and 71.
	cols := make([]string, 75)
	row := make([]string, 75)
	for i := range cols {
		cols[i] = fmt.Sprintf("c%d", i)
		row[i] = ""
	}
	row[70] = "B"
	row[71] = "12.0"

	n := Normalize(NewTable(cols, [][]string{row}))

	res, ok := n.Resolution(ColRateCategory)
	require.True(t, ok)
	assert.Equal(t, ResolvedByIndex, res.Method)
	assert.Equal(t, 70, res.Index)

	assert.Equal(t, "B", n.Value(0, ColRateCategory))
	assert.Equal(t, 12.0, n.Float(0, ColDutyRate))
}

func TestNormalize_DefaultsWhenNarrow(t *testing.T) {
	n := Normalize(NewTable(
		[]string{"Unit Price", "Spec 1"},
		[][]string{{"10", "bolt"}},
	))

	res, ok := n.Resolution(ColRateCategory)
	require.True(t, ok)
	assert.Equal(t, ResolvedByDefault, res.Method)
	assert.Equal(t, DefaultRateCategory, n.Value(0, ColRateCategory))

	res, ok = n.Resolution(ColDutyRate)
	require.True(t, ok)
	assert.Equal(t, ResolvedByDefault, res.Method)
	assert.Equal(t, 0.0, n.Float(0, ColDutyRate))
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	raw := NewTable(
		[]string{"Rate Category", "Duty Rate"},
		[][]string{{" A ", "1,000.5"}},
	)

	Normalize(raw)

	assert.Equal(t, " A ", raw.Rows[0][0])
	assert.Equal(t, "1,000.5", raw.Rows[0][1])
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := NewTable(
		[]string{"Declaration No", "Rate Category", "Duty Rate"},
		[][]string{{"D-001", "A", "8"}, {"D-002", " ", "x"}},
	)

	first := Normalize(raw)
	second := Normalize(first)

	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, first.Rows, second.Rows)
}

func TestParseLenientFloat(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
	}{
		{"8.5", 8.5},
		{"1,234.56", 1234.56},
		{" 10 ", 10},
		{"", 0},
		{"n/a", 0},
		{"-3.2", -3.2},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLenientFloat(tt.in))
		})
	}
}
