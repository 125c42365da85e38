package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idacli/internal/dataprocessing"
)

var testHeaders = []string{
	"Declaration No", "Clearance Date", "Tariff Code", "Rate Category",
	"Duty Rate", "Shipment Origin", "Country of Origin", "Spec 1",
	"Actual Duty", "Line Amount", "Settlement Amount", "Unit Price",
	"Trade Type", "Payment Method",
}

// testRow builds a row matching testHeaders.
func testRow(decl, date, tariff, category, rate, shipOrigin, origin, spec, actualDuty, amount, settlement, price string) []string {
	return []string{decl, date, tariff, category, rate, shipOrigin, origin, spec, actualDuty, amount, settlement, price, "import", "wire"}
}

func testTable(t *testing.T, rows [][]string) *dataprocessing.Table {
	t.Helper()
	return dataprocessing.Normalize(dataprocessing.NewTable(testHeaders, rows))
}

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		name     string
		mean     float64
		ratio    float64
		expected RiskTier
	}{
		{"zero mean wins over any ratio", 0, 0.9, TierNeedsReview},
		{"above half is very high", 100, 0.51, TierVeryHigh},
		{"exactly half is high, not very high", 100, 0.5, TierHigh},
		{"exactly 0.3 is moderate", 100, 0.3, TierModerate},
		{"exactly 0.1 is low", 100, 0.1, TierLow},
		{"just above 0.1 is moderate", 100, 0.100001, TierModerate},
		{"zero ratio is low", 100, 0, TierLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyTier(tt.mean, tt.ratio))
		})
	}
}

func TestRefundCandidates(t *testing.T) {
	table := testTable(t, [][]string{
		testRow("D-001", "2025-01-02", "8501.10", "A", "8", "CN", "CN", "motor", "100", "50", "200", "10"),
		testRow("D-002", "2025-01-03", "8501.10", "A", "7.9", "CN", "JP", "motor", "100", "50", "200", "10"),
		testRow("D-003", "2025-01-04", "8501.20", "B", "12", "CN", "CN", "pump", "100", "50", "200", "10"),
		testRow("D-004", "2025-01-05", "8501.20", "A", "10", "US", "CN", "pump", "80", "40", "160", "10"),
	})

	result := RefundCandidates(table)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "D-001", result.Items[0].DeclarationNo)
	assert.Equal(t, "D-004", result.Items[1].DeclarationNo)

	// 100 * 50 / 200 = 25, 80 * 40 / 160 = 20
	assert.InDelta(t, 25.0, result.Items[0].LineDuty, 1e-9)
	assert.InDelta(t, 20.0, result.Items[1].LineDuty, 1e-9)
	assert.InDelta(t, 45.0, result.LineDuty.Total, 1e-9)
	assert.InDelta(t, 25.0, result.LineDuty.Max, 1e-9)
	assert.InDelta(t, 22.5, result.LineDuty.Mean, 1e-9)

	// Only D-001 has matching, non-empty origins.
	assert.Equal(t, 1, result.FTACount)
	assert.True(t, result.Items[0].FTAReview)
	assert.False(t, result.Items[1].FTAReview)
}

func TestRefundCandidates_ZeroSettlement(t *testing.T) {
	table := testTable(t, [][]string{
		testRow("D-001", "", "", "A", "9", "", "", "motor", "100", "50", "0", "10"),
	})

	result := RefundCandidates(table)
	require.Len(t, result.Items, 1)
	assert.Zero(t, result.Items[0].LineDuty)
}

func TestRefundCandidates_MissingDutyInputs(t *testing.T) {
	table := dataprocessing.Normalize(dataprocessing.NewTable(
		[]string{"Declaration No", "Rate Category", "Duty Rate"},
		[][]string{{"D-001", "A", "9"}},
	))

	result := RefundCandidates(table)
	require.Len(t, result.Items, 1)
	assert.Zero(t, result.Items[0].LineDuty)
	assert.NotEmpty(t, result.Warnings)
}

func TestLowRisk(t *testing.T) {
	table := testTable(t, [][]string{
		testRow("D-001", "", "", "A", "7.9", "", "", "a", "0", "0", "0", "1"),
		testRow("D-002", "", "", "A", "8", "", "", "b", "0", "0", "0", "1"),
		testRow("D-003", "", "", "F123", "3", "", "", "c", "0", "0", "0", "1"),
		testRow("D-004", "", "", "FTA", "3", "", "", "d", "0", "0", "0", "1"),
		testRow("D-005", "", "", "FX123", "3", "", "", "e", "0", "0", "0", "1"),
	})

	result := LowRisk(table)

	require.Len(t, result.Items, 3)
	// Below 8%, F-plus-three-characters categories excluded, input order kept.
	assert.Equal(t, "D-001", result.Items[0].DeclarationNo)
	assert.Equal(t, "D-004", result.Items[1].DeclarationNo)
	assert.Equal(t, "D-005", result.Items[2].DeclarationNo)
}

func TestTariffConsistency(t *testing.T) {
	table := testTable(t, [][]string{
		testRow("D-001", "", "8501.10", "A", "8", "", "", "motor", "0", "0", "0", "1"),
		testRow("D-002", "", "8501.20", "A", "8", "", "", "motor", "0", "0", "0", "1"),
		testRow("D-003", "", "8413.70", "A", "8", "", "", "pump", "0", "0", "0", "1"),
		testRow("D-004", "", "8501.10", "A", "8", "", "", "motor", "0", "0", "0", "1"),
	})

	result := TariffConsistency(table)

	assert.Equal(t, 1, result.FlaggedSpecs)
	require.Len(t, result.Items, 3)

	// Sorted by (spec, tariff code); the two 8501.10 rows keep input order.
	assert.Equal(t, "D-001", result.Items[0].DeclarationNo)
	assert.Equal(t, "D-004", result.Items[1].DeclarationNo)
	assert.Equal(t, "D-002", result.Items[2].DeclarationNo)
}

func TestTariffConsistency_MissingColumn(t *testing.T) {
	table := dataprocessing.Normalize(dataprocessing.NewTable(
		[]string{"Declaration No", "Spec 1"},
		[][]string{{"D-001", "motor"}},
	))

	result := TariffConsistency(table)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.FlaggedSpecs)
	assert.NotEmpty(t, result.Warnings)
}

func TestPriceVariance(t *testing.T) {
	table := testTable(t, [][]string{
		testRow("D-003", "2025-01-05", "", "A", "8", "", "", "motor", "0", "30", "0", "8"),
		testRow("D-001", "2025-01-02", "", "A", "8", "", "", "motor", "0", "10", "0", "12"),
		testRow("D-002", "2025-01-03", "", "A", "8", "", "", "pump", "0", "20", "0", "5"),
		testRow("D-004", "2025-01-06", "", "A", "8", "", "", "valve", "0", "5", "0", "0"),
	})

	result := PriceVariance(table, PriceVarianceOptions{})

	require.Len(t, result.Groups, 2)

	// Sorted by group key: motor before pump. The zero-priced valve row is
	// dropped before grouping.
	motor := result.Groups[0]
	assert.Equal(t, "motor", motor.Spec)
	assert.Equal(t, 2, motor.Count)
	assert.InDelta(t, 10.0, motor.MeanPrice, 1e-9)
	assert.InDelta(t, 12.0, motor.MaxPrice, 1e-9)
	assert.InDelta(t, 8.0, motor.MinPrice, 1e-9)
	assert.InDelta(t, 40.0, motor.AmountTotal, 1e-9)
	assert.InDelta(t, 0.4, motor.DeviationRatio, 1e-9)
	assert.Equal(t, TierHigh, motor.Tier)
	assert.Equal(t, "price deviation: 40.0%", motor.Remark)
	assert.Equal(t, "D-001", motor.MinDeclarationNo)
	assert.Equal(t, "D-003", motor.MaxDeclarationNo)
	assert.Equal(t, "2025-01-02", motor.MinClearanceDate)
	assert.Equal(t, "2025-01-05", motor.MaxClearanceDate)

	// Sample stddev of {8, 12} with n-1 = 1 denominator.
	assert.InDelta(t, 2.8284271247, motor.StdDev, 1e-6)

	pump := result.Groups[1]
	assert.Equal(t, 1, pump.Count)
	assert.Zero(t, pump.StdDev)
	assert.Zero(t, pump.DeviationRatio)
	assert.Equal(t, TierLow, pump.Tier)

	assert.Equal(t, 1, result.HighRisk)
	assert.InDelta(t, 0.2, result.AvgDeviation, 1e-9)
}

func TestPriceVariance_Deterministic(t *testing.T) {
	rows := [][]string{
		testRow("D-001", "", "", "A", "8", "", "", "zeta", "0", "1", "0", "3"),
		testRow("D-002", "", "", "A", "8", "", "", "alpha", "0", "1", "0", "2"),
		testRow("D-003", "", "", "A", "8", "", "", "mid", "0", "1", "0", "1"),
	}
	table := testTable(t, rows)

	first := PriceVariance(table, PriceVarianceOptions{})
	second := PriceVariance(table, PriceVarianceOptions{})

	assert.Equal(t, first, second)
	require.Len(t, first.Groups, 3)
	assert.Equal(t, "alpha", first.Groups[0].Spec)
	assert.Equal(t, "mid", first.Groups[1].Spec)
	assert.Equal(t, "zeta", first.Groups[2].Spec)
}

func TestPriceVariance_ExtraKeys(t *testing.T) {
	table := testTable(t, [][]string{
		testRow("D-001", "", "8501.10", "A", "8", "", "", "motor", "0", "1", "0", "10"),
		testRow("D-002", "", "8501.20", "A", "8", "", "", "motor", "0", "1", "0", "20"),
	})

	plain := PriceVariance(table, PriceVarianceOptions{})
	require.Len(t, plain.Groups, 1)

	split := PriceVariance(table, PriceVarianceOptions{
		ExtraKeys: []string{dataprocessing.ColTariffCode},
	})
	require.Len(t, split.Groups, 2)
	assert.Contains(t, split.Groups[0].GroupKey, " / ")
}

func TestPriceVariance_MissingColumns(t *testing.T) {
	table := dataprocessing.Normalize(dataprocessing.NewTable(
		[]string{"Declaration No", "Unit Price"},
		[][]string{{"D-001", "10"}},
	))

	result := PriceVariance(table, PriceVarianceOptions{})
	assert.Empty(t, result.Groups)
	assert.NotEmpty(t, result.Warnings)
}

func TestSummarize(t *testing.T) {
	table := testTable(t, [][]string{
		testRow("D-001", "", "", "A", "8", "", "", "a", "0", "0", "0", "1"),
		testRow("D-001", "", "", "A", "8", "", "", "b", "0", "0", "0", "1"),
		testRow("D-002", "", "", "B", "0", "", "", "c", "0", "0", "0", "1"),
	})

	s := Summarize(table)

	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 2, s.Declarations)

	require.Len(t, s.ByRateCategory, 2)
	assert.Equal(t, CountEntry{Key: "A", Count: 1}, s.ByRateCategory[0])
	assert.Equal(t, CountEntry{Key: "B", Count: 1}, s.ByRateCategory[1])
}

func TestSummarize_RateByTariffCode(t *testing.T) {
	table := testTable(t, [][]string{
		testRow("D-001", "", "8501.10", "A", "9", "", "", "motor", "0", "0", "0", "1"),
		testRow("D-002", "", "8501.10", "B", "3", "", "", "motor", "0", "0", "0", "1"),
		testRow("D-002", "", "8501.10", "A", "9", "", "", "motor", "0", "0", "0", "1"),
		testRow("D-003", "", "8413.70", "C", "5", "", "", "pump", "0", "0", "0", "1"),
	})

	s := Summarize(table)

	// Only the code with more than one rate category or duty rate is flagged.
	require.Len(t, s.RateByTariffCode, 1)
	entry := s.RateByTariffCode[0]
	assert.Equal(t, "8501.10", entry.TariffCode)
	assert.Equal(t, 2, entry.RateCategoryCount)
	assert.Equal(t, []string{"A", "B"}, entry.RateCategories)
	assert.Equal(t, 2, entry.DutyRateCount)
	assert.Equal(t, []string{"9.0%", "3.0%"}, entry.DutyRates)
	assert.Equal(t, 2, entry.Declarations)
}

func TestSummarize_RateByTariffCodeNeedsColumns(t *testing.T) {
	table := dataprocessing.Normalize(dataprocessing.NewTable(
		[]string{"Declaration No", "Rate Category", "Duty Rate"},
		[][]string{{"D-001", "A", "9"}, {"D-001", "B", "3"}},
	))

	assert.Empty(t, Summarize(table).RateByTariffCode)
}

func TestPipelineRun(t *testing.T) {
	raw := dataprocessing.NewTable(testHeaders, [][]string{
		testRow("D-001", "2025-01-02", "8501.10", "A", "9", "CN", "CN", "motor", "100", "50", "200", "10"),
		testRow("D-002", "2025-01-03", "8501.20", "B", "3", "CN", "JP", "motor", "10", "5", "20", "12"),
	})

	pipeline := NewPipeline(nil, PriceVarianceOptions{})
	report := pipeline.Run(context.Background(), raw, "test.xlsx")

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "test.xlsx", report.Source)
	assert.Equal(t, 2, report.Rows)
	assert.Len(t, report.Refund.Items, 1)
	assert.Len(t, report.LowRisk.Items, 1)
	assert.Equal(t, 1, report.Tariff.FlaggedSpecs)
	assert.Len(t, report.Price.Groups, 1)
	assert.Empty(t, report.StepErrors)
	assert.NotNil(t, report.Table)
}

func TestPipelineRun_NarrowInputWarnsOnDefaults(t *testing.T) {
	raw := dataprocessing.NewTable(
		[]string{"Declaration No", "Unit Price", "Spec 1"},
		[][]string{{"D-001", "10", "motor"}},
	)

	pipeline := NewPipeline(nil, PriceVarianceOptions{})
	report := pipeline.Run(context.Background(), raw, "narrow.csv")

	defaulted := 0
	for _, w := range report.Warnings {
		if w.Step == "normalize" {
			defaulted++
		}
	}
	assert.Equal(t, 2, defaulted)
	assert.Empty(t, report.Refund.Items)
	assert.Len(t, report.LowRisk.Items, 1)
}

func TestRunStep_ContainsPanics(t *testing.T) {
	pipeline := NewPipeline(nil, PriceVarianceOptions{})
	report := &Report{}

	pipeline.runStep(context.Background(), report, "exploding", func() {
		panic("boom")
	})

	require.Len(t, report.StepErrors, 1)
	assert.Equal(t, "exploding", report.StepErrors[0].Step)
	assert.Contains(t, report.StepErrors[0].Message, "boom")
	require.Len(t, report.Warnings, 1)
}
