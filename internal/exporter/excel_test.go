package exporter

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"idacli/internal/analysis"
	"idacli/internal/dataprocessing"
)

var exportHeaders = []string{
	"Declaration No", "Clearance Date", "Tariff Code", "Rate Category",
	"Duty Rate", "Shipment Origin", "Country of Origin", "Spec 1",
	"Actual Duty", "Line Amount", "Settlement Amount", "Unit Price",
}

func sampleReport(t *testing.T, rows [][]string) *analysis.Report {
	t.Helper()
	raw := dataprocessing.NewTable(exportHeaders, rows)
	pipeline := analysis.NewPipeline(nil, analysis.PriceVarianceOptions{})
	return pipeline.Run(context.Background(), raw, "test.xlsx")
}

func sampleRows() [][]string {
	return [][]string{
		{"D-001", "2025-01-02", "8501.10", "A", "9", "CN", "CN", "motor", "100", "50", "200", "10"},
		{"D-002", "2025-01-03", "8501.20", "A", "9", "CN", "JP", "motor", "100", "50", "200", "12"},
		{"D-003", "2025-01-04", "8413.70", "B", "3", "US", "JP", "pump", "10", "5", "20", "5"},
	}
}

func TestWriteWorkbook(t *testing.T) {
	report := sampleReport(t, sampleRows())
	path := filepath.Join(t.TempDir(), "report.xlsx")

	require.NoError(t, NewExcelWriter(nil).WriteWorkbook(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	for _, name := range []string{
		SheetRefund, SheetSummary, SheetLowRisk, SheetTariffRisk,
		SheetPriceRisk, SheetVerification, SheetRawData,
	} {
		assert.Contains(t, sheets, name)
	}

	refundRows, err := f.GetRows(SheetRefund)
	require.NoError(t, err)
	// Header plus the two category-A refund candidates.
	require.Len(t, refundRows, 3)
	assert.Equal(t, "Declaration No", refundRows[0][0])
	assert.Equal(t, "D-001", refundRows[1][0])
	assert.Equal(t, "D-002", refundRows[2][0])

	rawRows, err := f.GetRows(SheetRawData)
	require.NoError(t, err)
	assert.Len(t, rawRows, 4)
}

func TestWriteWorkbook_RawDataCap(t *testing.T) {
	rows := make([][]string, 0, 1205)
	for i := 0; i < 1205; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("D-%04d", i), "", "8501.10", "A", "9", "", "", "motor", "1", "1", "1", "10",
		})
	}
	report := sampleReport(t, rows)
	path := filepath.Join(t.TempDir(), "big.xlsx")

	require.NoError(t, NewExcelWriter(nil).WriteWorkbook(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rawRows, err := f.GetRows(SheetRawData)
	require.NoError(t, err)
	// Header row plus at most 1000 data rows.
	assert.Len(t, rawRows, rawDataRowCap+1)
}

func TestWriteWorkbook_TariffRateBreakdown(t *testing.T) {
	report := sampleReport(t, [][]string{
		{"D-001", "2025-01-02", "8501.10", "A", "9", "", "", "motor", "1", "1", "1", "10"},
		{"D-002", "2025-01-03", "8501.10", "B", "3", "", "", "motor", "1", "1", "1", "10"},
	})
	require.Len(t, report.Summary.RateByTariffCode, 1)

	path := filepath.Join(t.TempDir(), "breakdown.xlsx")
	require.NoError(t, NewExcelWriter(nil).WriteWorkbook(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	summaryRows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)

	var flagged []string
	for i, row := range summaryRows {
		if len(row) > 0 && row[0] == "Rate consistency by tariff code" {
			require.Greater(t, len(summaryRows), i+2)
			flagged = summaryRows[i+2]
			break
		}
	}
	require.NotEmpty(t, flagged, "breakdown section missing from summary sheet")
	assert.Equal(t, "8501.10", flagged[0])
	assert.Equal(t, "A, B", flagged[2])
	assert.Equal(t, "9.0%, 3.0%", flagged[4])
}

func TestWriteWorkbook_EmptyTariffSheet(t *testing.T) {
	report := sampleReport(t, [][]string{
		{"D-001", "", "8501.10", "A", "9", "", "", "motor", "1", "1", "1", "10"},
	})
	require.Zero(t, report.Tariff.FlaggedSpecs)

	path := filepath.Join(t.TempDir(), "clean.xlsx")
	require.NoError(t, NewExcelWriter(nil).WriteWorkbook(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(SheetTariffRisk, "A1")
	require.NoError(t, err)
	assert.Equal(t, "No tariff-code inconsistencies found.", value)
}
