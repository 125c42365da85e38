package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"idacli/internal/analysis"
	apperrors "idacli/internal/errors"
)

// CSVWriter exports analysis results as one CSV file per result table.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM for Excel compatibility
}

// WriteCSV writes one CSV file with the given options.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return apperrors.NewStorageError("failed to create file", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8.
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	w.logger.Info("csv file written",
		slog.String("path", filePath),
		slog.Int("record_count", len(options.Records)))
	return writer.Error()
}

// csvExportNames are the per-result file names written under the export directory.
const (
	csvRefundFile  = "refund_review.csv"
	csvLowRiskFile = "low_risk.csv"
	csvTariffFile  = "tariff_risk.csv"
	csvPriceFile   = "price_risk.csv"
)

// WriteResults writes one CSV per analysis result into dir.
func (w *CSVWriter) WriteResults(dir string, report *analysis.Report) error {
	exports := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{csvRefundFile, lineItemHeaders, lineItemRecords(report.Refund.Items)},
		{csvLowRiskFile, lineItemHeaders, lineItemRecords(report.LowRisk.Items)},
		{csvTariffFile, lineItemHeaders, lineItemRecords(report.Tariff.Items)},
		{csvPriceFile, priceGroupHeaders, priceGroupRecords(report.Price.Groups)},
	}

	for _, export := range exports {
		path := filepath.Join(dir, export.name)
		err := w.WriteCSV(path, WriteOptions{
			Headers:   export.headers,
			Records:   export.records,
			BOMPrefix: true,
		})
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", export.name, err)
		}
	}
	return nil
}

func lineItemRecords(items []analysis.LineItem) [][]string {
	records := make([][]string, 0, len(items))
	for _, item := range items {
		records = append(records, stringifyRow(lineItemRow(item)))
	}
	return records
}

func priceGroupRecords(groups []analysis.PriceGroup) [][]string {
	records := make([][]string, 0, len(groups))
	for _, g := range groups {
		records = append(records, stringifyRow(priceGroupRow(g)))
	}
	return records
}

func stringifyRow(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch value := v.(type) {
		case string:
			out[i] = value
		case float64:
			out[i] = fmt.Sprintf("%.4f", value)
		case int:
			out[i] = fmt.Sprintf("%d", value)
		default:
			out[i] = fmt.Sprintf("%v", value)
		}
	}
	return out
}
