package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"idacli/internal/analysis"
	apperrors "idacli/internal/errors"
)

// Sheet names of the workbook report.
const (
	SheetRefund       = "Refund Review"
	SheetSummary      = "Summary"
	SheetLowRisk      = "Low Risk"
	SheetTariffRisk   = "Tariff Risk"
	SheetPriceRisk    = "Price Risk"
	SheetVerification = "Verification Methods"
	SheetRawData      = "Raw Data"
)

// rawDataRowCap bounds the raw-data sheet so huge inputs stay openable.
const rawDataRowCap = 1000

// ExcelWriter renders a report into a styled multi-sheet workbook.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a workbook writer.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// WriteWorkbook writes the full report workbook to path.
func (w *ExcelWriter) WriteWorkbook(path string, report *analysis.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create workbook styles: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetRefund); err != nil {
		return fmt.Errorf("failed to rename first sheet: %w", err)
	}
	for _, name := range []string{SheetSummary, SheetLowRisk, SheetTariffRisk, SheetPriceRisk, SheetVerification, SheetRawData} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	if err := w.writeRefundSheet(f, styles, report); err != nil {
		return err
	}
	if err := w.writeSummarySheet(f, styles, report); err != nil {
		return err
	}
	if err := w.writeLowRiskSheet(f, styles, report); err != nil {
		return err
	}
	if err := w.writeTariffSheet(f, styles, report); err != nil {
		return err
	}
	if err := w.writePriceSheet(f, styles, report); err != nil {
		return err
	}
	if err := w.writeVerificationSheet(f, styles); err != nil {
		return err
	}
	if err := w.writeRawDataSheet(f, styles, report); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err)
	}

	w.logger.Info("workbook report written",
		slog.String("path", path),
		slog.String("run_id", report.RunID))
	return nil
}

// workbookStyles holds the shared cell styles.
type workbookStyles struct {
	header    int
	data      int
	highlight int
	title     int
}

func newWorkbookStyles(f *excelize.File) (*workbookStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	data, err := f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return nil, err
	}

	highlight, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return nil, err
	}

	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	return &workbookStyles{header: header, data: data, highlight: highlight, title: title}, nil
}

var lineItemHeaders = []string{
	"Declaration No", "Clearance Date", "B/L No", "Tariff Code",
	"Rate Category", "Rate Description", "Duty Rate",
	"Shipment Origin", "Country of Origin", "FTA Review",
	"Spec 1", "Spec 2", "Spec 3",
	"Ingredient 1", "Ingredient 2", "Ingredient 3",
	"Actual Duty", "Payment Method", "Currency",
	"Trade Partner", "Partner Country", "Product Name",
	"Item No", "Row No", "Quantity", "Quantity Unit",
	"Unit Price", "Line Amount", "Line Duty",
}

func lineItemRow(item analysis.LineItem) []interface{} {
	fta := ""
	if item.FTAReview {
		fta = "FTA refund review"
	}
	return []interface{}{
		item.DeclarationNo, item.ClearanceDate, item.BLNo, item.TariffCode,
		item.RateCategory, item.RateDescription, item.DutyRate,
		item.ShipmentOrigin, item.CountryOrigin, fta,
		item.Spec1, item.Spec2, item.Spec3,
		item.Ingredient1, item.Ingredient2, item.Ingredient3,
		item.ActualDuty, item.PaymentMethod, item.Currency,
		item.TradePartner, item.PartnerCountry, item.ProductName,
		item.ItemNo, item.RowNo, item.Quantity, item.QuantityUnit,
		item.UnitPrice, item.LineAmount, item.LineDuty,
	}
}

func (w *ExcelWriter) writeRefundSheet(f *excelize.File, styles *workbookStyles, report *analysis.Report) error {
	rows := make([][]interface{}, len(report.Refund.Items))
	for i, item := range report.Refund.Items {
		rows[i] = lineItemRow(item)
	}
	// Flag the duty-rate and FTA-review cells the reviewer should look at.
	highlight := func(row, col int) bool {
		item := report.Refund.Items[row]
		switch lineItemHeaders[col] {
		case "Duty Rate":
			return item.DutyRate >= 8
		case "FTA Review":
			return item.FTAReview
		}
		return false
	}
	return writeTableSheet(f, SheetRefund, styles, lineItemHeaders, rows, highlight)
}

func (w *ExcelWriter) writeLowRiskSheet(f *excelize.File, styles *workbookStyles, report *analysis.Report) error {
	rows := make([][]interface{}, len(report.LowRisk.Items))
	for i, item := range report.LowRisk.Items {
		rows[i] = lineItemRow(item)
	}
	return writeTableSheet(f, SheetLowRisk, styles, lineItemHeaders, rows, nil)
}

func (w *ExcelWriter) writeTariffSheet(f *excelize.File, styles *workbookStyles, report *analysis.Report) error {
	if len(report.Tariff.Items) == 0 {
		if err := f.SetCellValue(SheetTariffRisk, "A1", "No tariff-code inconsistencies found."); err != nil {
			return err
		}
		return nil
	}
	rows := make([][]interface{}, len(report.Tariff.Items))
	for i, item := range report.Tariff.Items {
		rows[i] = lineItemRow(item)
	}
	// Every row here belongs to a flagged specification; mark the code.
	highlight := func(row, col int) bool {
		return lineItemHeaders[col] == "Tariff Code"
	}
	return writeTableSheet(f, SheetTariffRisk, styles, lineItemHeaders, rows, highlight)
}

var priceGroupHeaders = []string{
	"Tariff Code", "Spec 1", "Trade Type", "Payment Method",
	"Mean Price", "Currency", "Risk Tier", "Remark",
	"Min Declaration No", "Min Clearance Date", "Min Price",
	"Max Declaration No", "Max Clearance Date", "Max Price",
	"Std Dev", "Count", "Product Name", "Item No", "Row No",
	"Quantity", "Quantity Unit", "Line Amount Total",
}

func priceGroupRow(g analysis.PriceGroup) []interface{} {
	return []interface{}{
		g.TariffCode, g.Spec, g.TradeType, g.PaymentMethod,
		g.MeanPrice, g.Currency, string(g.Tier), g.Remark,
		g.MinDeclarationNo, g.MinClearanceDate, g.MinPrice,
		g.MaxDeclarationNo, g.MaxClearanceDate, g.MaxPrice,
		g.StdDev, g.Count, g.ProductName, g.ItemNo, g.RowNo,
		g.Quantity, g.QuantityUnit, g.AmountTotal,
	}
}

func (w *ExcelWriter) writePriceSheet(f *excelize.File, styles *workbookStyles, report *analysis.Report) error {
	rows := make([][]interface{}, len(report.Price.Groups))
	for i, g := range report.Price.Groups {
		rows[i] = priceGroupRow(g)
	}
	highlight := func(row, col int) bool {
		if priceGroupHeaders[col] != "Risk Tier" {
			return false
		}
		tier := report.Price.Groups[row].Tier
		return tier == analysis.TierHigh || tier == analysis.TierVeryHigh || tier == analysis.TierNeedsReview
	}
	return writeTableSheet(f, SheetPriceRisk, styles, priceGroupHeaders, rows, highlight)
}

func (w *ExcelWriter) writeSummarySheet(f *excelize.File, styles *workbookStyles, report *analysis.Report) error {
	sheet := SheetSummary

	if err := f.MergeCell(sheet, "A1", "G1"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A1", "Import Declaration Analysis Report"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", styles.title); err != nil {
		return err
	}

	row := 3
	writeKV := func(label string, value interface{}) error {
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellB, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellValue(sheet, cellA, label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellB, value); err != nil {
			return err
		}
		row += 1
		return nil
	}

	if err := writeKV("Run ID", report.RunID); err != nil {
		return err
	}
	if err := writeKV("Source", report.Source); err != nil {
		return err
	}
	if err := writeKV("Rows analyzed", report.Summary.Rows); err != nil {
		return err
	}
	if err := writeKV("Distinct declarations", report.Summary.Declarations); err != nil {
		return err
	}
	if err := writeKV("Refund candidates", len(report.Refund.Items)); err != nil {
		return err
	}
	if err := writeKV("FTA refund reviews", report.Refund.FTACount); err != nil {
		return err
	}
	if err := writeKV("Low-risk lines", len(report.LowRisk.Items)); err != nil {
		return err
	}
	if err := writeKV("Tariff-inconsistent specs", report.Tariff.FlaggedSpecs); err != nil {
		return err
	}
	if err := writeKV("Price groups", len(report.Price.Groups)); err != nil {
		return err
	}
	if err := writeKV("High-risk price groups", report.Price.HighRisk); err != nil {
		return err
	}
	row++

	sections := []struct {
		title   string
		entries []analysis.CountEntry
	}{
		{"Declarations by trade type", report.Summary.ByTradeType},
		{"Declarations by rate category", report.Summary.ByRateCategory},
		{"Declarations by payment method", report.Summary.ByPaymentMethod},
	}
	for _, section := range sections {
		if len(section.entries) == 0 {
			continue
		}
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellC, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellValue(sheet, cellA, section.title); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cellA, cellC, styles.header); err != nil {
			return err
		}
		row++
		total := 0
		for _, entry := range section.entries {
			cellA, _ = excelize.CoordinatesToCellName(1, row)
			cellB, _ := excelize.CoordinatesToCellName(2, row)
			if err := f.SetCellValue(sheet, cellA, entry.Key); err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cellB, entry.Count); err != nil {
				return err
			}
			total += entry.Count
			row++
		}
		cellA, _ = excelize.CoordinatesToCellName(1, row)
		cellB, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellValue(sheet, cellA, "Total"); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellB, total); err != nil {
			return err
		}
		row += 2
	}

	if err := w.writeTariffRateBreakdown(f, styles, report.Summary.RateByTariffCode, &row); err != nil {
		return err
	}

	if len(report.Warnings) > 0 {
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellC, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellValue(sheet, cellA, "Warnings"); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cellA, cellC, styles.header); err != nil {
			return err
		}
		row++
		for _, warning := range report.Warnings {
			cellA, _ = excelize.CoordinatesToCellName(1, row)
			msg := warning.Step + ": " + warning.Message
			if warning.Column != "" {
				msg = warning.Step + " [" + warning.Column + "]: " + warning.Message
			}
			if err := f.SetCellValue(sheet, cellA, msg); err != nil {
				return err
			}
			row++
		}
	}

	return f.SetColWidth(sheet, "A", "C", 28)
}

// tariffRateHeaders label the rate-consistency breakdown on the summary
// sheet.
var tariffRateHeaders = []string{
	"Tariff Code", "Rate Categories", "Category Values",
	"Duty Rates", "Duty Rate Values", "Declarations",
}

// writeTariffRateBreakdown appends the per-tariff-code rate-consistency
// table to the summary sheet, advancing row past what it wrote.
func (w *ExcelWriter) writeTariffRateBreakdown(f *excelize.File, styles *workbookStyles, entries []analysis.TariffRateEntry, row *int) error {
	if len(entries) == 0 {
		return nil
	}
	sheet := SheetSummary

	cellA, _ := excelize.CoordinatesToCellName(1, *row)
	cellF, _ := excelize.CoordinatesToCellName(len(tariffRateHeaders), *row)
	if err := f.SetCellValue(sheet, cellA, "Rate consistency by tariff code"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cellA, cellF, styles.header); err != nil {
		return err
	}
	*row++

	writeCells := func(values []interface{}) error {
		for i, value := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, *row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
		*row++
		return nil
	}

	headerCells := make([]interface{}, len(tariffRateHeaders))
	for i, h := range tariffRateHeaders {
		headerCells[i] = h
	}
	if err := writeCells(headerCells); err != nil {
		return err
	}

	var totalCategories, totalRates, totalDecls int
	for _, entry := range entries {
		err := writeCells([]interface{}{
			entry.TariffCode,
			entry.RateCategoryCount,
			strings.Join(entry.RateCategories, ", "),
			entry.DutyRateCount,
			strings.Join(entry.DutyRates, ", "),
			entry.Declarations,
		})
		if err != nil {
			return err
		}
		totalCategories += entry.RateCategoryCount
		totalRates += entry.DutyRateCount
		totalDecls += entry.Declarations
	}
	if err := writeCells([]interface{}{"Total", totalCategories, "", totalRates, "", totalDecls}); err != nil {
		return err
	}
	*row++
	return nil
}

// verificationMethods is the free-text guidance sheet carried on every
// report, describing how each flagged result should be verified.
var verificationMethods = []string{
	"Verification Methods",
	"",
	"1. Refund Review: confirm the rate category is A and the effective duty rate is at least 8%.",
	"   Cross-check the per-line duty against the formula: actual duty x line amount / line settlement amount.",
	"   Lines flagged for FTA refund review have matching shipment-origin and country-of-origin codes;",
	"   verify the certificate of origin before filing a post-clearance refund claim.",
	"2. Low Risk: lines below the 8% effective rate, excluding F-prefixed 4-character rate categories.",
	"   Spot-check a sample against the original declarations.",
	"3. Tariff Risk: specifications declared under more than one tariff code. Review the flagged",
	"   specifications and confirm which code is correct; amend inconsistent declarations.",
	"4. Price Risk: unit-price statistics per specification. Deviation ratio is (max - min) / mean.",
	"   Tiers: above 50% very-high, above 30% high, above 10% moderate, otherwise low.",
	"   Groups with a zero mean price always need review. Investigate very-high and high groups first.",
}

func (w *ExcelWriter) writeVerificationSheet(f *excelize.File, styles *workbookStyles) error {
	for i, line := range verificationMethods {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellValue(SheetVerification, cell, line); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetVerification, "A1", "A1", styles.header); err != nil {
		return err
	}
	return f.SetColWidth(SheetVerification, "A", "A", 110)
}

func (w *ExcelWriter) writeRawDataSheet(f *excelize.File, styles *workbookStyles, report *analysis.Report) error {
	table := report.Table
	if table == nil || len(table.Columns) == 0 {
		return nil
	}

	max := table.Len()
	if max > rawDataRowCap {
		max = rawDataRowCap
	}
	rows := make([][]interface{}, max)
	for i := 0; i < max; i++ {
		row := make([]interface{}, len(table.Columns))
		for j := range table.Columns {
			if j < len(table.Rows[i]) {
				row[j] = table.Rows[i][j]
			} else {
				row[j] = ""
			}
		}
		rows[i] = row
	}

	if table.Len() > rawDataRowCap {
		w.logger.Info("raw data sheet truncated",
			slog.Int("rows", table.Len()),
			slog.Int("cap", rawDataRowCap))
	}

	return writeTableSheet(f, SheetRawData, styles, table.Columns, rows, nil)
}

// writeTableSheet writes a header row plus data rows with the shared styles,
// an auto filter, a frozen header row, and width-capped columns.
func writeTableSheet(f *excelize.File, sheet string, styles *workbookStyles, headers []string, rows [][]interface{}, highlight func(row, col int) bool) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
			style := styles.data
			if highlight != nil && highlight(r, c) {
				style = styles.highlight
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}

	// Column widths follow the widest cell, capped so no column dominates.
	for col, header := range headers {
		width := len(header)
		for _, row := range rows {
			if col < len(row) {
				if l := len(fmt.Sprint(row[col])); l > width {
					width = l
				}
			}
		}
		if width > 48 {
			width = 48
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(width+2)); err != nil {
			return err
		}
	}

	lastCell, err := excelize.CoordinatesToCellName(len(headers), len(rows)+1)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, "A1:"+lastCell, nil); err != nil {
		return err
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
