package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	docx "github.com/fumiama/go-docx"

	"idacli/internal/analysis"
	apperrors "idacli/internal/errors"
)

// sampleRowCap bounds the per-analysis sample tables in the document report.
const sampleRowCap = 10

// DocumentWriter renders the report as a Word document: a title, one section
// per analysis with a summary paragraph and a sample table.
type DocumentWriter struct {
	logger *slog.Logger
}

// NewDocumentWriter creates a document writer.
func NewDocumentWriter(logger *slog.Logger) *DocumentWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentWriter{logger: logger}
}

// WriteDocument writes the document report to path.
func (w *DocumentWriter) WriteDocument(path string, report *analysis.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err)
	}

	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().AddText("Import Declaration Analysis Report").Size("36").Bold()
	doc.AddParagraph().AddText(report.GeneratedAt.Format("2006-01-02"))
	doc.AddParagraph().AddText(fmt.Sprintf("Source: %s, %d rows analyzed.", report.Source, report.Rows))

	w.addRefundSection(doc, report)
	w.addLowRiskSection(doc, report)
	w.addTariffSection(doc, report)
	w.addPriceSection(doc, report)
	w.addWarningsSection(doc, report)

	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create document file", err)
	}
	defer f.Close()

	if _, err := doc.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	w.logger.Info("document report written",
		slog.String("path", path),
		slog.String("run_id", report.RunID))
	return nil
}

// documentSampleHeaders is the compact column set used in sample tables;
// the full column set lives in the workbook.
var documentSampleHeaders = []string{
	"Declaration No", "Tariff Code", "Rate Category", "Duty Rate",
	"Spec 1", "Unit Price", "Line Amount", "Line Duty",
}

func documentSampleRow(item analysis.LineItem) []string {
	return []string{
		item.DeclarationNo,
		item.TariffCode,
		item.RateCategory,
		fmt.Sprintf("%.2f", item.DutyRate),
		item.Spec1,
		fmt.Sprintf("%.2f", item.UnitPrice),
		fmt.Sprintf("%.2f", item.LineAmount),
		fmt.Sprintf("%.2f", item.LineDuty),
	}
}

func (w *DocumentWriter) addRefundSection(doc *docx.Docx, report *analysis.Report) {
	doc.AddParagraph().AddText("1. Refund Review").Size("28").Bold()
	doc.AddParagraph().AddText(fmt.Sprintf(
		"%d lines qualify for duty-refund review (rate category A, effective duty rate of 8%% or more).",
		len(report.Refund.Items)))
	if report.Refund.FTACount > 0 {
		doc.AddParagraph().AddText(fmt.Sprintf(
			"Of these, %d lines also qualify for FTA post-clearance refund review.", report.Refund.FTACount)).Bold()
	}
	if len(report.Refund.Items) > 0 {
		doc.AddParagraph().AddText(fmt.Sprintf(
			"Per-line duty: mean %.2f, max %.2f, total %.2f.",
			report.Refund.LineDuty.Mean, report.Refund.LineDuty.Max, report.Refund.LineDuty.Total))
		w.addLineItemTable(doc, report.Refund.Items)
	}
	doc.AddParagraph().AddText(
		"Per-line duty formula: actual duty x line amount / line settlement amount.").Italic()
}

func (w *DocumentWriter) addLowRiskSection(doc *docx.Docx, report *analysis.Report) {
	doc.AddParagraph().AddText("2. Low Risk").Size("28").Bold()
	doc.AddParagraph().AddText(fmt.Sprintf(
		"%d lines fall below the 8%% effective rate outside the F-prefixed rate categories.",
		len(report.LowRisk.Items)))
	if len(report.LowRisk.Items) > 0 {
		w.addLineItemTable(doc, report.LowRisk.Items)
	}
}

func (w *DocumentWriter) addTariffSection(doc *docx.Docx, report *analysis.Report) {
	doc.AddParagraph().AddText("3. Tariff Risk").Size("28").Bold()
	if report.Tariff.FlaggedSpecs == 0 {
		doc.AddParagraph().AddText("No specification is declared under more than one tariff code.")
		return
	}
	doc.AddParagraph().AddText(fmt.Sprintf(
		"%d specifications are declared under more than one tariff code, covering %d lines.",
		report.Tariff.FlaggedSpecs, len(report.Tariff.Items)))
	w.addLineItemTable(doc, report.Tariff.Items)
}

func (w *DocumentWriter) addPriceSection(doc *docx.Docx, report *analysis.Report) {
	doc.AddParagraph().AddText("4. Price Risk").Size("28").Bold()
	doc.AddParagraph().AddText(fmt.Sprintf(
		"%d price groups analyzed; %d are high risk; average deviation ratio %.1f%%.",
		len(report.Price.Groups), report.Price.HighRisk, report.Price.AvgDeviation*100))

	tierCounts := make(map[analysis.RiskTier]int)
	for _, g := range report.Price.Groups {
		tierCounts[g.Tier]++
	}
	for _, tier := range []analysis.RiskTier{
		analysis.TierVeryHigh, analysis.TierHigh, analysis.TierModerate,
		analysis.TierLow, analysis.TierNeedsReview,
	} {
		if tierCounts[tier] > 0 {
			doc.AddParagraph().AddText(fmt.Sprintf("- %s: %d groups", tier, tierCounts[tier]))
		}
	}

	if len(report.Price.Groups) == 0 {
		return
	}

	headers := []string{"Spec 1", "Mean Price", "Min Price", "Max Price", "Count", "Risk Tier", "Remark"}
	n := len(report.Price.Groups)
	if n > sampleRowCap {
		n = sampleRowCap
	}
	table := doc.AddTable(n+1, len(headers), 9000, nil)
	fillTableRow(table, 0, headers)
	for i := 0; i < n; i++ {
		g := report.Price.Groups[i]
		fillTableRow(table, i+1, []string{
			g.Spec,
			fmt.Sprintf("%.2f", g.MeanPrice),
			fmt.Sprintf("%.2f", g.MinPrice),
			fmt.Sprintf("%.2f", g.MaxPrice),
			fmt.Sprintf("%d", g.Count),
			string(g.Tier),
			g.Remark,
		})
	}
	if len(report.Price.Groups) > sampleRowCap {
		doc.AddParagraph().AddText(fmt.Sprintf("Showing the first %d of %d groups.", sampleRowCap, len(report.Price.Groups))).Italic()
	}
}

func (w *DocumentWriter) addWarningsSection(doc *docx.Docx, report *analysis.Report) {
	if len(report.Warnings) == 0 && len(report.StepErrors) == 0 {
		return
	}
	doc.AddParagraph().AddText("Warnings").Size("28").Bold()
	for _, warning := range report.Warnings {
		msg := warning.Step + ": " + warning.Message
		if warning.Column != "" {
			msg = warning.Step + " [" + warning.Column + "]: " + warning.Message
		}
		doc.AddParagraph().AddText("- " + msg)
	}
	for _, stepErr := range report.StepErrors {
		doc.AddParagraph().AddText("- " + stepErr.Error())
	}
}

func (w *DocumentWriter) addLineItemTable(doc *docx.Docx, items []analysis.LineItem) {
	n := len(items)
	if n > sampleRowCap {
		n = sampleRowCap
	}
	table := doc.AddTable(n+1, len(documentSampleHeaders), 9000, nil)
	fillTableRow(table, 0, documentSampleHeaders)
	for i := 0; i < n; i++ {
		fillTableRow(table, i+1, documentSampleRow(items[i]))
	}
	if len(items) > sampleRowCap {
		doc.AddParagraph().AddText(fmt.Sprintf("Showing the first %d of %d lines.", sampleRowCap, len(items))).Italic()
	}
}

func fillTableRow(table *docx.Table, row int, values []string) {
	if row >= len(table.TableRows) {
		return
	}
	cells := table.TableRows[row].TableCells
	for i, value := range values {
		if i < len(cells) {
			cells[i].AddParagraph().AddText(value)
		}
	}
}
