package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"idacli/internal/dataprocessing"
)

// Pipeline runs the full analysis over one loaded table. Each run is
// independent and stateless: the table is normalized once, the passes
// execute sequentially on one goroutine, and all intermediate state is
// discarded with the report.
type Pipeline struct {
	logger *slog.Logger
	opts   PriceVarianceOptions
}

// NewPipeline creates a pipeline with the given price-variance options.
func NewPipeline(logger *slog.Logger, opts PriceVarianceOptions) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger, opts: opts}
}

// Run normalizes the table and executes the four passes plus the summary.
// A panic inside any pass is contained at the step boundary: the pass
// reports a StepError and an empty result, and the remaining passes still
// run. No pass's failure prevents an unrelated pass from executing.
func (p *Pipeline) Run(ctx context.Context, raw *dataprocessing.Table, source string) *Report {
	start := time.Now()
	report := &Report{
		RunID:       uuid.NewString(),
		Source:      source,
		GeneratedAt: start,
	}

	table := dataprocessing.Normalize(raw)
	report.Table = table
	report.Rows = table.Len()

	// Defaulted columns are a recoverable condition the operator should see.
	for key, res := range table.Resolutions() {
		if res.Method == dataprocessing.ResolvedByDefault {
			report.Warnings = append(report.Warnings, Warning{
				Step:    "normalize",
				Column:  key,
				Message: "column not found by name or position; documented default substituted",
			})
		}
	}

	p.runStep(ctx, report, "refund", func() {
		report.Refund = RefundCandidates(table)
		report.Warnings = append(report.Warnings, report.Refund.Warnings...)
	})
	p.runStep(ctx, report, "low-risk", func() {
		report.LowRisk = LowRisk(table)
		report.Warnings = append(report.Warnings, report.LowRisk.Warnings...)
	})
	p.runStep(ctx, report, "tariff-consistency", func() {
		report.Tariff = TariffConsistency(table)
		report.Warnings = append(report.Warnings, report.Tariff.Warnings...)
	})
	p.runStep(ctx, report, "price-variance", func() {
		report.Price = PriceVariance(table, p.opts)
		report.Warnings = append(report.Warnings, report.Price.Warnings...)
	})
	p.runStep(ctx, report, "summary", func() {
		report.Summary = Summarize(table)
	})

	p.logger.InfoContext(ctx, "analysis run complete",
		slog.String("run_id", report.RunID),
		slog.String("source", source),
		slog.Int("rows", report.Rows),
		slog.Int("refund_candidates", len(report.Refund.Items)),
		slog.Int("low_risk", len(report.LowRisk.Items)),
		slog.Int("tariff_flagged_rows", len(report.Tariff.Items)),
		slog.Int("price_groups", len(report.Price.Groups)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Int("step_errors", len(report.StepErrors)),
		slog.Duration("elapsed", time.Since(start)))

	return report
}

// runStep executes one pass with panic containment.
func (p *Pipeline) runStep(ctx context.Context, report *Report, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			stepErr := StepError{Step: name, Message: fmt.Sprintf("%v", r)}
			report.StepErrors = append(report.StepErrors, stepErr)
			report.Warnings = append(report.Warnings, Warning{
				Step:    name,
				Message: "step failed and returned an empty result; remaining steps continue",
			})
			p.logger.ErrorContext(ctx, "analysis step failed",
				slog.String("step", name),
				slog.String("error", stepErr.Message))
		}
	}()
	fn()
}
