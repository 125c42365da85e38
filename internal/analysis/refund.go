package analysis

import (
	"log/slog"

	"idacli/internal/dataprocessing"
)

// Refund filter constants. Category "A" lines at or above the 8% effective
// rate are candidates for post-clearance duty refund review.
const (
	refundRateCategory = "A"
	refundMinDutyRate  = 8.0
)

// RefundCandidates selects every line with rate category "A" and an
// effective duty rate of at least 8%, in input order, and derives the
// per-line duty and FTA-review flag for each match.
func RefundCandidates(t *dataprocessing.Table) RefundResult {
	result := RefundResult{}

	withDuty := hasLineDutyInputs(t)
	if !withDuty {
		result.Warnings = append(result.Warnings, missingLineDutyWarning("refund", t)...)
	}

	for i := 0; i < t.Len(); i++ {
		category := t.Value(i, dataprocessing.ColRateCategory)
		rate := t.Float(i, dataprocessing.ColDutyRate)
		if category != refundRateCategory || rate < refundMinDutyRate {
			continue
		}

		item := bindLine(t, i, withDuty)
		result.Items = append(result.Items, item)

		result.LineDuty.Total += item.LineDuty
		if item.LineDuty > result.LineDuty.Max {
			result.LineDuty.Max = item.LineDuty
		}
		if item.FTAReview {
			result.FTACount++
		}
	}

	if n := len(result.Items); n > 0 {
		result.LineDuty.Mean = result.LineDuty.Total / float64(n)
	}

	slog.Info("refund candidate filter complete",
		slog.Int("matches", len(result.Items)),
		slog.Int("fta_review", result.FTACount),
		slog.Float64("line_duty_total", result.LineDuty.Total))

	return result
}
