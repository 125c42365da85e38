package analysis

import (
	"log/slog"
	"regexp"

	"idacli/internal/dataprocessing"
)

// lowRiskMaxDutyRate is the exclusive upper bound for the low-risk filter.
const lowRiskMaxDutyRate = 8.0

// fRatePattern matches the 4-character FTA rate categories ("F" plus any
// three characters) that are excluded from the low-risk set.
var fRatePattern = regexp.MustCompile(`^F.{3}$`)

// LowRisk selects every line with an effective duty rate below 8% whose rate
// category is not an F-prefixed 4-character code. The filter is stable:
// output preserves input row order.
func LowRisk(t *dataprocessing.Table) LowRiskResult {
	result := LowRiskResult{}

	withDuty := hasLineDutyInputs(t)
	if !withDuty {
		result.Warnings = append(result.Warnings, missingLineDutyWarning("low-risk", t)...)
	}

	for i := 0; i < t.Len(); i++ {
		rate := t.Float(i, dataprocessing.ColDutyRate)
		if rate >= lowRiskMaxDutyRate {
			continue
		}
		if fRatePattern.MatchString(t.Value(i, dataprocessing.ColRateCategory)) {
			continue
		}
		result.Items = append(result.Items, bindLine(t, i, withDuty))
	}

	slog.Info("low-risk filter complete", slog.Int("matches", len(result.Items)))

	return result
}
