package analysis

import (
	"log/slog"
	"sort"

	"idacli/internal/dataprocessing"
)

// TariffConsistency groups lines by product specification, counts the
// distinct tariff codes per group, and returns every line belonging to a
// specification declared under more than one code. Output is stable-sorted
// by (specification, tariff code); ties keep original row order.
//
// When either column is absent the check yields an empty result with a
// warning, not an error.
func TariffConsistency(t *dataprocessing.Table) TariffResult {
	result := TariffResult{}

	for _, key := range []string{dataprocessing.ColSpec1, dataprocessing.ColTariffCode} {
		if !t.HasCanonical(key) {
			result.Warnings = append(result.Warnings, Warning{
				Step:    "tariff-consistency",
				Column:  key,
				Message: "column absent; consistency check skipped",
			})
		}
	}
	if len(result.Warnings) > 0 {
		return result
	}

	codesBySpec := make(map[string]map[string]struct{})
	for i := 0; i < t.Len(); i++ {
		spec := t.Value(i, dataprocessing.ColSpec1)
		code := t.Value(i, dataprocessing.ColTariffCode)
		if codesBySpec[spec] == nil {
			codesBySpec[spec] = make(map[string]struct{})
		}
		codesBySpec[spec][code] = struct{}{}
	}

	flagged := make(map[string]bool, len(codesBySpec))
	for spec, codes := range codesBySpec {
		if len(codes) > 1 {
			flagged[spec] = true
		}
	}
	result.FlaggedSpecs = len(flagged)

	withDuty := hasLineDutyInputs(t)
	if !withDuty {
		result.Warnings = append(result.Warnings, missingLineDutyWarning("tariff-consistency", t)...)
	}

	for i := 0; i < t.Len(); i++ {
		if flagged[t.Value(i, dataprocessing.ColSpec1)] {
			result.Items = append(result.Items, bindLine(t, i, withDuty))
		}
	}

	sort.SliceStable(result.Items, func(a, b int) bool {
		if result.Items[a].Spec1 != result.Items[b].Spec1 {
			return result.Items[a].Spec1 < result.Items[b].Spec1
		}
		return result.Items[a].TariffCode < result.Items[b].TariffCode
	})

	slog.Info("tariff consistency check complete",
		slog.Int("flagged_specs", result.FlaggedSpecs),
		slog.Int("rows", len(result.Items)))

	return result
}
