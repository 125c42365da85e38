package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"idacli/internal/dataprocessing"
)

// PriceVariance groups lines with a positive unit price by product
// specification (plus any configured extra keys), aggregates price
// statistics per group, and classifies each group into a risk tier from its
// deviation ratio. Groups are emitted sorted by key, so repeated runs over
// the same input are identical.
func PriceVariance(t *dataprocessing.Table, opts PriceVarianceOptions) PriceVarianceResult {
	result := PriceVarianceResult{}

	if !t.HasCanonical(dataprocessing.ColSpec1) {
		result.Warnings = append(result.Warnings, Warning{
			Step:    "price-variance",
			Column:  dataprocessing.ColSpec1,
			Message: "column absent; price-variance grouping skipped",
		})
		return result
	}
	if !t.HasCanonical(dataprocessing.ColUnitPrice) {
		result.Warnings = append(result.Warnings, Warning{
			Step:    "price-variance",
			Column:  dataprocessing.ColUnitPrice,
			Message: "column absent; price-variance grouping skipped",
		})
		return result
	}

	groupKeys := append([]string{dataprocessing.ColSpec1}, opts.ExtraKeys...)

	buckets := make(map[string][]int)
	order := make([]string, 0)
	for i := 0; i < t.Len(); i++ {
		if t.Float(i, dataprocessing.ColUnitPrice) <= 0 {
			continue
		}
		parts := make([]string, len(groupKeys))
		for j, key := range groupKeys {
			parts[j] = t.Value(i, key)
		}
		key := strings.Join(parts, "\x1f")
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	sort.Strings(order)

	var deviationSum float64
	for _, key := range order {
		rows := buckets[key]
		group := aggregateGroup(t, rows)
		group.GroupKey = strings.ReplaceAll(key, "\x1f", " / ")

		result.Groups = append(result.Groups, group)
		deviationSum += group.DeviationRatio
		if group.Tier == TierHigh || group.Tier == TierVeryHigh {
			result.HighRisk++
		}
	}

	if len(result.Groups) > 0 {
		result.AvgDeviation = deviationSum / float64(len(result.Groups))
	}

	slog.Info("price variance grouping complete",
		slog.Int("groups", len(result.Groups)),
		slog.Int("high_risk", result.HighRisk),
		slog.Float64("avg_deviation", result.AvgDeviation))

	return result
}

// aggregateGroup computes the per-group statistics over the given row
// indexes. First-value passthroughs take the earliest row in input order;
// declaration number and clearance date carry their min and max.
func aggregateGroup(t *dataprocessing.Table, rows []int) PriceGroup {
	first := rows[0]
	group := PriceGroup{
		Spec:          t.Value(first, dataprocessing.ColSpec1),
		TariffCode:    t.Value(first, dataprocessing.ColTariffCode),
		TradeType:     t.Value(first, dataprocessing.ColTradeType),
		PaymentMethod: t.Value(first, dataprocessing.ColPaymentMethod),
		Currency:      t.Value(first, dataprocessing.ColCurrency),
		ProductName:   t.Value(first, dataprocessing.ColProductName),
		ItemNo:        t.Value(first, dataprocessing.ColItemNo),
		RowNo:         t.Value(first, dataprocessing.ColRowNo),
		Quantity:      t.Value(first, dataprocessing.ColQuantity),
		QuantityUnit:  t.Value(first, dataprocessing.ColQuantityUnit),
		Count:         len(rows),
	}

	var sum float64
	group.MinPrice = math.Inf(1)
	for _, i := range rows {
		price := t.Float(i, dataprocessing.ColUnitPrice)
		sum += price
		if price > group.MaxPrice {
			group.MaxPrice = price
		}
		if price < group.MinPrice {
			group.MinPrice = price
		}
		group.AmountTotal += t.Float(i, dataprocessing.ColLineAmount)

		decl := t.Value(i, dataprocessing.ColDeclarationNo)
		if decl != "" {
			if group.MinDeclarationNo == "" || decl < group.MinDeclarationNo {
				group.MinDeclarationNo = decl
			}
			if decl > group.MaxDeclarationNo {
				group.MaxDeclarationNo = decl
			}
		}
		date := t.Value(i, dataprocessing.ColClearanceDate)
		if date != "" {
			if group.MinClearanceDate == "" || date < group.MinClearanceDate {
				group.MinClearanceDate = date
			}
			if date > group.MaxClearanceDate {
				group.MaxClearanceDate = date
			}
		}
	}
	group.MeanPrice = sum / float64(len(rows))

	// Sample standard deviation; a single observation has none.
	if len(rows) > 1 {
		var sq float64
		for _, i := range rows {
			d := t.Float(i, dataprocessing.ColUnitPrice) - group.MeanPrice
			sq += d * d
		}
		group.StdDev = math.Sqrt(sq / float64(len(rows)-1))
	}

	if group.MeanPrice > 0 {
		group.DeviationRatio = (group.MaxPrice - group.MinPrice) / group.MeanPrice
	}

	group.Tier = ClassifyTier(group.MeanPrice, group.DeviationRatio)
	if group.MeanPrice == 0 {
		group.Remark = "mean price needs verification"
	} else {
		group.Remark = fmt.Sprintf("price deviation: %.1f%%", group.DeviationRatio*100)
	}

	return group
}
