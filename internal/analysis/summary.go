package analysis

import (
	"fmt"
	"sort"

	"idacli/internal/dataprocessing"
)

// Summarize computes the workbook summary counts over the full table:
// distinct declaration count, and distinct-declaration counts bucketed by
// trade type, rate category and payment method.
func Summarize(t *dataprocessing.Table) Summary {
	s := Summary{Rows: t.Len()}

	if t.HasCanonical(dataprocessing.ColDeclarationNo) {
		s.Declarations = distinctCount(t, dataprocessing.ColDeclarationNo)
	} else {
		// Without a declaration number column every row counts once.
		s.Declarations = t.Len()
	}

	s.ByTradeType = countDeclarationsBy(t, dataprocessing.ColTradeType)
	s.ByRateCategory = countDeclarationsBy(t, dataprocessing.ColRateCategory)
	s.ByPaymentMethod = countDeclarationsBy(t, dataprocessing.ColPaymentMethod)
	s.RateByTariffCode = rateByTariffCode(t)

	return s
}

// rateByTariffCode flags tariff codes declared under more than one rate
// category or more than one duty rate. Requires the tariff-code,
// rate-category, duty-rate and declaration-number columns; when any is
// absent no breakdown is produced.
func rateByTariffCode(t *dataprocessing.Table) []TariffRateEntry {
	required := []string{
		dataprocessing.ColTariffCode,
		dataprocessing.ColRateCategory,
		dataprocessing.ColDutyRate,
		dataprocessing.ColDeclarationNo,
	}
	for _, key := range required {
		if !t.HasCanonical(key) {
			return nil
		}
	}

	type bucket struct {
		categories []string
		catSeen    map[string]struct{}
		rates      []float64
		rateSeen   map[float64]struct{}
		decls      map[string]struct{}
	}
	buckets := make(map[string]*bucket)

	for i := 0; i < t.Len(); i++ {
		code := t.Value(i, dataprocessing.ColTariffCode)
		b := buckets[code]
		if b == nil {
			b = &bucket{
				catSeen:  make(map[string]struct{}),
				rateSeen: make(map[float64]struct{}),
				decls:    make(map[string]struct{}),
			}
			buckets[code] = b
		}
		category := t.Value(i, dataprocessing.ColRateCategory)
		if _, seen := b.catSeen[category]; !seen {
			b.catSeen[category] = struct{}{}
			b.categories = append(b.categories, category)
		}
		rate := t.Float(i, dataprocessing.ColDutyRate)
		if _, seen := b.rateSeen[rate]; !seen {
			b.rateSeen[rate] = struct{}{}
			b.rates = append(b.rates, rate)
		}
		b.decls[t.Value(i, dataprocessing.ColDeclarationNo)] = struct{}{}
	}

	var entries []TariffRateEntry
	for code, b := range buckets {
		if len(b.categories) <= 1 && len(b.rates) <= 1 {
			continue
		}
		rates := make([]string, len(b.rates))
		for i, rate := range b.rates {
			rates[i] = fmt.Sprintf("%.1f%%", rate)
		}
		entries = append(entries, TariffRateEntry{
			TariffCode:        code,
			RateCategoryCount: len(b.categories),
			RateCategories:    b.categories,
			DutyRateCount:     len(b.rates),
			DutyRates:         rates,
			Declarations:      len(b.decls),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].TariffCode < entries[j].TariffCode })
	return entries
}

func distinctCount(t *dataprocessing.Table, key string) int {
	seen := make(map[string]struct{})
	for i := 0; i < t.Len(); i++ {
		seen[t.Value(i, key)] = struct{}{}
	}
	return len(seen)
}

// countDeclarationsBy buckets distinct declaration numbers by the given
// column. When the bucket column is absent the result is empty; when the
// declaration-number column is absent rows are counted instead.
func countDeclarationsBy(t *dataprocessing.Table, key string) []CountEntry {
	if !t.HasCanonical(key) {
		return nil
	}

	hasDecl := t.HasCanonical(dataprocessing.ColDeclarationNo)
	declsByBucket := make(map[string]map[string]struct{})
	rowsByBucket := make(map[string]int)

	for i := 0; i < t.Len(); i++ {
		bucket := t.Value(i, key)
		rowsByBucket[bucket]++
		if hasDecl {
			if declsByBucket[bucket] == nil {
				declsByBucket[bucket] = make(map[string]struct{})
			}
			declsByBucket[bucket][t.Value(i, dataprocessing.ColDeclarationNo)] = struct{}{}
		}
	}

	entries := make([]CountEntry, 0, len(rowsByBucket))
	for bucket := range rowsByBucket {
		count := rowsByBucket[bucket]
		if hasDecl {
			count = len(declsByBucket[bucket])
		}
		entries = append(entries, CountEntry{Key: bucket, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}
