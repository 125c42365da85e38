package analysis

import (
	"idacli/internal/dataprocessing"
)

// lineDutyColumns are the inputs the derived per-line duty needs. When any
// of them is absent the feature is skipped with a warning, never an error.
var lineDutyColumns = []string{
	dataprocessing.ColActualDuty,
	dataprocessing.ColLineAmount,
	dataprocessing.ColSettlement,
}

func hasLineDutyInputs(t *dataprocessing.Table) bool {
	for _, key := range lineDutyColumns {
		if !t.HasCanonical(key) {
			return false
		}
	}
	return true
}

// lineDuty computes actual duty x line amount / line settlement amount,
// or 0 when the settlement amount is zero.
func lineDuty(actualDuty, lineAmount, settlement float64) float64 {
	if settlement == 0 {
		return 0
	}
	return actualDuty * lineAmount / settlement
}

// ftaReview reports whether a line qualifies for FTA post-clearance refund
// review: shipment origin and country of origin both present and equal.
func ftaReview(shipmentOrigin, countryOrigin string) bool {
	return shipmentOrigin != "" && shipmentOrigin == countryOrigin
}

// bindLine materializes one table row as a LineItem, including the derived
// columns when their inputs exist.
func bindLine(t *dataprocessing.Table, row int, withLineDuty bool) LineItem {
	item := LineItem{
		Index:           row,
		DeclarationNo:   t.Value(row, dataprocessing.ColDeclarationNo),
		ClearanceDate:   t.Value(row, dataprocessing.ColClearanceDate),
		BLNo:            t.Value(row, dataprocessing.ColBLNo),
		TariffCode:      t.Value(row, dataprocessing.ColTariffCode),
		RateCategory:    t.Value(row, dataprocessing.ColRateCategory),
		RateDescription: t.Value(row, dataprocessing.ColRateDescription),
		DutyRate:        t.Float(row, dataprocessing.ColDutyRate),
		ShipmentOrigin:  t.Value(row, dataprocessing.ColShipmentOrigin),
		CountryOrigin:   t.Value(row, dataprocessing.ColCountryOrigin),
		Spec1:           t.Value(row, dataprocessing.ColSpec1),
		Spec2:           t.Value(row, dataprocessing.ColSpec2),
		Spec3:           t.Value(row, dataprocessing.ColSpec3),
		Ingredient1:     t.Value(row, dataprocessing.ColIngredient1),
		Ingredient2:     t.Value(row, dataprocessing.ColIngredient2),
		Ingredient3:     t.Value(row, dataprocessing.ColIngredient3),
		ActualDuty:      t.Float(row, dataprocessing.ColActualDuty),
		PaymentMethod:   t.Value(row, dataprocessing.ColPaymentMethod),
		Currency:        t.Value(row, dataprocessing.ColCurrency),
		TradePartner:    t.Value(row, dataprocessing.ColTradePartner),
		PartnerCountry:  t.Value(row, dataprocessing.ColPartnerCountry),
		TradeType:       t.Value(row, dataprocessing.ColTradeType),
		ProductName:     t.Value(row, dataprocessing.ColProductName),
		ItemNo:          t.Value(row, dataprocessing.ColItemNo),
		RowNo:           t.Value(row, dataprocessing.ColRowNo),
		Quantity:        t.Value(row, dataprocessing.ColQuantity),
		QuantityUnit:    t.Value(row, dataprocessing.ColQuantityUnit),
		UnitPrice:       t.Float(row, dataprocessing.ColUnitPrice),
		LineAmount:      t.Float(row, dataprocessing.ColLineAmount),
	}

	if withLineDuty {
		item.LineDuty = lineDuty(item.ActualDuty, item.LineAmount, t.Float(row, dataprocessing.ColSettlement))
	}
	item.FTAReview = ftaReview(item.ShipmentOrigin, item.CountryOrigin)

	return item
}

// missingLineDutyWarning builds the warning emitted when the line-duty
// derivation has to be skipped.
func missingLineDutyWarning(step string, t *dataprocessing.Table) []Warning {
	var warnings []Warning
	for _, key := range lineDutyColumns {
		if !t.HasCanonical(key) {
			warnings = append(warnings, Warning{
				Step:    step,
				Column:  key,
				Message: "column absent; per-line duty defaulted to 0",
			})
		}
	}
	return warnings
}
