package dataprocessing

import "strings"

// Canonical column keys. Analysis code addresses columns through these keys
// rather than raw header text, since header names vary between brokers.
const (
	ColDeclarationNo   = "declaration_no"
	ColClearanceDate   = "clearance_date"
	ColBLNo            = "bl_no"
	ColTariffCode      = "tariff_code"
	ColRateCategory    = "rate_category"
	ColRateDescription = "rate_description"
	ColDutyRate        = "duty_rate"
	ColShipmentOrigin  = "shipment_origin"
	ColCountryOrigin   = "country_of_origin"
	ColSpec1           = "spec_1"
	ColSpec2           = "spec_2"
	ColSpec3           = "spec_3"
	ColIngredient1     = "ingredient_1"
	ColIngredient2     = "ingredient_2"
	ColIngredient3     = "ingredient_3"
	ColActualDuty      = "actual_duty"
	ColPaymentMethod   = "payment_method"
	ColCurrency        = "currency"
	ColTradeType       = "trade_type"
	ColTradePartner    = "trade_partner"
	ColPartnerCountry  = "partner_country"
	ColProductName     = "product_name"
	ColItemNo          = "item_no"
	ColRowNo           = "row_no"
	ColQuantity        = "quantity"
	ColQuantityUnit    = "quantity_unit"
	ColUnitPrice       = "unit_price"
	ColLineAmount      = "line_amount"
	ColSettlement      = "line_settlement_amount"
	ColTaxableUSD      = "taxable_value_usd"
)

// DefaultRateCategory is the sentinel used when no rate-category column can
// be resolved from the source file.
const DefaultRateCategory = "N/A"

// Positional fallback for files exported by the standard declaration system,
// which carries the rate category and effective duty rate at fixed offsets.
const (
	rateCategoryIndex = 70
	dutyRateIndex     = 71
)

// matchColumn maps a normalized header to a canonical column key. Matching is
// deliberately loose, the same way the source files are loose about naming.
func matchColumn(header string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, "-", " ")
	h = strings.ReplaceAll(h, "_", " ")

	switch {
	case h == "declaration no" || h == "declaration number" || h == "import declaration no" || h == "import declaration number":
		return ColDeclarationNo, true
	case h == "clearance date" || h == "acceptance date" || h == "cleared date":
		return ColClearanceDate, true
	case h == "bl no" || h == "b/l no" || h == "bl number" || h == "bill of lading":
		return ColBLNo, true
	case h == "tariff code" || h == "hs code" || h == "tariff no" || h == "hs no":
		return ColTariffCode, true
	case h == "rate category" || h == "rate class" || h == "duty rate category" || h == "tariff rate category":
		return ColRateCategory, true
	case h == "rate description" || h == "rate category description":
		return ColRateDescription, true
	case h == "duty rate" || h == "effective duty rate" || h == "applied duty rate":
		return ColDutyRate, true
	case h == "shipment origin" || h == "shipment origin code" || h == "export country code" || h == "country of export":
		return ColShipmentOrigin, true
	case h == "country of origin" || h == "origin country code" || h == "origin code":
		return ColCountryOrigin, true
	case h == "spec 1" || h == "spec1" || h == "specification 1" || h == "product spec 1":
		return ColSpec1, true
	case h == "spec 2" || h == "spec2" || h == "specification 2" || h == "product spec 2":
		return ColSpec2, true
	case h == "spec 3" || h == "spec3" || h == "specification 3" || h == "product spec 3":
		return ColSpec3, true
	case h == "ingredient 1" || h == "ingredient1" || h == "component 1":
		return ColIngredient1, true
	case h == "ingredient 2" || h == "ingredient2" || h == "component 2":
		return ColIngredient2, true
	case h == "ingredient 3" || h == "ingredient3" || h == "component 3":
		return ColIngredient3, true
	case h == "actual duty" || h == "actual duty amount" || h == "duty amount":
		return ColActualDuty, true
	case h == "payment method" || h == "payment terms":
		return ColPaymentMethod, true
	case h == "currency" || h == "payment currency" || h == "currency unit":
		return ColCurrency, true
	case h == "trade type" || h == "transaction type":
		return ColTradeType, true
	case h == "trade partner" || h == "trading partner" || h == "partner name":
		return ColTradePartner, true
	case h == "partner country" || h == "partner country code" || h == "trade partner country":
		return ColPartnerCountry, true
	case h == "product name" || h == "trade goods name" || h == "goods description":
		return ColProductName, true
	case h == "item no" || h == "item number" || h == "line no":
		return ColItemNo, true
	case h == "row no" || h == "row number":
		return ColRowNo, true
	case h == "quantity" || h == "quantity 1" || h == "qty":
		return ColQuantity, true
	case h == "quantity unit" || h == "quantity unit 1" || h == "qty unit" || h == "unit":
		return ColQuantityUnit, true
	case h == "unit price" || h == "price per unit":
		return ColUnitPrice, true
	case h == "line amount" || h == "amount" || h == "item amount":
		return ColLineAmount, true
	case h == "line settlement amount" || h == "settlement amount" || h == "item settlement amount":
		return ColSettlement, true
	case h == "taxable value usd" || h == "taxable value (usd)" || h == "dutiable value usd":
		return ColTaxableUSD, true
	}
	return "", false
}
