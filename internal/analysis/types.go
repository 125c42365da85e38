package analysis

import (
	"fmt"
	"time"

	"idacli/internal/dataprocessing"
)

// RiskTier classifies a price-variance group.
type RiskTier string

const (
	// TierNeedsReview marks groups whose mean price is zero.
	TierNeedsReview RiskTier = "needs-review"
	// TierVeryHigh marks deviation ratios above 50%.
	TierVeryHigh RiskTier = "very-high"
	// TierHigh marks deviation ratios above 30%.
	TierHigh RiskTier = "high"
	// TierModerate marks deviation ratios above 10%.
	TierModerate RiskTier = "moderate"
	// TierLow marks everything else.
	TierLow RiskTier = "low"
)

// ClassifyTier applies the canonical tier order, first match wins. The
// boundaries are strict: a ratio of exactly 0.5 is "high", not "very-high".
func ClassifyTier(meanPrice, deviationRatio float64) RiskTier {
	switch {
	case meanPrice == 0:
		return TierNeedsReview
	case deviationRatio > 0.5:
		return TierVeryHigh
	case deviationRatio > 0.3:
		return TierHigh
	case deviationRatio > 0.1:
		return TierModerate
	default:
		return TierLow
	}
}

// Warning records a recoverable condition: a missing column, a skipped
// derived feature, or a step that had to return an empty result. Warnings
// are surfaced to the operator; nothing is skipped silently.
type Warning struct {
	Step    string `json:"step"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// StepError records a pass that failed unexpectedly. The failing step
// returns an empty result; independent steps still run.
type StepError struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

func (e StepError) Error() string {
	return fmt.Sprintf("analysis step %s failed: %s", e.Step, e.Message)
}

// LineItem is one declaration line as consumed by the filter passes, with
// the derived per-line duty and FTA-review flag attached.
type LineItem struct {
	Index           int     `json:"index"`
	DeclarationNo   string  `json:"declaration_no"`
	ClearanceDate   string  `json:"clearance_date"`
	BLNo            string  `json:"bl_no"`
	TariffCode      string  `json:"tariff_code"`
	RateCategory    string  `json:"rate_category"`
	RateDescription string  `json:"rate_description"`
	DutyRate        float64 `json:"duty_rate"`
	ShipmentOrigin  string  `json:"shipment_origin"`
	CountryOrigin   string  `json:"country_of_origin"`
	FTAReview       bool    `json:"fta_review"`
	Spec1           string  `json:"spec_1"`
	Spec2           string  `json:"spec_2"`
	Spec3           string  `json:"spec_3"`
	Ingredient1     string  `json:"ingredient_1"`
	Ingredient2     string  `json:"ingredient_2"`
	Ingredient3     string  `json:"ingredient_3"`
	ActualDuty      float64 `json:"actual_duty"`
	PaymentMethod   string  `json:"payment_method"`
	Currency        string  `json:"currency"`
	TradePartner    string  `json:"trade_partner"`
	PartnerCountry  string  `json:"partner_country"`
	TradeType       string  `json:"trade_type"`
	ProductName     string  `json:"product_name"`
	ItemNo          string  `json:"item_no"`
	RowNo           string  `json:"row_no"`
	Quantity        string  `json:"quantity"`
	QuantityUnit    string  `json:"quantity_unit"`
	UnitPrice       float64 `json:"unit_price"`
	LineAmount      float64 `json:"line_amount"`
	LineDuty        float64 `json:"line_duty"`
}

// DutyStats aggregates the derived line duty over a filter result.
type DutyStats struct {
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Total float64 `json:"total"`
}

// RefundResult is the output of the refund-candidate filter.
type RefundResult struct {
	Items     []LineItem `json:"items"`
	LineDuty  DutyStats  `json:"line_duty"`
	FTACount  int        `json:"fta_count"`
	Warnings  []Warning  `json:"warnings,omitempty"`
}

// LowRiskResult is the output of the low-risk filter.
type LowRiskResult struct {
	Items    []LineItem `json:"items"`
	Warnings []Warning  `json:"warnings,omitempty"`
}

// TariffResult is the output of the tariff-code consistency check: every row
// whose product specification maps to more than one distinct tariff code.
type TariffResult struct {
	Items        []LineItem `json:"items"`
	FlaggedSpecs int        `json:"flagged_specs"`
	Warnings     []Warning  `json:"warnings,omitempty"`
}

// PriceGroup is one product-specification bucket of the price-variance pass.
type PriceGroup struct {
	Spec             string   `json:"spec"`
	GroupKey         string   `json:"group_key"`
	TariffCode       string   `json:"tariff_code"`
	TradeType        string   `json:"trade_type"`
	PaymentMethod    string   `json:"payment_method"`
	Currency         string   `json:"currency"`
	ProductName      string   `json:"product_name"`
	ItemNo           string   `json:"item_no"`
	RowNo            string   `json:"row_no"`
	Quantity         string   `json:"quantity"`
	QuantityUnit     string   `json:"quantity_unit"`
	MinDeclarationNo string   `json:"min_declaration_no"`
	MaxDeclarationNo string   `json:"max_declaration_no"`
	MinClearanceDate string   `json:"min_clearance_date"`
	MaxClearanceDate string   `json:"max_clearance_date"`
	MeanPrice        float64  `json:"mean_price"`
	MaxPrice         float64  `json:"max_price"`
	MinPrice         float64  `json:"min_price"`
	StdDev           float64  `json:"std_dev"`
	Count            int      `json:"count"`
	AmountTotal      float64  `json:"amount_total"`
	DeviationRatio   float64  `json:"deviation_ratio"`
	Tier             RiskTier `json:"tier"`
	Remark           string   `json:"remark"`
}

// PriceVarianceResult is the output of the price-variance grouping.
type PriceVarianceResult struct {
	Groups       []PriceGroup `json:"groups"`
	HighRisk     int          `json:"high_risk"`
	AvgDeviation float64      `json:"avg_deviation"`
	Warnings     []Warning    `json:"warnings,omitempty"`
}

// PriceVarianceOptions configures the price-variance grouping. ExtraKeys
// names additional canonical columns appended to the grouping key; the
// canonical behavior groups by product specification alone.
type PriceVarianceOptions struct {
	ExtraKeys []string
}

// CountEntry is one bucket of a summary count.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TariffRateEntry is one tariff code declared under more than one rate
// category or duty rate. The value lists keep first-appearance order.
type TariffRateEntry struct {
	TariffCode        string   `json:"tariff_code"`
	RateCategoryCount int      `json:"rate_category_count"`
	RateCategories    []string `json:"rate_categories"`
	DutyRateCount     int      `json:"duty_rate_count"`
	DutyRates         []string `json:"duty_rates"`
	Declarations      int      `json:"declarations"`
}

// Summary carries the workbook summary counts, computed over the original
// table before any filtering.
type Summary struct {
	Rows             int               `json:"rows"`
	Declarations     int               `json:"declarations"`
	ByTradeType      []CountEntry      `json:"by_trade_type"`
	ByRateCategory   []CountEntry      `json:"by_rate_category"`
	ByPaymentMethod  []CountEntry      `json:"by_payment_method"`
	RateByTariffCode []TariffRateEntry `json:"rate_by_tariff_code,omitempty"`
}

// Report is the result of one full analysis run.
type Report struct {
	RunID       string              `json:"run_id"`
	Source      string              `json:"source"`
	GeneratedAt time.Time           `json:"generated_at"`
	Rows        int                 `json:"rows"`
	Refund      RefundResult        `json:"refund"`
	LowRisk     LowRiskResult       `json:"low_risk"`
	Tariff      TariffResult        `json:"tariff"`
	Price       PriceVarianceResult `json:"price"`
	Summary     Summary             `json:"summary"`
	Warnings    []Warning           `json:"warnings,omitempty"`
	StepErrors  []StepError         `json:"step_errors,omitempty"`

	// Table is the normalized input, retained for the raw-data sheet.
	Table *dataprocessing.Table `json:"-"`
}
