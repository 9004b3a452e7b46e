package contracts

import "time"

// BuybackQuality labels buyback discipline. It is an externally supplied
// categorical input from the fundamentals provider; no derivation from raw
// data exists on our side.
type BuybackQuality string

const (
	BuybackDisciplined BuybackQuality = "disciplined"
	BuybackModerate    BuybackQuality = "moderate"
	BuybackNone        BuybackQuality = "none"
	BuybackDeclining   BuybackQuality = "declining"
)

// ShareTrend labels the market share direction of a company.
type ShareTrend string

const (
	TrendGaining ShareTrend = "gaining"
	TrendStable  ShareTrend = "stable"
	TrendLosing  ShareTrend = "losing"
)

// FundamentalsRecord is one structured metrics record per ticker, owned and
// produced by the external fundamentals provider. Immutable once issued for
// a run.
//
// Every metric is optional: a nil pointer (or empty label) means the
// provider could not derive the value. Absence resolves to the pillar floor
// during scoring, never to an error.
type FundamentalsRecord struct {
	Ticker string    `json:"ticker"`
	Name   string    `json:"name,omitempty"`
	Sector string    `json:"sector,omitempty"`
	AsOf   time.Time `json:"as_of"`

	// Pillar inputs
	ROIC                  *float64       `json:"roic,omitempty"`                    // fraction, e.g. 0.32
	NetDebtToEBITDA       *float64       `json:"net_debt_to_ebitda,omitempty"`      // negative = net cash
	RevenueCAGR3Y         *float64       `json:"revenue_cagr_3y,omitempty"`         // fraction
	RuleOf40              *float64       `json:"rule_of_40,omitempty"`              // percentage points
	GrossMarginPercentile *float64       `json:"gross_margin_percentile,omitempty"` // 0-100 within industry
	ROE                   *float64       `json:"roe,omitempty"`                     // fraction
	BuybackQuality        BuybackQuality `json:"buyback_quality,omitempty"`
	FCFMargin             *float64       `json:"fcf_margin,omitempty"` // fraction
	MarketShareTrend      ShareTrend     `json:"market_share_trend,omitempty"`
	TAMGrowth             *float64       `json:"tam_growth,omitempty"` // fraction

	// Tie-break inputs
	PriceToFCF  *float64 `json:"price_to_fcf,omitempty"`
	FCFAbsolute *float64 `json:"fcf_absolute,omitempty"`
}

// F returns a pointer to v. Convenience for building records from literals.
func F(v float64) *float64 {
	return &v
}
