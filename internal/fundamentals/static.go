package fundamentals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/octantlabs/octant/internal/contracts"
)

// StaticProvider serves records from a fixed in-memory set. Used for
// development runs without a provider endpoint and throughout the tests.
type StaticProvider struct {
	records map[string]*contracts.FundamentalsRecord
}

var _ contracts.FundamentalsProvider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider over the given records.
func NewStaticProvider(records map[string]*contracts.FundamentalsRecord) *StaticProvider {
	return &StaticProvider{records: records}
}

// Fetch returns the record for ticker, or wraps ErrRecordUnavailable.
func (p *StaticProvider) Fetch(ctx context.Context, ticker string) (*contracts.FundamentalsRecord, error) {
	rec, ok := p.records[ticker]
	if !ok {
		return nil, fmt.Errorf("ticker %s not in static set: %w", ticker, contracts.ErrRecordUnavailable)
	}

	out := *rec
	return &out, nil
}

// Tickers returns every ticker in the static set, sorted.
func (p *StaticProvider) Tickers() []string {
	tickers := make([]string, 0, len(p.records))
	for t := range p.records {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// DevUniverse returns a small curated universe for development runs: ten
// names that clear every pillar floor with a spread of totals, plus two
// that hit floors and get eliminated.
func DevUniverse() *StaticProvider {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	rec := func(ticker, name string, r contracts.FundamentalsRecord) *contracts.FundamentalsRecord {
		r.Ticker = ticker
		r.Name = name
		r.AsOf = asOf
		return &r
	}

	return NewStaticProvider(map[string]*contracts.FundamentalsRecord{
		"NVDA": rec("NVDA", "NVIDIA", contracts.FundamentalsRecord{
			Sector:                "Semiconductors",
			ROIC:                  contracts.F(0.62),
			NetDebtToEBITDA:       contracts.F(-0.8),
			RevenueCAGR3Y:         contracts.F(0.45),
			RuleOf40:              contracts.F(95),
			GrossMarginPercentile: contracts.F(88),
			ROE:                   contracts.F(0.55),
			BuybackQuality:        contracts.BuybackDisciplined,
			FCFMargin:             contracts.F(0.42),
			MarketShareTrend:      contracts.TrendGaining,
			TAMGrowth:             contracts.F(0.25),
			PriceToFCF:            contracts.F(45),
			FCFAbsolute:           contracts.F(60e9),
		}),
		"MSFT": rec("MSFT", "Microsoft", contracts.FundamentalsRecord{
			Sector:                "Software",
			ROIC:                  contracts.F(0.38),
			NetDebtToEBITDA:       contracts.F(-1.2),
			RevenueCAGR3Y:         contracts.F(0.16),
			RuleOf40:              contracts.F(62),
			GrossMarginPercentile: contracts.F(91),
			ROE:                   contracts.F(0.38),
			BuybackQuality:        contracts.BuybackDisciplined,
			FCFMargin:             contracts.F(0.33),
			MarketShareTrend:      contracts.TrendStable,
			TAMGrowth:             contracts.F(0.12),
			PriceToFCF:            contracts.F(32),
			FCFAbsolute:           contracts.F(70e9),
		}),
		"ASML": rec("ASML", "ASML Holding", contracts.FundamentalsRecord{
			Sector:                "Semiconductor Equipment",
			ROIC:                  contracts.F(0.42),
			NetDebtToEBITDA:       contracts.F(0.2),
			RevenueCAGR3Y:         contracts.F(0.22),
			RuleOf40:              contracts.F(58),
			GrossMarginPercentile: contracts.F(85),
			ROE:                   contracts.F(0.45),
			BuybackQuality:        contracts.BuybackModerate,
			FCFMargin:             contracts.F(0.28),
			MarketShareTrend:      contracts.TrendGaining,
			TAMGrowth:             contracts.F(0.12),
			PriceToFCF:            contracts.F(38),
			FCFAbsolute:           contracts.F(8e9),
		}),
		"MA": rec("MA", "Mastercard", contracts.FundamentalsRecord{
			Sector:                "Payments",
			ROIC:                  contracts.F(0.45),
			NetDebtToEBITDA:       contracts.F(1.2),
			RevenueCAGR3Y:         contracts.F(0.13),
			RuleOf40:              contracts.F(68),
			GrossMarginPercentile: contracts.F(96),
			ROE:                   contracts.F(0.60),
			BuybackQuality:        contracts.BuybackModerate,
			FCFMargin:             contracts.F(0.45),
			MarketShareTrend:      contracts.TrendStable,
			TAMGrowth:             contracts.F(0.14),
			PriceToFCF:            contracts.F(33),
			FCFAbsolute:           contracts.F(11e9),
		}),
		"V": rec("V", "Visa", contracts.FundamentalsRecord{
			Sector:                "Payments",
			ROIC:                  contracts.F(0.30),
			NetDebtToEBITDA:       contracts.F(0.8),
			RevenueCAGR3Y:         contracts.F(0.11),
			RuleOf40:              contracts.F(64),
			GrossMarginPercentile: contracts.F(97),
			ROE:                   contracts.F(0.45),
			BuybackQuality:        contracts.BuybackDisciplined,
			FCFMargin:             contracts.F(0.52),
			MarketShareTrend:      contracts.TrendStable,
			TAMGrowth:             contracts.F(0.11),
			PriceToFCF:            contracts.F(30),
			FCFAbsolute:           contracts.F(18e9),
		}),
		"ADBE": rec("ADBE", "Adobe", contracts.FundamentalsRecord{
			Sector:                "Software",
			ROIC:                  contracts.F(0.28),
			NetDebtToEBITDA:       contracts.F(0.4),
			RevenueCAGR3Y:         contracts.F(0.12),
			RuleOf40:              contracts.F(55),
			GrossMarginPercentile: contracts.F(89),
			ROE:                   contracts.F(0.35),
			BuybackQuality:        contracts.BuybackNone,
			FCFMargin:             contracts.F(0.38),
			MarketShareTrend:      contracts.TrendStable,
			TAMGrowth:             contracts.F(0.10),
			PriceToFCF:            contracts.F(22),
			FCFAbsolute:           contracts.F(9e9),
		}),
		"CDNS": rec("CDNS", "Cadence Design", contracts.FundamentalsRecord{
			Sector:                "Software",
			ROIC:                  contracts.F(0.26),
			NetDebtToEBITDA:       contracts.F(-0.3),
			RevenueCAGR3Y:         contracts.F(0.14),
			RuleOf40:              contracts.F(52),
			GrossMarginPercentile: contracts.F(90),
			ROE:                   contracts.F(0.28),
			BuybackQuality:        contracts.BuybackModerate,
			FCFMargin:             contracts.F(0.31),
			MarketShareTrend:      contracts.TrendGaining,
			TAMGrowth:             contracts.F(0.11),
			PriceToFCF:            contracts.F(40),
			FCFAbsolute:           contracts.F(1.3e9),
		}),
		"NOW": rec("NOW", "ServiceNow", contracts.FundamentalsRecord{
			Sector:                "Software",
			ROIC:                  contracts.F(0.21),
			NetDebtToEBITDA:       contracts.F(-0.5),
			RevenueCAGR3Y:         contracts.F(0.24),
			RuleOf40:              contracts.F(51),
			GrossMarginPercentile: contracts.F(79),
			ROE:                   contracts.F(0.18),
			BuybackQuality:        contracts.BuybackNone,
			FCFMargin:             contracts.F(0.29),
			MarketShareTrend:      contracts.TrendGaining,
			TAMGrowth:             contracts.F(0.18),
			PriceToFCF:            contracts.F(48),
			FCFAbsolute:           contracts.F(2.8e9),
		}),
		"FTNT": rec("FTNT", "Fortinet", contracts.FundamentalsRecord{
			Sector:                "Security",
			ROIC:                  contracts.F(0.33),
			NetDebtToEBITDA:       contracts.F(-1.0),
			RevenueCAGR3Y:         contracts.F(0.19),
			RuleOf40:              contracts.F(49),
			GrossMarginPercentile: contracts.F(77),
			ROE:                   contracts.F(0.32),
			BuybackQuality:        contracts.BuybackDisciplined,
			FCFMargin:             contracts.F(0.34),
			MarketShareTrend:      contracts.TrendGaining,
			TAMGrowth:             contracts.F(0.13),
			PriceToFCF:            contracts.F(35),
			FCFAbsolute:           contracts.F(1.8e9),
		}),
		"INTU": rec("INTU", "Intuit", contracts.FundamentalsRecord{
			Sector:                "Software",
			ROIC:                  contracts.F(0.24),
			NetDebtToEBITDA:       contracts.F(1.4),
			RevenueCAGR3Y:         contracts.F(0.15),
			RuleOf40:              contracts.F(47),
			GrossMarginPercentile: contracts.F(82),
			ROE:                   contracts.F(0.22),
			BuybackQuality:        contracts.BuybackNone,
			FCFMargin:             contracts.F(0.24),
			MarketShareTrend:      contracts.TrendStable,
			TAMGrowth:             contracts.F(0.12),
			PriceToFCF:            contracts.F(28),
			FCFAbsolute:           contracts.F(4.2e9),
		}),
		"INTC": rec("INTC", "Intel", contracts.FundamentalsRecord{
			Sector:                "Semiconductors",
			ROIC:                  contracts.F(0.04),
			NetDebtToEBITDA:       contracts.F(1.8),
			RevenueCAGR3Y:         contracts.F(0.02),
			RuleOf40:              contracts.F(12),
			GrossMarginPercentile: contracts.F(55),
			ROE:                   contracts.F(0.03),
			BuybackQuality:        contracts.BuybackDeclining,
			FCFMargin:             contracts.F(0.02),
			MarketShareTrend:      contracts.TrendLosing,
			TAMGrowth:             contracts.F(0.08),
			PriceToFCF:            contracts.F(80),
			FCFAbsolute:           contracts.F(0.5e9),
		}),
		"PTON": rec("PTON", "Peloton", contracts.FundamentalsRecord{
			Sector:                "Consumer",
			ROIC:                  contracts.F(0.22),
			NetDebtToEBITDA:       contracts.F(2.2),
			RevenueCAGR3Y:         contracts.F(0.11),
			RuleOf40:              contracts.F(42),
			GrossMarginPercentile: contracts.F(65),
			ROE:                   contracts.F(0.17),
			BuybackQuality:        contracts.BuybackNone,
			FCFMargin:             contracts.F(0.13),
			MarketShareTrend:      contracts.TrendLosing,
			TAMGrowth:             contracts.F(0.05),
			PriceToFCF:            contracts.F(18),
			FCFAbsolute:           contracts.F(0.2e9),
		}),
	})
}
