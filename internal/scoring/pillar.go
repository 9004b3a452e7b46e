package scoring

import (
	"fmt"

	"github.com/octantlabs/octant/internal/contracts"
)

// PillarScorer maps one fundamental metric to an integer score for one
// pillar. Purely computed from input; no side effects.
//
// A missing or unparseable metric fails the pillar floor (score 0), never
// crashes: uncertain data cannot produce a passing pillar.
type PillarScorer struct {
	bands Bands
}

// NewPillarScorer creates a pillar scorer with the given banding table.
func NewPillarScorer(bands Bands) *PillarScorer {
	return &PillarScorer{bands: bands}
}

// BandsVersion returns the version of the injected banding table.
func (s *PillarScorer) BandsVersion() string {
	return s.bands.Version
}

// Score scores one pillar from a fundamentals record.
func (s *PillarScorer) Score(p contracts.Pillar, rec *contracts.FundamentalsRecord) contracts.PillarScore {
	switch p {
	case contracts.PillarMoat:
		return s.scoreMoat(rec)
	case contracts.PillarFortress:
		return s.scoreFortress(rec)
	case contracts.PillarEngine:
		return s.scoreEngine(rec)
	case contracts.PillarEfficiency:
		return s.scoreEfficiency(rec)
	case contracts.PillarPricingPower:
		return s.scorePricingPower(rec)
	case contracts.PillarCapitalAllocation:
		return s.scoreCapitalAllocation(rec)
	case contracts.PillarCashGeneration:
		return s.scoreCashGeneration(rec)
	case contracts.PillarDurability:
		return s.scoreDurability(rec)
	default:
		return pillarScore(p, 0, "unknown pillar")
	}
}

func pillarScore(p contracts.Pillar, points int, detail string) contracts.PillarScore {
	return contracts.PillarScore{
		Pillar:     p,
		Points:     points,
		Eliminated: points == 0,
		Detail:     detail,
	}
}

func missing(p contracts.Pillar, metric string) contracts.PillarScore {
	return pillarScore(p, 0, metric+" missing")
}

// scoreMoat scores return on invested capital.
func (s *PillarScorer) scoreMoat(rec *contracts.FundamentalsRecord) contracts.PillarScore {
	if rec.ROIC == nil {
		return missing(contracts.PillarMoat, "ROIC")
	}

	v := *rec.ROIC
	return pillarScore(contracts.PillarMoat, s.bands.Moat.Grade(v),
		fmt.Sprintf("ROIC %.1f%%", v*100))
}

// scoreFortress scores balance sheet strength via net debt to EBITDA.
// A negative ratio is a net-cash position and earns the top band.
func (s *PillarScorer) scoreFortress(rec *contracts.FundamentalsRecord) contracts.PillarScore {
	if rec.NetDebtToEBITDA == nil {
		return missing(contracts.PillarFortress, "net debt/EBITDA")
	}

	v := *rec.NetDebtToEBITDA
	detail := fmt.Sprintf("net debt/EBITDA %.2fx", v)
	if v < 0 {
		detail = "net cash"
	}
	return pillarScore(contracts.PillarFortress, s.bands.Fortress.Grade(v), detail)
}

// scoreEngine scores the 3-year revenue CAGR.
func (s *PillarScorer) scoreEngine(rec *contracts.FundamentalsRecord) contracts.PillarScore {
	if rec.RevenueCAGR3Y == nil {
		return missing(contracts.PillarEngine, "revenue CAGR")
	}

	v := *rec.RevenueCAGR3Y
	return pillarScore(contracts.PillarEngine, s.bands.Engine.Grade(v),
		fmt.Sprintf("3yr revenue CAGR %.1f%%", v*100))
}

// scoreEfficiency scores the Rule of 40 value (growth % + margin %).
func (s *PillarScorer) scoreEfficiency(rec *contracts.FundamentalsRecord) contracts.PillarScore {
	if rec.RuleOf40 == nil {
		return missing(contracts.PillarEfficiency, "Rule of 40")
	}

	v := *rec.RuleOf40
	return pillarScore(contracts.PillarEfficiency, s.bands.Efficiency.Grade(v),
		fmt.Sprintf("Rule of 40: %.1f", v))
}

// scorePricingPower scores the gross-margin percentile within industry.
func (s *PillarScorer) scorePricingPower(rec *contracts.FundamentalsRecord) contracts.PillarScore {
	if rec.GrossMarginPercentile == nil {
		return missing(contracts.PillarPricingPower, "gross margin percentile")
	}

	v := *rec.GrossMarginPercentile
	return pillarScore(contracts.PillarPricingPower, s.bands.PricingPower.Grade(v),
		fmt.Sprintf("gross margin p%.0f of industry", v))
}

// scoreCapitalAllocation scores ROE combined with the externally supplied
// buyback discipline label. A missing label counts as no buybacks; a
// declining label fails the floor outright.
func (s *PillarScorer) scoreCapitalAllocation(rec *contracts.FundamentalsRecord) contracts.PillarScore {
	if rec.ROE == nil {
		return missing(contracts.PillarCapitalAllocation, "ROE")
	}

	roe := *rec.ROE
	quality := rec.BuybackQuality
	if quality == "" {
		quality = contracts.BuybackNone
	}

	b := s.bands.CapitalAllocation
	detail := fmt.Sprintf("ROE %.1f%%, buybacks %s", roe*100, quality)

	if roe < b.Floor || quality == contracts.BuybackDeclining {
		return pillarScore(contracts.PillarCapitalAllocation, 0, detail)
	}

	points := 5 // the 15-20% band
	switch {
	case roe > b.Eight && quality == contracts.BuybackDisciplined:
		points = 8
	case roe > b.Seven && (quality == contracts.BuybackDisciplined || quality == contracts.BuybackModerate):
		points = 7
	case roe > b.Six:
		points = 6
	}

	return pillarScore(contracts.PillarCapitalAllocation, points, detail)
}

// scoreCashGeneration scores the free-cash-flow margin.
func (s *PillarScorer) scoreCashGeneration(rec *contracts.FundamentalsRecord) contracts.PillarScore {
	if rec.FCFMargin == nil {
		return missing(contracts.PillarCashGeneration, "FCF margin")
	}

	v := *rec.FCFMargin
	return pillarScore(contracts.PillarCashGeneration, s.bands.CashGeneration.Grade(v),
		fmt.Sprintf("FCF margin %.1f%%", v*100))
}

// scoreDurability scores the market share trend against TAM growth.
// Losing share, a shrinking TAM, or stable share in a low-growth market
// all fail the floor.
func (s *PillarScorer) scoreDurability(rec *contracts.FundamentalsRecord) contracts.PillarScore {
	if rec.MarketShareTrend == "" || rec.TAMGrowth == nil {
		return missing(contracts.PillarDurability, "market position data")
	}

	trend := rec.MarketShareTrend
	tam := *rec.TAMGrowth
	b := s.bands.Durability
	detail := fmt.Sprintf("%s share, TAM %+.1f%%", trend, tam*100)

	if trend == contracts.TrendLosing || tam < b.TAMFloor {
		return pillarScore(contracts.PillarDurability, 0, detail)
	}

	var points int
	switch trend {
	case contracts.TrendGaining:
		switch {
		case tam > b.GainingEight:
			points = 8
		case tam >= b.GainingSeven:
			points = 7
		case tam >= b.GainingFive:
			points = 5
		default:
			points = 4
		}
	case contracts.TrendStable:
		switch {
		case tam > b.StableSix:
			points = 6
		case tam >= b.StableFour:
			points = 4
		default:
			points = 0 // stable share in a stagnant market
		}
	default:
		points = 0 // unrecognized trend label
	}

	return pillarScore(contracts.PillarDurability, points, detail)
}
