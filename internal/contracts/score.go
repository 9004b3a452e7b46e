package contracts

import (
	"sort"
	"strings"
)

// Pillar identifies one of the eight fundamental tests.
type Pillar string

const (
	PillarMoat              Pillar = "moat"
	PillarFortress          Pillar = "fortress"
	PillarEngine            Pillar = "engine"
	PillarEfficiency        Pillar = "efficiency"
	PillarPricingPower      Pillar = "pricing_power"
	PillarCapitalAllocation Pillar = "capital_allocation"
	PillarCashGeneration    Pillar = "cash_generation"
	PillarDurability        Pillar = "durability"
)

// Scoring constants. SSOT: score bounds and floors are defined here only.
const (
	NumPillars         = 8
	MaxPillarPoints    = 8
	MaxTotalScore      = NumPillars * MaxPillarPoints // 64
	MinQualifyingScore = 32                           // average of 4 per pillar
	WeightBase         = 30                           // points-above-base subtrahend
	PositionCount      = 8                            // a portfolio holds exactly 8 names
)

// AllPillars returns all pillars in canonical order.
func AllPillars() []Pillar {
	return []Pillar{
		PillarMoat,
		PillarFortress,
		PillarEngine,
		PillarEfficiency,
		PillarPricingPower,
		PillarCapitalAllocation,
		PillarCashGeneration,
		PillarDurability,
	}
}

// DisplayName returns the human-readable pillar name.
func (p Pillar) DisplayName() string {
	switch p {
	case PillarMoat:
		return "Moat"
	case PillarFortress:
		return "Fortress"
	case PillarEngine:
		return "Engine"
	case PillarEfficiency:
		return "Efficiency"
	case PillarPricingPower:
		return "Pricing Power"
	case PillarCapitalAllocation:
		return "Capital Allocation"
	case PillarCashGeneration:
		return "Cash Generation"
	case PillarDurability:
		return "Durability"
	default:
		return string(p)
	}
}

// FloorReason returns the human-readable reason a pillar eliminates a stock.
func (p Pillar) FloorReason() string {
	switch p {
	case PillarMoat:
		return "ROIC < 20%"
	case PillarFortress:
		return "Net debt/EBITDA > 2.5x"
	case PillarEngine:
		return "Revenue CAGR < 10%"
	case PillarEfficiency:
		return "Rule of 40 < 40"
	case PillarPricingPower:
		return "Gross margin below top 40% of industry"
	case PillarCapitalAllocation:
		return "ROE < 15% or declining buybacks"
	case PillarCashGeneration:
		return "FCF margin < 12%"
	case PillarDurability:
		return "Losing market share or TAM shrinking"
	default:
		return string(p)
	}
}

// PillarScore is the result of scoring one pillar for one ticker.
// Points is always in {0, 4, 5, 6, 7, 8}; the banding is deliberately
// coarse and never produces 1-3.
type PillarScore struct {
	Pillar     Pillar `json:"pillar"`
	Points     int    `json:"points"`
	Eliminated bool   `json:"eliminated"` // true iff Points == 0
	Detail     string `json:"detail,omitempty"`
}

// CompositeScore aggregates the eight pillar scores for one ticker.
//
// Invariants: Eliminated == (any pillar at 0); Total == 0 when eliminated,
// otherwise Total == sum of the eight pillar points.
type CompositeScore struct {
	Ticker             string        `json:"ticker"`
	Pillars            []PillarScore `json:"pillars"` // always 8, canonical order
	Total              int           `json:"total"`
	Eliminated         bool          `json:"eliminated"`
	EliminationReasons []string      `json:"elimination_reasons,omitempty"` // pillar ids that scored 0
}

// PillarPoints returns the points for a pillar, or 0 if absent.
func (c *CompositeScore) PillarPoints(p Pillar) int {
	for i := range c.Pillars {
		if c.Pillars[i].Pillar == p {
			return c.Pillars[i].Points
		}
	}
	return 0
}

// LowestPillar returns the minimum pillar points.
func (c *CompositeScore) LowestPillar() int {
	if len(c.Pillars) == 0 {
		return 0
	}
	lowest := c.Pillars[0].Points
	for _, ps := range c.Pillars[1:] {
		if ps.Points < lowest {
			lowest = ps.Points
		}
	}
	return lowest
}

// MedianPillar returns the median of the pillar points. With eight pillars
// this is the mean of the 4th and 5th values.
func (c *CompositeScore) MedianPillar() float64 {
	n := len(c.Pillars)
	if n == 0 {
		return 0
	}

	points := make([]int, n)
	for i, ps := range c.Pillars {
		points[i] = ps.Points
	}
	sort.Ints(points)

	if n%2 == 1 {
		return float64(points[n/2])
	}
	return float64(points[n/2-1]+points[n/2]) / 2.0
}

// Qualifies reports whether the score survives both the elimination rule
// and the minimum qualifying total.
func (c *CompositeScore) Qualifies() bool {
	return !c.Eliminated && c.Total >= MinQualifyingScore
}

// FormatEliminationReasons renders elimination reasons for display.
func FormatEliminationReasons(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}

	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, Pillar(r).FloorReason())
	}
	return strings.Join(parts, ", ")
}
