package selection

import (
	"context"
	"math"
	"testing"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/logger"
)

func TestScreenFiltersEliminatedAndBelowMinimum(t *testing.T) {
	s := NewScreener(DefaultScreenerConfig(), logger.NewNop())

	scores := []contracts.CompositeScore{
		{Ticker: "GOOD", Total: 48},
		{Ticker: "DEAD", Total: 0, Eliminated: true, EliminationReasons: []string{"moat"}},
		{Ticker: "WEAK", Total: 28},
		{Ticker: "EDGE", Total: contracts.MinQualifyingScore},
	}

	candidates, err := s.Screen(context.Background(), scores, nil)
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("candidates = %v, want GOOD and EDGE", tickersOf(candidates))
	}
	for _, c := range candidates {
		if c.Ticker == "DEAD" || c.Ticker == "WEAK" {
			t.Errorf("%s passed screening", c.Ticker)
		}
	}
}

func TestScreenBuildsTieBreakFields(t *testing.T) {
	s := NewScreener(DefaultScreenerConfig(), logger.NewNop())

	scores := []contracts.CompositeScore{
		{
			Ticker: "AA",
			Total:  44,
			Pillars: []contracts.PillarScore{
				{Pillar: contracts.PillarMoat, Points: 4},
				{Pillar: contracts.PillarFortress, Points: 8},
				{Pillar: contracts.PillarEngine, Points: 5},
				{Pillar: contracts.PillarEfficiency, Points: 5},
				{Pillar: contracts.PillarPricingPower, Points: 6},
				{Pillar: contracts.PillarCapitalAllocation, Points: 5},
				{Pillar: contracts.PillarCashGeneration, Points: 6},
				{Pillar: contracts.PillarDurability, Points: 5},
			},
		},
		{Ticker: "BB", Total: 44},
	}
	records := map[string]*contracts.FundamentalsRecord{
		"AA": {
			Ticker:      "AA",
			PriceToFCF:  contracts.F(27.5),
			FCFAbsolute: contracts.F(3e9),
		},
		// BB intentionally absent
	}

	candidates, err := s.Screen(context.Background(), scores, records)
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}

	byTicker := map[string]contracts.Candidate{}
	for _, c := range candidates {
		byTicker[c.Ticker] = c
	}

	aa := byTicker["AA"]
	if aa.Lowest != 4 {
		t.Errorf("AA lowest = %d, want 4", aa.Lowest)
	}
	if aa.Median != 5.0 {
		t.Errorf("AA median = %v, want 5.0", aa.Median)
	}
	if aa.PriceToFCF != 27.5 || aa.FCFAbsolute != 3e9 {
		t.Errorf("AA tie-breaks = %v/%v", aa.PriceToFCF, aa.FCFAbsolute)
	}

	// A candidate without a record gets worst-case tie-break values.
	bb := byTicker["BB"]
	if !math.IsInf(bb.PriceToFCF, 1) {
		t.Errorf("BB price/FCF = %v, want +Inf", bb.PriceToFCF)
	}
	if bb.FCFAbsolute != 0 {
		t.Errorf("BB absolute FCF = %v, want 0", bb.FCFAbsolute)
	}
}
