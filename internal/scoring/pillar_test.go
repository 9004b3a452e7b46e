package scoring

import (
	"testing"

	"github.com/octantlabs/octant/internal/contracts"
)

func TestGradedBandsGrade(t *testing.T) {
	moat := DefaultBands().Moat

	tests := []struct {
		name string
		v    float64
		want int
	}{
		{"well above top band", 0.45, 8},
		{"exactly at top boundary", 0.40, 7},
		{"mid band", 0.32, 6},
		{"just above floor", 0.22, 4},
		{"exactly at floor", 0.20, 4},
		{"below floor", 0.15, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moat.Grade(tt.v); got != tt.want {
				t.Errorf("Grade(%v) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
}

func TestGradedBandsTopClosed(t *testing.T) {
	pricing := DefaultBands().PricingPower

	if got := pricing.Grade(95); got != 8 {
		t.Errorf("Grade(95) = %d, want 8 (top band is inclusive)", got)
	}
	if got := pricing.Grade(94); got != 7 {
		t.Errorf("Grade(94) = %d, want 7", got)
	}
	if got := pricing.Grade(59.9); got != 0 {
		t.Errorf("Grade(59.9) = %d, want 0", got)
	}
}

func TestFortressBandsGrade(t *testing.T) {
	fortress := DefaultBands().Fortress

	tests := []struct {
		name string
		v    float64
		want int
	}{
		{"net cash", -0.5, 8},
		{"low leverage", 0.5, 7},
		{"moderate leverage", 1.0, 6},
		{"acceptable leverage", 1.5, 5},
		{"high leverage", 2.0, 4},
		{"at ceiling", 2.5, 4},
		{"above ceiling", 2.6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fortress.Grade(tt.v); got != tt.want {
				t.Errorf("Grade(%v) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
}

func TestScoreMoatBoundaries(t *testing.T) {
	s := NewPillarScorer(DefaultBands())

	tests := []struct {
		roic float64
		want int
	}{
		{0.45, 8},
		{0.22, 4},
		{0.15, 0},
	}

	for _, tt := range tests {
		rec := &contracts.FundamentalsRecord{Ticker: "T", ROIC: contracts.F(tt.roic)}
		ps := s.Score(contracts.PillarMoat, rec)
		if ps.Points != tt.want {
			t.Errorf("ROIC %v: points = %d, want %d", tt.roic, ps.Points, tt.want)
		}
		if ps.Eliminated != (tt.want == 0) {
			t.Errorf("ROIC %v: eliminated = %v, want %v", tt.roic, ps.Eliminated, tt.want == 0)
		}
	}
}

func TestScoreMissingMetricFailsFloor(t *testing.T) {
	s := NewPillarScorer(DefaultBands())
	rec := &contracts.FundamentalsRecord{Ticker: "T"} // everything nil

	for _, p := range contracts.AllPillars() {
		ps := s.Score(p, rec)
		if ps.Points != 0 || !ps.Eliminated {
			t.Errorf("%s with missing data: points = %d, eliminated = %v; want 0, true",
				p, ps.Points, ps.Eliminated)
		}
	}
}

func TestScoreCapitalAllocation(t *testing.T) {
	s := NewPillarScorer(DefaultBands())

	tests := []struct {
		name    string
		roe     float64
		quality contracts.BuybackQuality
		want    int
	}{
		{"high ROE disciplined", 0.35, contracts.BuybackDisciplined, 8},
		{"high ROE moderate", 0.35, contracts.BuybackModerate, 7},
		{"high ROE no buybacks", 0.35, contracts.BuybackNone, 6},
		{"mid ROE moderate", 0.28, contracts.BuybackModerate, 7},
		{"mid ROE none", 0.22, contracts.BuybackNone, 6},
		{"low passing ROE", 0.18, contracts.BuybackNone, 5},
		{"empty label treated as none", 0.35, "", 6},
		{"declining buybacks eliminate", 0.35, contracts.BuybackDeclining, 0},
		{"ROE below floor", 0.10, contracts.BuybackDisciplined, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &contracts.FundamentalsRecord{
				Ticker:         "T",
				ROE:            contracts.F(tt.roe),
				BuybackQuality: tt.quality,
			}
			ps := s.Score(contracts.PillarCapitalAllocation, rec)
			if ps.Points != tt.want {
				t.Errorf("points = %d, want %d", ps.Points, tt.want)
			}
		})
	}
}

func TestScoreDurability(t *testing.T) {
	s := NewPillarScorer(DefaultBands())

	tests := []struct {
		name  string
		trend contracts.ShareTrend
		tam   float64
		want  int
	}{
		{"gaining in fast market", contracts.TrendGaining, 0.25, 8},
		{"gaining in good market", contracts.TrendGaining, 0.15, 7},
		{"gaining in modest market", contracts.TrendGaining, 0.12, 5},
		{"gaining in slow market", contracts.TrendGaining, 0.05, 4},
		{"stable in fast market", contracts.TrendStable, 0.25, 6},
		{"stable in modest market", contracts.TrendStable, 0.12, 4},
		{"stable in stagnant market", contracts.TrendStable, 0.05, 0},
		{"losing share", contracts.TrendLosing, 0.25, 0},
		{"shrinking market", contracts.TrendGaining, -0.02, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &contracts.FundamentalsRecord{
				Ticker:           "T",
				MarketShareTrend: tt.trend,
				TAMGrowth:        contracts.F(tt.tam),
			}
			ps := s.Score(contracts.PillarDurability, rec)
			if ps.Points != tt.want {
				t.Errorf("points = %d, want %d", ps.Points, tt.want)
			}
		})
	}
}

func TestScoreNeverProducesPartialPoints(t *testing.T) {
	s := NewPillarScorer(DefaultBands())
	valid := map[int]bool{0: true, 4: true, 5: true, 6: true, 7: true, 8: true}

	// Sweep each graded metric through a range and confirm 1-3 never appear.
	for v := -1.0; v <= 3.0; v += 0.01 {
		rec := &contracts.FundamentalsRecord{
			Ticker:          "T",
			ROIC:            contracts.F(v),
			NetDebtToEBITDA: contracts.F(v),
			FCFMargin:       contracts.F(v),
		}
		for _, p := range []contracts.Pillar{
			contracts.PillarMoat, contracts.PillarFortress, contracts.PillarCashGeneration,
		} {
			if ps := s.Score(p, rec); !valid[ps.Points] {
				t.Fatalf("%s at %v produced invalid points %d", p, v, ps.Points)
			}
		}
	}
}
