package scoring

import (
	"testing"
	"time"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/logger"
)

func newTestScorer() *CompositeScorer {
	return NewCompositeScorer(NewPillarScorer(DefaultBands()), logger.NewNop())
}

// strongRecord clears every floor: 8,8,8,8,6,8,8,8 for a total of 62.
func strongRecord() *contracts.FundamentalsRecord {
	return &contracts.FundamentalsRecord{
		Ticker:                "STRN",
		AsOf:                  time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
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
	}
}

func TestEvaluateQualifyingRecord(t *testing.T) {
	score := newTestScorer().Evaluate(strongRecord())

	if score.Eliminated {
		t.Fatalf("eliminated: %v", score.EliminationReasons)
	}
	if score.Total != 62 {
		t.Errorf("total = %d, want 62", score.Total)
	}
	if len(score.Pillars) != contracts.NumPillars {
		t.Fatalf("pillars = %d, want %d", len(score.Pillars), contracts.NumPillars)
	}

	// Pillars come back in canonical order.
	for i, p := range contracts.AllPillars() {
		if score.Pillars[i].Pillar != p {
			t.Errorf("pillar %d = %s, want %s", i, score.Pillars[i].Pillar, p)
		}
	}

	if !score.Qualifies() {
		t.Error("strong record should qualify")
	}
}

func TestEvaluateSingleFloorEliminates(t *testing.T) {
	rec := strongRecord()
	rec.ROIC = contracts.F(0.15) // moat floor

	score := newTestScorer().Evaluate(rec)

	if !score.Eliminated {
		t.Fatal("expected elimination")
	}
	if score.Total != 0 {
		t.Errorf("total = %d, want 0 for an eliminated stock", score.Total)
	}
	if len(score.EliminationReasons) != 1 || score.EliminationReasons[0] != string(contracts.PillarMoat) {
		t.Errorf("reasons = %v, want [moat]", score.EliminationReasons)
	}
	if score.Qualifies() {
		t.Error("eliminated stock must not qualify")
	}
}

func TestEvaluateCollectsEveryFloorHit(t *testing.T) {
	rec := strongRecord()
	rec.ROIC = contracts.F(0.10)
	rec.NetDebtToEBITDA = contracts.F(3.0)
	rec.MarketShareTrend = contracts.TrendLosing

	score := newTestScorer().Evaluate(rec)

	if len(score.EliminationReasons) != 3 {
		t.Errorf("reasons = %v, want moat, fortress, durability", score.EliminationReasons)
	}
}

func TestEvaluateMissingMetricEliminates(t *testing.T) {
	rec := strongRecord()
	rec.RuleOf40 = nil

	score := newTestScorer().Evaluate(rec)

	if !score.Eliminated {
		t.Fatal("a missing metric must fail the pillar floor")
	}
	if score.PillarPoints(contracts.PillarEfficiency) != 0 {
		t.Errorf("efficiency points = %d, want 0", score.PillarPoints(contracts.PillarEfficiency))
	}
}

func TestEvaluateTotalMatchesPillarSum(t *testing.T) {
	score := newTestScorer().Evaluate(strongRecord())

	sum := 0
	for _, ps := range score.Pillars {
		sum += ps.Points
	}
	if score.Total != sum {
		t.Errorf("total = %d, pillar sum = %d", score.Total, sum)
	}
}
