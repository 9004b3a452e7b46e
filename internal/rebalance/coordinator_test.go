package rebalance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/internal/fundamentals"
	"github.com/octantlabs/octant/internal/portfolio"
	"github.com/octantlabs/octant/internal/scoring"
	"github.com/octantlabs/octant/internal/selection"
	"github.com/octantlabs/octant/pkg/logger"
)

func newTestCoordinator(provider contracts.FundamentalsProvider, store contracts.PortfolioStore) *Coordinator {
	log := logger.NewNop()
	return NewCoordinator(
		provider,
		store,
		scoring.NewCompositeScorer(scoring.NewPillarScorer(scoring.DefaultBands()), log),
		selection.NewScreener(selection.DefaultScreenerConfig(), log),
		selection.NewRanker(log),
		portfolio.NewAllocator(log),
		portfolio.NewValidator(log),
		nil,
		DefaultConfig(),
		log,
	)
}

// devRecords materializes the built-in universe as a mutable record map.
func devRecords(t *testing.T) map[string]*contracts.FundamentalsRecord {
	t.Helper()
	dev := fundamentals.DevUniverse()

	records := make(map[string]*contracts.FundamentalsRecord)
	for _, ticker := range dev.Tickers() {
		rec, err := dev.Fetch(context.Background(), ticker)
		require.NoError(t, err)
		records[ticker] = rec
	}
	return records
}

func TestRunQuarterly(t *testing.T) {
	dev := fundamentals.DevUniverse()
	store := portfolio.NewMemoryStore()
	c := newTestCoordinator(dev, store)

	run, err := c.RunQuarterly(context.Background(), "dev", dev.Tickers())
	require.NoError(t, err)

	assert.Equal(t, contracts.TriggerQuarterly, run.Trigger)
	assert.Empty(t, run.Supersedes)
	assert.Empty(t, run.Skipped)
	assert.True(t, run.Validation.Valid)
	require.Len(t, run.Positions, contracts.PositionCount)

	// The dev universe ranks deterministically: MA edges V on median after
	// a total tie, FTNT edges CDNS on lowest pillar.
	wantOrder := []string{"NVDA", "MSFT", "ASML", "MA", "V", "FTNT", "CDNS", "NOW"}
	for i, pos := range run.Positions {
		assert.Equal(t, wantOrder[i], pos.Ticker, "rank %d", i+1)
		assert.Equal(t, i+1, pos.Rank)
	}

	// Eliminated names never appear, bench names stay on the bench.
	for _, absent := range []string{"INTC", "PTON", "ADBE", "INTU"} {
		assert.False(t, run.Holds(absent), absent)
	}

	assert.InDelta(t, 1.0, run.TotalWeight(), 1e-9)
	assert.Len(t, run.Diff.Additions, contracts.PositionCount)
	assert.Equal(t, 1, store.Count())

	// A second quarterly over unchanged data is a no-op portfolio-wise.
	run2, err := c.RunQuarterly(context.Background(), "dev", dev.Tickers())
	require.NoError(t, err)
	assert.Equal(t, run.RunID, run2.Supersedes)
	assert.Empty(t, run2.Diff.Additions)
	assert.Empty(t, run2.Diff.Removals)
}

func TestRunQuarterlySkipsFetchFailures(t *testing.T) {
	dev := fundamentals.DevUniverse()
	store := portfolio.NewMemoryStore()
	c := newTestCoordinator(dev, store)

	universe := append(dev.Tickers(), "GHOST")
	run, err := c.RunQuarterly(context.Background(), "dev", universe)
	require.NoError(t, err)

	assert.Equal(t, []string{"GHOST"}, run.Skipped)
	assert.True(t, run.Validation.Valid)
	assert.NotEmpty(t, run.Validation.Notices)
}

func TestRunQuarterlyInsufficientCandidates(t *testing.T) {
	records := devRecords(t)
	store := portfolio.NewMemoryStore()
	c := newTestCoordinator(fundamentals.NewStaticProvider(records), store)

	// Only six qualifying names in the universe.
	universe := []string{"NVDA", "MSFT", "ASML", "MA", "V", "FTNT", "INTC"}
	_, err := c.RunQuarterly(context.Background(), "dev", universe)

	require.Error(t, err)
	assert.True(t, contracts.IsInsufficientCandidates(err))
	assert.Equal(t, 0, store.Count(), "failed run must not commit")
}

func TestRunEmergencyCheckNoAction(t *testing.T) {
	dev := fundamentals.DevUniverse()
	store := portfolio.NewMemoryStore()
	c := newTestCoordinator(dev, store)

	_, err := c.RunQuarterly(context.Background(), "dev", dev.Tickers())
	require.NoError(t, err)

	outcome, err := c.RunEmergencyCheck(context.Background())
	require.NoError(t, err)

	assert.False(t, outcome.ActionTaken)
	assert.Nil(t, outcome.Run)
	assert.Equal(t, 1, store.Count(), "no-action check must not commit")
}

func TestRunEmergencyCheckRequiresCommittedRun(t *testing.T) {
	c := newTestCoordinator(fundamentals.DevUniverse(), portfolio.NewMemoryStore())

	_, err := c.RunEmergencyCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrNoCommittedRun)
}

func TestRunEmergencyCheckReplacesEliminatedHolding(t *testing.T) {
	records := devRecords(t)
	store := portfolio.NewMemoryStore()

	first, err := newTestCoordinator(fundamentals.NewStaticProvider(records), store).
		RunQuarterly(context.Background(), "dev", tickersOf(records))
	require.NoError(t, err)
	require.True(t, first.Holds("NVDA"))

	// NVDA levers up through the fortress ceiling before the next check.
	records["NVDA"].NetDebtToEBITDA = contracts.F(3.0)
	c := newTestCoordinator(fundamentals.NewStaticProvider(records), store)

	outcome, err := c.RunEmergencyCheck(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.ActionTaken)

	run := outcome.Run
	assert.Equal(t, []string{"NVDA"}, outcome.Eliminated)
	assert.Equal(t, contracts.TriggerEmergency, run.Trigger)
	assert.Equal(t, first.RunID, run.Supersedes)

	assert.False(t, run.Holds("NVDA"))
	assert.True(t, run.Holds("ADBE"), "best bench name fills the vacancy")
	require.Len(t, run.Positions, contracts.PositionCount)

	// Every weight is recomputed over the new eight.
	assert.InDelta(t, 1.0, run.TotalWeight(), 1e-9)
	for i := 1; i < len(run.Positions); i++ {
		assert.GreaterOrEqual(t, run.Positions[i-1].Weight, run.Positions[i].Weight)
	}

	assert.Equal(t, 2, store.Count())

	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, run.RunID, latest.RunID)

	require.NotNil(t, run.Diff)
	require.Len(t, run.Diff.Removals, 1)
	assert.Equal(t, "NVDA", run.Diff.Removals[0].Ticker)
	require.Len(t, run.Diff.Additions, 1)
	assert.Equal(t, "ADBE", run.Diff.Additions[0].Ticker)
}

func TestRunEmergencyCheckAbortsWhenBenchTooThin(t *testing.T) {
	records := devRecords(t)
	store := portfolio.NewMemoryStore()

	// Exactly eight qualifying names: no bench at all.
	universe := []string{"NVDA", "MSFT", "ASML", "MA", "V", "FTNT", "CDNS", "NOW"}
	first, err := newTestCoordinator(fundamentals.NewStaticProvider(records), store).
		RunQuarterly(context.Background(), "dev", universe)
	require.NoError(t, err)

	records["NVDA"].ROIC = contracts.F(0.08)
	c := newTestCoordinator(fundamentals.NewStaticProvider(records), store)

	_, err = c.RunEmergencyCheck(context.Background())
	require.Error(t, err)
	assert.True(t, contracts.IsInsufficientCandidates(err))

	// The previous portfolio stays live.
	assert.Equal(t, 1, store.Count())
	latest, _ := store.Latest(context.Background())
	assert.Equal(t, first.RunID, latest.RunID)
}

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID(time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, "run_20260815_103000", id)
}

func TestScoreUniverseDeterministicOrder(t *testing.T) {
	dev := fundamentals.DevUniverse()
	c := newTestCoordinator(dev, portfolio.NewMemoryStore())

	scores, records, skipped := c.scoreUniverse(context.Background(), dev.Tickers())

	assert.Len(t, scores, len(dev.Tickers()))
	assert.Len(t, records, len(dev.Tickers()))
	assert.Empty(t, skipped)

	for i := 1; i < len(scores); i++ {
		assert.Less(t, scores[i-1].Ticker, scores[i].Ticker, "scores must come back sorted")
	}

	for _, score := range scores {
		if score.Eliminated {
			assert.Zero(t, score.Total)
		} else {
			assert.GreaterOrEqual(t, score.Total, contracts.MinQualifyingScore)
			assert.LessOrEqual(t, score.Total, contracts.MaxTotalScore)
		}
	}
}

func tickersOf(records map[string]*contracts.FundamentalsRecord) []string {
	tickers := make([]string, 0, len(records))
	for t := range records {
		tickers = append(tickers, t)
	}
	return tickers
}

