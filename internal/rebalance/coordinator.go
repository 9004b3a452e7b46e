package rebalance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/internal/portfolio"
	"github.com/octantlabs/octant/internal/scoring"
	"github.com/octantlabs/octant/internal/selection"
	"github.com/octantlabs/octant/pkg/logger"
)

// ScoreArchiver persists per-ticker scoring results alongside the run
// artifact. Optional: a nil archiver skips the step.
type ScoreArchiver interface {
	SaveScores(ctx context.Context, runID string, scores []contracts.CompositeScore) error
}

// Config holds coordinator tunables.
type Config struct {
	// Concurrency bounds parallel provider fetches during scoring.
	Concurrency int
}

// DefaultConfig returns the standard coordinator configuration.
func DefaultConfig() Config {
	return Config{Concurrency: 8}
}

// Coordinator drives the rebalance state machine end to end: fetch and
// score the universe, screen and rank, allocate weights, validate, and
// compare-and-commit the run artifact.
//
// Quarterly runs rebuild the portfolio from the full universe. Monthly
// emergency checks re-score only the held names and act solely on
// eliminations.
type Coordinator struct {
	provider  contracts.FundamentalsProvider
	store     contracts.PortfolioStore
	scorer    *scoring.CompositeScorer
	screener  *selection.Screener
	ranker    *selection.Ranker
	allocator *portfolio.Allocator
	validator *portfolio.Validator
	archiver  ScoreArchiver // may be nil
	config    Config
	logger    *logger.Logger
}

// NewCoordinator creates a coordinator. archiver may be nil.
func NewCoordinator(
	provider contracts.FundamentalsProvider,
	store contracts.PortfolioStore,
	scorer *scoring.CompositeScorer,
	screener *selection.Screener,
	ranker *selection.Ranker,
	allocator *portfolio.Allocator,
	validator *portfolio.Validator,
	archiver ScoreArchiver,
	config Config,
	log *logger.Logger,
) *Coordinator {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Coordinator{
		provider:  provider,
		store:     store,
		scorer:    scorer,
		screener:  screener,
		ranker:    ranker,
		allocator: allocator,
		validator: validator,
		archiver:  archiver,
		config:    config,
		logger:    log,
	}
}

// GenerateRunID returns a run id from the current UTC time.
func GenerateRunID(now time.Time) string {
	return "run_" + now.UTC().Format("20060102_150405")
}

// transition logs a state machine step and returns the new state. An
// illegal step indicates a coordinator bug and is logged loudly but not
// fatal: the run's own validation still gates the commit.
func (c *Coordinator) transition(from, to contracts.RunState) contracts.RunState {
	if !from.CanTransition(to) {
		c.logger.Warnf("illegal state transition %s -> %s", from, to)
	}
	c.logger.WithFields(map[string]interface{}{
		"from": from.String(),
		"to":   to.String(),
	}).Debug("State transition")
	return to
}

// RunQuarterly executes a full scheduled rebalance over the universe and
// returns the committed run. On any failure, including fewer qualifying
// candidates than positions, the previously committed run stays live.
func (c *Coordinator) RunQuarterly(ctx context.Context, universeID string, tickers []string) (*contracts.RebalanceRun, error) {
	started := time.Now()
	state := contracts.StateIdle

	c.logger.WithFields(map[string]interface{}{
		"universe": universeID,
		"tickers":  len(tickers),
	}).Info("Quarterly rebalance started")

	// Read the predecessor before doing any work so the commit can detect
	// a concurrent run.
	prev, err := c.store.Latest(ctx)
	if err != nil && !errors.Is(err, contracts.ErrNoCommittedRun) {
		return nil, fmt.Errorf("load latest run: %w", err)
	}
	supersedes := ""
	if prev != nil {
		supersedes = prev.RunID
	}

	state = c.transition(state, contracts.StateScoring)
	scores, records, skipped := c.scoreUniverse(ctx, tickers)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring interrupted: %w", err)
	}

	state = c.transition(state, contracts.StateSelecting)
	candidates, err := c.screener.Screen(ctx, scores, records)
	if err != nil {
		return nil, fmt.Errorf("screen universe: %w", err)
	}

	selected, notices, err := c.ranker.Select(ctx, candidates, contracts.PositionCount)
	if err != nil {
		return nil, fmt.Errorf("select portfolio: %w", err)
	}

	state = c.transition(state, contracts.StateWeighting)
	positions, err := c.allocator.Allocate(selected)
	if err != nil {
		return nil, fmt.Errorf("allocate weights: %w", err)
	}

	run := &contracts.RebalanceRun{
		RunID:      GenerateRunID(started),
		Timestamp:  started.UTC(),
		Universe:   universeID,
		Trigger:    contracts.TriggerQuarterly,
		Supersedes: supersedes,
		Scores:     scores,
		Positions:  positions,
		Skipped:    skipped,
	}

	run.Validation = c.validator.Validate(run)
	for _, n := range notices {
		run.Validation.AddNotice(n)
	}
	if !run.Validation.Valid {
		return nil, fmt.Errorf("run %s failed validation: %v", run.RunID, run.Validation.Issues)
	}

	run.Diff = portfolio.Diff(prev, run)

	if err := c.commit(ctx, run); err != nil {
		return nil, err
	}
	state = c.transition(state, contracts.StateCommitted)
	c.transition(state, contracts.StateIdle)

	c.logger.WithFields(map[string]interface{}{
		"run_id":   run.RunID,
		"universe": universeID,
		"skipped":  len(skipped),
		"changes":  run.Diff.TotalChanges(),
		"duration": time.Since(started).String(),
	}).Info("Quarterly rebalance committed")

	return run, nil
}

// EmergencyOutcome is the result of a monthly emergency check.
type EmergencyOutcome struct {
	// ActionTaken is false when no held name was eliminated and the
	// committed portfolio was left untouched.
	ActionTaken bool

	// Run is the emergency rebalance run, nil when no action was taken.
	Run *contracts.RebalanceRun

	// Eliminated lists held tickers whose fresh scores hit a pillar floor.
	Eliminated []string
}

// RunEmergencyCheck re-scores the currently held names. If every holding
// survives, nothing is committed. If any holding is eliminated it is
// removed, replacements are drawn from the predecessor run's qualifying
// bench, and a full re-weighted portfolio is committed.
func (c *Coordinator) RunEmergencyCheck(ctx context.Context) (*EmergencyOutcome, error) {
	started := time.Now()
	state := contracts.StateIdle

	prev, err := c.store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("emergency check requires a committed portfolio: %w", err)
	}

	state = c.transition(state, contracts.StateEmergencyCheck)
	held := prev.HeldTickers()

	c.logger.WithFields(map[string]interface{}{
		"run_id": prev.RunID,
		"held":   len(held),
	}).Info("Emergency check started")

	heldScores, heldRecords, heldSkipped := c.scoreUniverse(ctx, held)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("emergency scoring interrupted: %w", err)
	}

	var eliminated []string
	freshByTicker := make(map[string]contracts.CompositeScore, len(heldScores))
	for _, score := range heldScores {
		freshByTicker[score.Ticker] = score
		if score.Eliminated {
			eliminated = append(eliminated, score.Ticker)
		}
	}

	if len(eliminated) == 0 {
		state = c.transition(state, contracts.StateNoAction)
		c.transition(state, contracts.StateIdle)

		c.logger.WithFields(map[string]interface{}{
			"run_id":  prev.RunID,
			"skipped": len(heldSkipped),
		}).Info("Emergency check found no eliminations")

		return &EmergencyOutcome{ActionTaken: false}, nil
	}

	state = c.transition(state, contracts.StateEmergencyRebalance)
	c.logger.WithFields(map[string]interface{}{
		"eliminated": eliminated,
	}).Warn("Emergency rebalance triggered")

	// Survivors keep their seats. Only a pillar floor removes a holding on
	// this path; a fetch failure keeps the position on its last known score.
	var survivors []contracts.Candidate
	for _, ticker := range held {
		if fresh, ok := freshByTicker[ticker]; ok {
			if fresh.Eliminated {
				continue
			}
			survivors = append(survivors, contracts.NewCandidate(fresh, heldRecords[ticker]))
			continue
		}
		if prevScore, ok := previousScore(prev, ticker); ok {
			survivors = append(survivors, contracts.NewCandidate(prevScore, nil))
		}
	}

	// The bench is every non-held name that qualified in the predecessor
	// run, re-fetched and re-scored now.
	var bench []string
	for i := range prev.Scores {
		s := &prev.Scores[i]
		if s.Qualifies() && !prev.Holds(s.Ticker) {
			bench = append(bench, s.Ticker)
		}
	}
	benchScores, benchRecords, benchSkipped := c.scoreUniverse(ctx, bench)

	benchCandidates, err := c.screener.Screen(ctx, benchScores, benchRecords)
	if err != nil {
		return nil, fmt.Errorf("screen bench: %w", err)
	}

	need := contracts.PositionCount - len(survivors)
	replacements, notices, err := c.ranker.Select(ctx, benchCandidates, need)
	if err != nil {
		return nil, fmt.Errorf("select replacements: %w", err)
	}

	// Re-rank the full eight together and recompute every weight.
	final, finalNotices := c.ranker.Rank(ctx, append(survivors, replacements...))
	notices = append(notices, finalNotices...)

	positions, err := c.allocator.Allocate(final)
	if err != nil {
		return nil, fmt.Errorf("allocate emergency weights: %w", err)
	}

	skipped := append(heldSkipped, benchSkipped...)
	sort.Strings(skipped)

	run := &contracts.RebalanceRun{
		RunID:      GenerateRunID(started),
		Timestamp:  started.UTC(),
		Universe:   prev.Universe,
		Trigger:    contracts.TriggerEmergency,
		Supersedes: prev.RunID,
		Scores:     append(heldScores, benchScores...),
		Positions:  positions,
		Skipped:    skipped,
	}

	run.Validation = c.validator.Validate(run)
	for _, ticker := range eliminated {
		if fresh, ok := freshByTicker[ticker]; ok {
			run.Validation.AddNotice(fmt.Sprintf("%s removed: %s",
				ticker, contracts.FormatEliminationReasons(fresh.EliminationReasons)))
		}
	}
	for _, n := range notices {
		run.Validation.AddNotice(n)
	}
	if !run.Validation.Valid {
		return nil, fmt.Errorf("emergency run %s failed validation: %v", run.RunID, run.Validation.Issues)
	}

	run.Diff = portfolio.Diff(prev, run)

	if err := c.commit(ctx, run); err != nil {
		return nil, err
	}
	state = c.transition(state, contracts.StateCommitted)
	c.transition(state, contracts.StateIdle)

	c.logger.WithFields(map[string]interface{}{
		"run_id":     run.RunID,
		"eliminated": eliminated,
		"changes":    run.Diff.TotalChanges(),
		"duration":   time.Since(started).String(),
	}).Info("Emergency rebalance committed")

	return &EmergencyOutcome{
		ActionTaken: true,
		Run:         run,
		Eliminated:  eliminated,
	}, nil
}

// commit archives the scores and compare-and-commits the run.
func (c *Coordinator) commit(ctx context.Context, run *contracts.RebalanceRun) error {
	if c.archiver != nil {
		if err := c.archiver.SaveScores(ctx, run.RunID, run.Scores); err != nil {
			// The run artifact itself carries every score; losing the
			// per-ticker archive is not worth aborting the rebalance.
			c.logger.WithError(err).Warn("Failed to archive scoring results")
		}
	}

	if err := c.store.Commit(ctx, run); err != nil {
		return fmt.Errorf("commit run %s: %w", run.RunID, err)
	}
	return nil
}

// scoreUniverse fetches and scores every ticker with bounded concurrency.
// A ticker whose record cannot be obtained is skipped and reported, never
// treated as eliminated. Results come back sorted by ticker so runs over
// the same inputs are byte-for-byte reproducible.
func (c *Coordinator) scoreUniverse(ctx context.Context, tickers []string) (
	[]contracts.CompositeScore,
	map[string]*contracts.FundamentalsRecord,
	[]string,
) {
	var (
		mu      sync.Mutex
		scores  []contracts.CompositeScore
		records = make(map[string]*contracts.FundamentalsRecord, len(tickers))
		skipped []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Concurrency)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			rec, err := c.provider.Fetch(gctx, ticker)
			if err != nil {
				c.logger.WithFields(map[string]interface{}{
					"ticker": ticker,
				}).WithError(err).Warn("Fetch failed, ticker skipped")

				mu.Lock()
				skipped = append(skipped, ticker)
				mu.Unlock()
				return nil
			}

			score := c.scorer.Evaluate(rec)

			mu.Lock()
			scores = append(scores, score)
			records[ticker] = rec
			mu.Unlock()
			return nil
		})
	}
	// Fetch failures are converted to skips above, never into group errors.
	_ = g.Wait()

	sort.Slice(scores, func(i, j int) bool { return scores[i].Ticker < scores[j].Ticker })
	sort.Strings(skipped)

	return scores, records, skipped
}

// previousScore finds a ticker's composite score in an earlier run.
func previousScore(run *contracts.RebalanceRun, ticker string) (contracts.CompositeScore, bool) {
	for i := range run.Scores {
		if run.Scores[i].Ticker == ticker {
			return run.Scores[i], true
		}
	}
	return contracts.CompositeScore{}, false
}
