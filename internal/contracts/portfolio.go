package contracts

import "time"

// PortfolioPosition is one selected and weighted holding in a committed
// run. Created only by weight allocation; the set of eight positions for
// one run is immutable once computed.
type PortfolioPosition struct {
	Ticker          string         `json:"ticker"`
	Rank            int            `json:"rank"` // 1-8
	TotalScore      int            `json:"total_score"`
	Weight          float64        `json:"weight"` // (0, 1]
	PointsAboveBase int            `json:"points_above_base"`
	PillarPoints    map[Pillar]int `json:"pillar_points"` // the eight underlying points
}

// RunTrigger identifies what initiated a rebalance run.
type RunTrigger string

const (
	TriggerQuarterly RunTrigger = "quarterly"
	TriggerEmergency RunTrigger = "emergency"
)

// RebalanceRun is the persisted artifact of one scoring-selection-weighting
// pass. It is superseded, never mutated, by the next run.
type RebalanceRun struct {
	RunID      string     `json:"run_id"`
	Timestamp  time.Time  `json:"timestamp"`
	Universe   string     `json:"universe"`
	Trigger    RunTrigger `json:"trigger"`
	Supersedes string     `json:"supersedes,omitempty"` // run id replaced, empty for the first run

	Scores    []CompositeScore    `json:"scores"`    // every ticker evaluated this run
	Positions []PortfolioPosition `json:"positions"` // exactly 8
	Skipped   []string            `json:"skipped,omitempty"` // tickers with provider fetch failures

	Validation ValidationReport `json:"validation"`
	Diff       *RunDiff         `json:"diff,omitempty"` // vs. the superseded run
}

// TotalWeight returns the sum of all position weights.
func (r *RebalanceRun) TotalWeight() float64 {
	total := 0.0
	for _, pos := range r.Positions {
		total += pos.Weight
	}
	return total
}

// HeldTickers returns the tickers of all positions in rank order.
func (r *RebalanceRun) HeldTickers() []string {
	tickers := make([]string, 0, len(r.Positions))
	for _, pos := range r.Positions {
		tickers = append(tickers, pos.Ticker)
	}
	return tickers
}

// Position finds a position by ticker.
func (r *RebalanceRun) Position(ticker string) (*PortfolioPosition, bool) {
	for i := range r.Positions {
		if r.Positions[i].Ticker == ticker {
			return &r.Positions[i], true
		}
	}
	return nil, false
}

// Holds reports whether the run's portfolio contains the ticker.
func (r *RebalanceRun) Holds(ticker string) bool {
	_, ok := r.Position(ticker)
	return ok
}

// ValidationReport records the outcome of validating a run before commit.
// Issues make the run invalid; notices (tie fallbacks, skipped tickers)
// are informational only.
type ValidationReport struct {
	Valid   bool     `json:"valid"`
	Issues  []string `json:"issues,omitempty"`
	Notices []string `json:"notices,omitempty"`
}

// AddIssue records a validation failure.
func (v *ValidationReport) AddIssue(issue string) {
	v.Issues = append(v.Issues, issue)
	v.Valid = false
}

// AddNotice records an informational finding.
func (v *ValidationReport) AddNotice(notice string) {
	v.Notices = append(v.Notices, notice)
}

// RunDiff describes how one run's portfolio differs from its predecessor.
type RunDiff struct {
	Additions     []PositionChange `json:"additions,omitempty"`
	Removals      []PositionChange `json:"removals,omitempty"`
	WeightChanges []WeightChange   `json:"weight_changes,omitempty"`
}

// PositionChange records one added or removed holding.
type PositionChange struct {
	Ticker     string  `json:"ticker"`
	Weight     float64 `json:"weight"`
	TotalScore int     `json:"total_score"`
}

// WeightChange records a held ticker whose weight moved materially.
type WeightChange struct {
	Ticker    string  `json:"ticker"`
	OldWeight float64 `json:"old_weight"`
	NewWeight float64 `json:"new_weight"`
	Change    float64 `json:"change"`
	OldScore  int     `json:"old_score"`
	NewScore  int     `json:"new_score"`
}

// TotalChanges returns the number of recorded differences.
func (d *RunDiff) TotalChanges() int {
	return len(d.Additions) + len(d.Removals) + len(d.WeightChanges)
}
