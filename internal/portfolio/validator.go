package portfolio

import (
	"fmt"
	"math"
	"sort"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/logger"
)

// WeightSumTolerance bounds the allowed drift of the weight sum from 1.0.
// The allocation formula is exact up to float division; anything beyond
// this is a construction bug, not rounding.
const WeightSumTolerance = 1e-9

// WeightChangeThreshold is the minimum absolute weight move reported as a
// material change in a run diff.
const WeightChangeThreshold = 0.03

// Validator checks a fully assembled run before commit. A run with any
// issue must not be committed.
type Validator struct {
	logger *logger.Logger
}

// NewValidator creates a validator.
func NewValidator(log *logger.Logger) *Validator {
	return &Validator{logger: log}
}

// Validate inspects the run's positions against the portfolio invariants
// and returns a report. Issues invalidate the run; notices are recorded
// for the artifact but do not block commit.
func (v *Validator) Validate(run *contracts.RebalanceRun) contracts.ValidationReport {
	report := contracts.ValidationReport{Valid: true}

	if len(run.Positions) != contracts.PositionCount {
		report.AddIssue(fmt.Sprintf("expected %d positions, got %d",
			contracts.PositionCount, len(run.Positions)))
	}

	if len(run.Positions) > 0 {
		sum := run.TotalWeight()
		if math.Abs(sum-1.0) > WeightSumTolerance {
			report.AddIssue(fmt.Sprintf("weights sum to %.12f, not 1.0", sum))
		}
	}

	seen := make(map[string]bool, len(run.Positions))
	for i, pos := range run.Positions {
		if pos.Rank != i+1 {
			report.AddIssue(fmt.Sprintf("%s has rank %d at index %d", pos.Ticker, pos.Rank, i))
		}
		if seen[pos.Ticker] {
			report.AddIssue(fmt.Sprintf("%s held twice", pos.Ticker))
		}
		seen[pos.Ticker] = true

		if pos.Weight <= 0 {
			report.AddIssue(fmt.Sprintf("%s has non-positive weight %.6f", pos.Ticker, pos.Weight))
		}

		for _, p := range contracts.AllPillars() {
			if pos.PillarPoints[p] == 0 {
				report.AddIssue(fmt.Sprintf("%s held with %s at 0", pos.Ticker, p))
			}
		}

		// An emergency run keeps non-eliminated holdings even when a fresh
		// score drifts below the quarterly qualifying bar; only a quarterly
		// run treats that as a hard failure.
		if pos.TotalScore < contracts.MinQualifyingScore {
			msg := fmt.Sprintf("%s total %d below qualifying minimum %d",
				pos.Ticker, pos.TotalScore, contracts.MinQualifyingScore)
			if run.Trigger == contracts.TriggerEmergency {
				report.AddNotice(msg)
			} else {
				report.AddIssue(msg)
			}
		}
	}

	if len(run.Skipped) > 0 {
		report.AddNotice(fmt.Sprintf("%d tickers skipped on provider failure: %v",
			len(run.Skipped), run.Skipped))
	}

	v.logger.WithFields(map[string]interface{}{
		"run_id":  run.RunID,
		"valid":   report.Valid,
		"issues":  len(report.Issues),
		"notices": len(report.Notices),
	}).Info("Run validated")

	return report
}

// Diff compares a new run's portfolio against its predecessor. A nil
// predecessor (first run) yields every position as an addition.
func Diff(prev, next *contracts.RebalanceRun) *contracts.RunDiff {
	diff := &contracts.RunDiff{}

	for _, pos := range next.Positions {
		if prev == nil || !prev.Holds(pos.Ticker) {
			diff.Additions = append(diff.Additions, contracts.PositionChange{
				Ticker:     pos.Ticker,
				Weight:     pos.Weight,
				TotalScore: pos.TotalScore,
			})
		}
	}

	if prev != nil {
		for _, pos := range prev.Positions {
			if !next.Holds(pos.Ticker) {
				diff.Removals = append(diff.Removals, contracts.PositionChange{
					Ticker:     pos.Ticker,
					Weight:     pos.Weight,
					TotalScore: pos.TotalScore,
				})
			}
		}

		for _, pos := range next.Positions {
			old, held := prev.Position(pos.Ticker)
			if !held {
				continue
			}
			change := pos.Weight - old.Weight
			if math.Abs(change) < WeightChangeThreshold {
				continue
			}
			diff.WeightChanges = append(diff.WeightChanges, contracts.WeightChange{
				Ticker:    pos.Ticker,
				OldWeight: old.Weight,
				NewWeight: pos.Weight,
				Change:    change,
				OldScore:  old.TotalScore,
				NewScore:  pos.TotalScore,
			})
		}
	}

	sort.Slice(diff.WeightChanges, func(i, j int) bool {
		return math.Abs(diff.WeightChanges[i].Change) > math.Abs(diff.WeightChanges[j].Change)
	})

	return diff
}
