package contracts

import (
	"errors"
	"fmt"
)

// ErrNoCommittedRun is returned by a PortfolioStore that has never committed
// a run.
var ErrNoCommittedRun = errors.New("no committed rebalance run")

// ErrStaleCommit is returned when a compare-and-commit loses the race: the
// latest run changed between read and commit.
var ErrStaleCommit = errors.New("latest run changed since read")

// ErrRecordUnavailable is returned by a FundamentalsProvider when a ticker's
// metrics record cannot be obtained at all. The caller excludes the ticker
// from the run (treated as absent, not as eliminated).
var ErrRecordUnavailable = errors.New("fundamentals record unavailable")

// InsufficientCandidatesError reports that fewer than the required number of
// names survived elimination and minimum-score filtering. A run failing this
// way must leave the previously committed portfolio untouched.
type InsufficientCandidatesError struct {
	Qualified int
	Required  int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("insufficient candidates: %d qualified, %d required", e.Qualified, e.Required)
}

// IsInsufficientCandidates reports whether err is an InsufficientCandidatesError.
func IsInsufficientCandidates(err error) bool {
	var target *InsufficientCandidatesError
	return errors.As(err, &target)
}
