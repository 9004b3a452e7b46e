package contracts

import "context"

// FundamentalsProvider supplies one structured metrics record per ticker.
// SSOT: the provider boundary is defined here only.
//
// Fetch returns an error wrapping ErrRecordUnavailable when the ticker's
// record cannot be obtained; the caller skips the ticker for the run.
// Missing individual metrics inside a returned record are not errors.
type FundamentalsProvider interface {
	Fetch(ctx context.Context, ticker string) (*FundamentalsRecord, error)
}

// PortfolioStore persists the latest committed RebalanceRun between runs.
// SSOT: the store boundary is defined here only.
//
// Commit is compare-and-commit: run.Supersedes must equal the run id of the
// currently committed run (empty for the first commit), otherwise the store
// returns ErrStaleCommit and nothing changes. Readers always see either the
// fully-old or fully-new run, never an intermediate state.
type PortfolioStore interface {
	Latest(ctx context.Context) (*RebalanceRun, error)
	Commit(ctx context.Context, run *RebalanceRun) error
}
