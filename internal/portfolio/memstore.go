package portfolio

import (
	"context"
	"fmt"
	"sync"

	"github.com/octantlabs/octant/internal/contracts"
)

// MemoryStore is an in-process run store with the same compare-and-commit
// contract as the Postgres repository. Used when no database is configured
// and throughout the test suite.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []*contracts.RebalanceRun
}

var _ contracts.PortfolioStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Latest returns the most recently committed run, or ErrNoCommittedRun.
func (s *MemoryStore) Latest(ctx context.Context) (*contracts.RebalanceRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return nil, contracts.ErrNoCommittedRun
	}
	return s.runs[len(s.runs)-1], nil
}

// Commit appends the run if run.Supersedes still names the latest run.
func (s *MemoryStore) Commit(ctx context.Context, run *contracts.RebalanceRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latestID := ""
	if len(s.runs) > 0 {
		latestID = s.runs[len(s.runs)-1].RunID
	}

	if latestID != run.Supersedes {
		return fmt.Errorf("commit %s supersedes %q but latest is %q: %w",
			run.RunID, run.Supersedes, latestID, contracts.ErrStaleCommit)
	}

	s.runs = append(s.runs, run)
	return nil
}

// Count returns the number of committed runs.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
