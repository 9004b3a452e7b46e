package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/octantlabs/octant/internal/contracts"
)

func TestMemoryStoreEmpty(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Latest(context.Background())
	if !errors.Is(err, contracts.ErrNoCommittedRun) {
		t.Fatalf("err = %v, want ErrNoCommittedRun", err)
	}
}

func TestMemoryStoreCommitChain(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := &contracts.RebalanceRun{RunID: "run_1"}
	if err := store.Commit(ctx, first); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	second := &contracts.RebalanceRun{RunID: "run_2", Supersedes: "run_1"}
	if err := store.Commit(ctx, second); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.RunID != "run_2" {
		t.Errorf("latest = %s, want run_2", latest.RunID)
	}
	if store.Count() != 2 {
		t.Errorf("count = %d, want 2", store.Count())
	}
}

func TestMemoryStoreRejectsStaleCommit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Commit(ctx, &contracts.RebalanceRun{RunID: "run_1"}); err != nil {
		t.Fatalf("seed commit: %v", err)
	}

	// A committer that read an older (or no) predecessor must lose.
	stale := &contracts.RebalanceRun{RunID: "run_x", Supersedes: ""}
	err := store.Commit(ctx, stale)
	if !errors.Is(err, contracts.ErrStaleCommit) {
		t.Fatalf("err = %v, want ErrStaleCommit", err)
	}

	latest, _ := store.Latest(ctx)
	if latest.RunID != "run_1" {
		t.Errorf("stale commit mutated the store: latest = %s", latest.RunID)
	}
}
