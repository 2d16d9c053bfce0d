// Package committer collects Spanner mutations into a plan and applies them
// in one transaction.
//
// Writers return mutations instead of applying them; callers gather them
// into a CommitPlan and apply it once:
//
//	plan, err := writer.ReplaceShopPlan(shop, products, collections)
//	if err != nil {
//	    return err
//	}
//	return comm.Apply(ctx, plan)
package committer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
)

// MaxMutationsPerCommit keeps a single commit well inside Spanner's
// per-transaction mutation limit, assuming roughly ten cells per row.
const MaxMutationsPerCommit = 5000

// ErrPlanTooLarge is returned by Apply for plans above MaxMutationsPerCommit.
var ErrPlanTooLarge = errors.New("commit plan exceeds mutation limit")

// CommitPlan is a typed wrapper around Spanner mutations.
// Mutations are applied in the order they were added.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		mutations: make([]*spanner.Mutation, 0),
	}
}

// Add adds a mutation to the plan.
// Nil mutations are silently ignored for convenience.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// AddMultiple adds multiple mutations to the plan.
func (cp *CommitPlan) AddMultiple(muts []*spanner.Mutation) {
	for _, mut := range muts {
		cp.Add(mut)
	}
}

// Mutations returns all collected mutations.
func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	return cp.mutations
}

// IsEmpty returns true if the plan has no mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0
}

// Count returns the number of mutations in the plan.
func (cp *CommitPlan) Count() int {
	return len(cp.mutations)
}

// Committer applies CommitPlans.
type Committer struct {
	client *spanner.Client
}

// NewCommitter creates a new Committer.
func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Batches splits the plan into consecutive chunks of at most size mutations.
func (cp *CommitPlan) Batches(size int) [][]*spanner.Mutation {
	if size <= 0 {
		size = MaxMutationsPerCommit
	}
	var out [][]*spanner.Mutation
	for start := 0; start < len(cp.mutations); start += size {
		end := min(start+size, len(cp.mutations))
		out = append(out, cp.mutations[start:end])
	}
	return out
}

// Apply executes the CommitPlan atomically.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}
	if plan.Count() > MaxMutationsPerCommit {
		return fmt.Errorf("%w: %d mutations", ErrPlanTooLarge, plan.Count())
	}

	if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}

	return nil
}

// ApplyInBatches commits the plan in order, one transaction per batch.
// A failure leaves earlier batches committed; it reports how many were.
func (c *Committer) ApplyInBatches(ctx context.Context, plan *CommitPlan, size int) (int, error) {
	committed := 0
	for i, batch := range plan.Batches(size) {
		if _, err := c.client.Apply(ctx, batch); err != nil {
			return committed, fmt.Errorf("failed to apply batch %d: %w", i, err)
		}
		committed++
	}
	return committed, nil
}
