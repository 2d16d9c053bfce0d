package committer

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitPlan(t *testing.T) {
	plan := NewPlan()
	assert.True(t, plan.IsEmpty())

	plan.Add(nil)
	plan.Add(spanner.Delete("catalog_products", spanner.AllKeys()))
	plan.AddMultiple([]*spanner.Mutation{
		nil,
		spanner.Delete("collection_products", spanner.AllKeys()),
	})

	assert.False(t, plan.IsEmpty())
	assert.Equal(t, 2, plan.Count())
	assert.Len(t, plan.Mutations(), 2)
}

func TestCommitter_EmptyPlanIsNoop(t *testing.T) {
	c := NewCommitter(nil)

	require.NoError(t, c.Apply(context.Background(), NewPlan()))
}

func TestCommitPlan_Batches(t *testing.T) {
	plan := NewPlan()
	for i := 0; i < 5; i++ {
		plan.Add(spanner.Delete("catalog_products", spanner.Key{"shop", i}))
	}

	batches := plan.Batches(2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[2], 1)

	assert.Len(t, plan.Batches(0), 1)
	assert.Empty(t, NewPlan().Batches(2))
}

func TestCommitter_RejectsOversizedPlan(t *testing.T) {
	plan := NewPlan()
	for i := 0; i <= MaxMutationsPerCommit; i++ {
		plan.Add(spanner.Delete("catalog_products", spanner.Key{"shop", i}))
	}

	err := NewCommitter(nil).Apply(context.Background(), plan)
	assert.ErrorIs(t, err, ErrPlanTooLarge)

	n, err := NewCommitter(nil).ApplyInBatches(context.Background(), NewPlan(), 10)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
