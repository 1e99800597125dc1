package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func TestStoreUpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.UpsertTransaction(ctx, core.EnrichedTransaction{ID: 2, Description: "b"}))
	require.NoError(t, s.UpsertTransaction(ctx, core.EnrichedTransaction{ID: 1, Description: "a"}))
	require.NoError(t, s.UpsertTransaction(ctx, core.EnrichedTransaction{ID: 2, Description: "b2"}))

	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, "b2", rows[1].Description)

	require.NoError(t, s.DeleteTransaction(ctx, 2))
	require.NoError(t, s.DeleteTransaction(ctx, 2), "deleting a missing row is a no-op")
	_, ok := s.Row(2)
	assert.False(t, ok)
	assert.Equal(t, 5, s.Writes())

	ids, err := s.MirroredIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestStoreSummaryPerOwner(t *testing.T) {
	ctx := context.Background()
	s := New()

	groups := []core.DateGroup{{Date: "2024-01-15", TotalIncome: decimal.NewFromInt(10), TransactionCount: 1}}
	require.NoError(t, s.WriteDailySummary(ctx, 1, groups))
	groups[0].Date = "mutated"

	got := s.Summary(1)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-15", got[0].Date)
	assert.Empty(t, s.Summary(2))
}
