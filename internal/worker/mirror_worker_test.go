package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/sheets/memory"
)

type fakeReader struct {
	txs     map[int64]core.EnrichedTransaction
	listErr error
}

func (f *fakeReader) Get(_ context.Context, _ int64, id int64) (core.EnrichedTransaction, error) {
	t, ok := f.txs[id]
	if !ok {
		return core.EnrichedTransaction{}, core.NotFound(core.EntityTransaction, id)
	}
	return t, nil
}

func (f *fakeReader) List(context.Context, int64) ([]core.EnrichedTransaction, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]core.EnrichedTransaction, 0, len(f.txs))
	for _, t := range f.txs {
		out = append(out, t)
	}
	return out, nil
}

func tx(id int64, day int, amount int64, kind core.TransactionKind) core.EnrichedTransaction {
	return core.EnrichedTransaction{
		ID:         id,
		OccurredAt: time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC),
		Amount:     decimal.NewFromInt(amount),
		Kind:       kind,
		Currency:   core.Currency,
	}
}

func TestHandleEventUpsertsAndSummarises(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{txs: map[int64]core.EnrichedTransaction{
		1: tx(1, 15, 100000, core.TransactionIncome),
		2: tx(2, 15, 40000, core.TransactionExpense),
	}}
	mirror := memory.New()
	w := NewMirrorWorker(reader, mirror)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionCreated, 1, 1)))

	_, ok := mirror.Row(1)
	assert.True(t, ok)
	_, ok = mirror.Row(2)
	assert.False(t, ok, "only the event's transaction is written")

	summary := mirror.Summary(1)
	require.Len(t, summary, 1)
	assert.Equal(t, "2024-01-15", summary[0].Date)
	assert.True(t, decimal.NewFromInt(60000).Equal(summary[0].NetTotal))
}

func TestHandleEventUpdateOfVanishedTransactionRemovesRow(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	require.NoError(t, mirror.UpsertTransaction(ctx, tx(7, 1, 10, core.TransactionExpense)))
	w := NewMirrorWorker(&fakeReader{txs: map[int64]core.EnrichedTransaction{}}, mirror)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionUpdated, 7, 1)))

	_, ok := mirror.Row(7)
	assert.False(t, ok)
	assert.Empty(t, mirror.Summary(1))
}

func TestHandleEventDelete(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	require.NoError(t, mirror.UpsertTransaction(ctx, tx(3, 1, 10, core.TransactionExpense)))
	w := NewMirrorWorker(&fakeReader{txs: map[int64]core.EnrichedTransaction{}}, mirror)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionDeleted, 3, 1)))
	assert.Empty(t, mirror.Rows())
}

func TestHandleEventFailuresAreReturned(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{
		txs:     map[int64]core.EnrichedTransaction{1: tx(1, 1, 10, core.TransactionIncome)},
		listErr: errors.New("database is locked"),
	}
	w := NewMirrorWorker(reader, memory.New())

	err := w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionCreated, 1, 1))
	assert.ErrorContains(t, err, "database is locked")

	err = w.HandleEvent(ctx, &amqp.LedgerEvent{Type: "transaction.archived", TransactionID: 1, OwnerID: 1})
	assert.ErrorContains(t, err, "unsupported event type")
}

func TestResync(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{txs: map[int64]core.EnrichedTransaction{
		1: tx(1, 1, 10, core.TransactionIncome),
		2: tx(2, 2, 20, core.TransactionExpense),
		3: tx(3, 2, 5, core.TransactionIncome),
	}}
	mirror := memory.New()
	// deleted while the worker was down
	require.NoError(t, mirror.UpsertTransaction(ctx, tx(7, 1, 99, core.TransactionExpense)))
	w := NewMirrorWorker(reader, mirror)

	require.NoError(t, w.Resync(ctx, 1))

	assert.Len(t, mirror.Rows(), 3)
	_, ok := mirror.Row(7)
	assert.False(t, ok, "rows without a stored transaction are removed")
	ids, err := mirror.MirroredIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
	summary := mirror.Summary(1)
	require.Len(t, summary, 2)
	assert.Equal(t, "2024-01-02", summary[0].Date)
	assert.Equal(t, 2, summary[0].TransactionCount)
}
