package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/sheets"
)

// TransactionReader is the read side of the transaction service.
type TransactionReader interface {
	Get(ctx context.Context, ownerID, id int64) (core.EnrichedTransaction, error)
	List(ctx context.Context, ownerID int64) ([]core.EnrichedTransaction, error)
}

// MirrorWorker applies ledger events to a TransactionMirror.
type MirrorWorker struct {
	transactions TransactionReader
	mirror       sheets.TransactionMirror
}

func NewMirrorWorker(transactions TransactionReader, mirror sheets.TransactionMirror) *MirrorWorker {
	return &MirrorWorker{transactions: transactions, mirror: mirror}
}

// HandleEvent mirrors the transaction named by evt and refreshes the
// owner's daily summary. A returned error asks the broker to redeliver.
func (w *MirrorWorker) HandleEvent(ctx context.Context, evt *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"type", evt.Type,
		"transaction_id", evt.TransactionID,
		log.FieldOwnerID, evt.OwnerID)

	switch evt.Type {
	case amqp.EventTransactionCreated, amqp.EventTransactionUpdated:
		if err := w.upsert(ctx, evt.OwnerID, evt.TransactionID); err != nil {
			return err
		}
	case amqp.EventTransactionDeleted:
		if err := w.mirror.DeleteTransaction(ctx, evt.TransactionID); err != nil {
			return fmt.Errorf("delete mirrored transaction %d: %w", evt.TransactionID, err)
		}
	default:
		return fmt.Errorf("unsupported event type %q", evt.Type)
	}

	return w.refreshSummary(ctx, evt.OwnerID)
}

// upsert re-reads the transaction so the mirror always reflects the
// current row, not the state at publish time. A row deleted since the
// event was published is removed instead.
func (w *MirrorWorker) upsert(ctx context.Context, ownerID, id int64) error {
	t, err := w.transactions.Get(ctx, ownerID, id)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Transaction gone before mirroring, removing row", "transaction_id", id)
		if err := w.mirror.DeleteTransaction(ctx, id); err != nil {
			return fmt.Errorf("delete mirrored transaction %d: %w", id, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", id, err)
	}

	if err := w.mirror.UpsertTransaction(ctx, t); err != nil {
		return fmt.Errorf("mirror transaction %d: %w", id, err)
	}
	return nil
}

// Resync rebuilds the mirror from storage: every transaction of ownerID
// is written, rows whose transaction no longer exists are removed, and
// the summary is replaced. The mirror holds a single owner's ledger.
func (w *MirrorWorker) Resync(ctx context.Context, ownerID int64) error {
	txs, err := w.transactions.List(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	live := make(map[int64]struct{}, len(txs))
	for _, t := range txs {
		live[t.ID] = struct{}{}
		if err := w.mirror.UpsertTransaction(ctx, t); err != nil {
			return fmt.Errorf("mirror transaction %d: %w", t.ID, err)
		}
	}

	mirrored, err := w.mirror.MirroredIDs(ctx)
	if err != nil {
		return fmt.Errorf("list mirrored transactions: %w", err)
	}
	removed := 0
	for _, id := range mirrored {
		if _, ok := live[id]; ok {
			continue
		}
		if err := w.mirror.DeleteTransaction(ctx, id); err != nil {
			return fmt.Errorf("delete stale mirrored transaction %d: %w", id, err)
		}
		removed++
	}

	if err := w.mirror.WriteDailySummary(ctx, ownerID, core.GroupByDate(txs)); err != nil {
		return fmt.Errorf("write daily summary: %w", err)
	}

	slog.InfoContext(ctx, "Mirror resync completed",
		log.FieldOwnerID, ownerID,
		"transactions", len(txs),
		"removed", removed)
	return nil
}

func (w *MirrorWorker) refreshSummary(ctx context.Context, ownerID int64) error {
	txs, err := w.transactions.List(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if err := w.mirror.WriteDailySummary(ctx, ownerID, core.GroupByDate(txs)); err != nil {
		return fmt.Errorf("write daily summary: %w", err)
	}
	return nil
}
