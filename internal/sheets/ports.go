package sheets

import (
	"context"

	"ledger/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionMirror keeps an external copy of the ledger, one row per
	// transaction keyed by id, plus a per-day summary.
	TransactionMirror interface {
		// UpsertTransaction writes t, replacing any row with the same id.
		UpsertTransaction(ctx context.Context, t core.EnrichedTransaction) error
		// DeleteTransaction removes the row for id. A missing row is not an error.
		DeleteTransaction(ctx context.Context, id int64) error
		// MirroredIDs lists the transaction ids that currently have a row.
		MirroredIDs(ctx context.Context) ([]int64, error)
		// WriteDailySummary replaces the summary with groups.
		WriteDailySummary(ctx context.Context, ownerID int64, groups []core.DateGroup) error
	}
)
