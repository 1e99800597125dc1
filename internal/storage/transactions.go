package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/core"
)

const transactionColumns = `id, transaction_at, description, amount, owner_id, category_id, account_id, transaction_kind, created_at, updated_at`

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t    core.Transaction
		code int64
	)
	if err := s.Scan(&t.ID, &t.OccurredAt, &t.Description, &t.Amount, &t.OwnerID,
		&t.CategoryID, &t.AccountID, &code, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.TransactionKindFromCode(code)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Kind = kind
	t.OccurredAt, t.CreatedAt, t.UpdatedAt = utc(t.OccurredAt), utc(t.CreatedAt), utc(t.UpdatedAt)
	return t, nil
}

func (r *Repository) FindTransaction(ctx context.Context, id, ownerID int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFound(core.EntityTransaction, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("find transaction %d: %w", id, err)
	}
	return t, nil
}

// ListTransactions returns every transaction of the owner, newest first.
func (r *Repository) ListTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE owner_id = ? ORDER BY transaction_at DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := r.now()
	t.OccurredAt = t.OccurredAt.UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (transaction_at, description, amount, owner_id, category_id, account_id, transaction_kind, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.OccurredAt, t.Description, t.Amount, t.OwnerID, t.CategoryID, t.AccountID, t.Kind.Code(), now, now)
	if err != nil {
		return core.Transaction{}, writeError("create", core.EntityTransaction, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: last insert id: %w", err)
	}

	t.ID, t.CreatedAt, t.UpdatedAt = id, now, now

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"owner_id", t.OwnerID,
		"amount", t.Amount.String(),
		"kind", t.Kind.String())

	return t, nil
}

// UpdateTransaction replaces every mutable column of the owner's row id.
func (r *Repository) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET transaction_at = ?, description = ?, amount = ?, category_id = ?, account_id = ?, transaction_kind = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		t.OccurredAt.UTC(), t.Description, t.Amount, t.CategoryID, t.AccountID, t.Kind.Code(), r.now(), id, t.OwnerID)
	if err != nil {
		return core.Transaction{}, writeError("update", core.EntityTransaction, err)
	}
	ok, err := affected(res)
	if err != nil {
		return core.Transaction{}, err
	}
	if !ok {
		return core.Transaction{}, core.NotFound(core.EntityTransaction, id)
	}
	return r.FindTransaction(ctx, id, t.OwnerID)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return deleteError(core.EntityTransaction, id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return core.NotFound(core.EntityTransaction, id)
	}
	return nil
}
