package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

const accountColumns = `id, name, account_group_id, owner_id, created_at, updated_at`

func scanAccount(s scanner) (core.Account, error) {
	var a core.Account
	if err := s.Scan(&a.ID, &a.Name, &a.AccountGroupID, &a.OwnerID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return core.Account{}, err
	}
	a.CreatedAt, a.UpdatedAt = utc(a.CreatedAt), utc(a.UpdatedAt)
	return a, nil
}

func (r *Repository) queryAccounts(ctx context.Context, query string, args ...any) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]core.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) FindAccount(ctx context.Context, id, ownerID int64) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.NotFound(core.EntityAccount, id)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("find account %d: %w", id, err)
	}
	return a, nil
}

func (r *Repository) ListAccounts(ctx context.Context, ownerID int64) ([]core.Account, error) {
	accounts, err := r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY name, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// FindAccountsByIDs returns the owner's accounts among ids. Unknown or
// foreign ids are simply absent from the result.
func (r *Repository) FindAccountsByIDs(ctx context.Context, ids []int64, ownerID int64) ([]core.Account, error) {
	if len(ids) == 0 {
		return []core.Account{}, nil
	}
	accounts, err := r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids, ownerID)...)
	if err != nil {
		return nil, fmt.Errorf("find accounts by ids: %w", err)
	}
	return accounts, nil
}

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (name, account_group_id, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		a.Name, a.AccountGroupID, a.OwnerID, now, now)
	if err != nil {
		return core.Account{}, writeError("create", core.EntityAccount, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: last insert id: %w", err)
	}

	a.ID, a.CreatedAt, a.UpdatedAt = id, now, now
	return a, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, id int64, a core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, account_group_id = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		a.Name, a.AccountGroupID, r.now(), id, a.OwnerID)
	if err != nil {
		return core.Account{}, writeError("update", core.EntityAccount, err)
	}
	ok, err := affected(res)
	if err != nil {
		return core.Account{}, err
	}
	if !ok {
		return core.Account{}, core.NotFound(core.EntityAccount, id)
	}
	return r.FindAccount(ctx, id, a.OwnerID)
}

func (r *Repository) DeleteAccount(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return deleteError(core.EntityAccount, id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return core.NotFound(core.EntityAccount, id)
	}
	return nil
}
