package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

type scanner interface {
	Scan(dest ...any) error
}

const accountGroupColumns = `id, name, owner_id, created_at, updated_at`

func scanAccountGroup(s scanner) (core.AccountGroup, error) {
	var g core.AccountGroup
	if err := s.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return core.AccountGroup{}, err
	}
	g.CreatedAt, g.UpdatedAt = utc(g.CreatedAt), utc(g.UpdatedAt)
	return g, nil
}

func (r *Repository) FindAccountGroup(ctx context.Context, id, ownerID int64) (core.AccountGroup, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountGroupColumns+` FROM account_groups WHERE id = ? AND owner_id = ?`, id, ownerID)
	g, err := scanAccountGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AccountGroup{}, core.NotFound(core.EntityAccountGroup, id)
	}
	if err != nil {
		return core.AccountGroup{}, fmt.Errorf("find account group %d: %w", id, err)
	}
	return g, nil
}

func (r *Repository) ListAccountGroups(ctx context.Context, ownerID int64) ([]core.AccountGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountGroupColumns+` FROM account_groups WHERE owner_id = ? ORDER BY name, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list account groups: %w", err)
	}
	defer rows.Close()

	groups := make([]core.AccountGroup, 0)
	for rows.Next() {
		g, err := scanAccountGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account groups: %w", err)
	}
	return groups, nil
}

func (r *Repository) CreateAccountGroup(ctx context.Context, g core.AccountGroup) (core.AccountGroup, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO account_groups (name, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		g.Name, g.OwnerID, now, now)
	if err != nil {
		return core.AccountGroup{}, writeError("create", core.EntityAccountGroup, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.AccountGroup{}, fmt.Errorf("create account group: last insert id: %w", err)
	}

	g.ID, g.CreatedAt, g.UpdatedAt = id, now, now
	return g, nil
}

func (r *Repository) UpdateAccountGroup(ctx context.Context, id int64, g core.AccountGroup) (core.AccountGroup, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE account_groups SET name = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		g.Name, r.now(), id, g.OwnerID)
	if err != nil {
		return core.AccountGroup{}, writeError("update", core.EntityAccountGroup, err)
	}
	ok, err := affected(res)
	if err != nil {
		return core.AccountGroup{}, err
	}
	if !ok {
		return core.AccountGroup{}, core.NotFound(core.EntityAccountGroup, id)
	}
	return r.FindAccountGroup(ctx, id, g.OwnerID)
}

func (r *Repository) DeleteAccountGroup(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM account_groups WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return deleteError(core.EntityAccountGroup, id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return core.NotFound(core.EntityAccountGroup, id)
	}
	return nil
}
