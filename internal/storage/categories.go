package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

const categoryColumns = `id, name, category_kind, parent_id, owner_id, created_at, updated_at`

func scanCategory(s scanner) (core.Category, error) {
	var (
		c      core.Category
		code   int64
		parent sql.NullInt64
	)
	if err := s.Scan(&c.ID, &c.Name, &code, &parent, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return core.Category{}, err
	}
	kind, err := core.CategoryKindFromCode(code)
	if err != nil {
		return core.Category{}, fmt.Errorf("category %d: %w", c.ID, err)
	}
	c.Kind = kind
	if parent.Valid {
		p := parent.Int64
		c.ParentID = &p
	}
	c.CreatedAt, c.UpdatedAt = utc(c.CreatedAt), utc(c.UpdatedAt)
	return c, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (r *Repository) queryCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) FindCategory(ctx context.Context, id, ownerID int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NotFound(core.EntityCategory, id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("find category %d: %w", id, err)
	}
	return c, nil
}

// ListCategories returns the owner's categories, optionally narrowed to one kind.
func (r *Repository) ListCategories(ctx context.Context, ownerID int64, kind *core.CategoryKind) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = ?`
	args := []any{ownerID}
	if kind != nil {
		query += ` AND category_kind = ?`
		args = append(args, kind.Code())
	}
	query += ` ORDER BY name, id`

	categories, err := r.queryCategories(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindCategoriesByIDs returns the owner's categories among ids. Unknown or
// foreign ids are simply absent from the result.
func (r *Repository) FindCategoriesByIDs(ctx context.Context, ids []int64, ownerID int64) ([]core.Category, error) {
	if len(ids) == 0 {
		return []core.Category{}, nil
	}
	categories, err := r.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids, ownerID)...)
	if err != nil {
		return nil, fmt.Errorf("find categories by ids: %w", err)
	}
	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, category_kind, parent_id, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Kind.Code(), nullableID(c.ParentID), c.OwnerID, now, now)
	if err != nil {
		return core.Category{}, writeError("create", core.EntityCategory, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: last insert id: %w", err)
	}

	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
	return c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id int64, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, category_kind = ?, parent_id = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		c.Name, c.Kind.Code(), nullableID(c.ParentID), r.now(), id, c.OwnerID)
	if err != nil {
		return core.Category{}, writeError("update", core.EntityCategory, err)
	}
	ok, err := affected(res)
	if err != nil {
		return core.Category{}, err
	}
	if !ok {
		return core.Category{}, core.NotFound(core.EntityCategory, id)
	}
	return r.FindCategory(ctx, id, c.OwnerID)
}

// DeleteCategory removes the category. Child categories are orphaned by the
// schema (parent_id set to NULL); a category still used by transactions is
// refused with ErrConflict.
func (r *Repository) DeleteCategory(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return deleteError(core.EntityCategory, id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return core.NotFound(core.EntityCategory, id)
	}
	return nil
}
