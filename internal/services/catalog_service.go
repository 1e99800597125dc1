package services

import (
	"context"

	"ledger/internal/core"
)

// CatalogService is the plain CRUD surface for account groups, accounts and
// categories. Apart from name and kind checks it only verifies that a
// referenced group or parent category exists for the owner.
type CatalogService struct {
	groups     AccountGroupStore
	accounts   AccountStore
	categories CategoryStore
}

func NewCatalogService(groups AccountGroupStore, accounts AccountStore, categories CategoryStore) *CatalogService {
	return &CatalogService{groups: groups, accounts: accounts, categories: categories}
}

// Account groups

func (s *CatalogService) AccountGroup(ctx context.Context, ownerID, id int64) (core.AccountGroup, error) {
	return s.groups.FindAccountGroup(ctx, id, ownerID)
}

func (s *CatalogService) AccountGroups(ctx context.Context, ownerID int64) ([]core.AccountGroup, error) {
	return s.groups.ListAccountGroups(ctx, ownerID)
}

func (s *CatalogService) CreateAccountGroup(ctx context.Context, ownerID int64, g core.AccountGroup) (core.AccountGroup, error) {
	g.OwnerID = ownerID
	if err := g.Validate(); err != nil {
		return core.AccountGroup{}, err
	}
	return s.groups.CreateAccountGroup(ctx, g)
}

func (s *CatalogService) UpdateAccountGroup(ctx context.Context, ownerID, id int64, g core.AccountGroup) (core.AccountGroup, error) {
	g.ID, g.OwnerID = id, ownerID
	if err := g.Validate(); err != nil {
		return core.AccountGroup{}, err
	}
	return s.groups.UpdateAccountGroup(ctx, id, g)
}

func (s *CatalogService) DeleteAccountGroup(ctx context.Context, ownerID, id int64) error {
	return s.groups.DeleteAccountGroup(ctx, id, ownerID)
}

// Accounts

func (s *CatalogService) Account(ctx context.Context, ownerID, id int64) (core.Account, error) {
	return s.accounts.FindAccount(ctx, id, ownerID)
}

func (s *CatalogService) Accounts(ctx context.Context, ownerID int64) ([]core.Account, error) {
	return s.accounts.ListAccounts(ctx, ownerID)
}

func (s *CatalogService) CreateAccount(ctx context.Context, ownerID int64, a core.Account) (core.Account, error) {
	a.OwnerID = ownerID
	if err := s.checkAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	return s.accounts.CreateAccount(ctx, a)
}

func (s *CatalogService) UpdateAccount(ctx context.Context, ownerID, id int64, a core.Account) (core.Account, error) {
	a.ID, a.OwnerID = id, ownerID
	if err := s.checkAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	return s.accounts.UpdateAccount(ctx, id, a)
}

func (s *CatalogService) DeleteAccount(ctx context.Context, ownerID, id int64) error {
	return s.accounts.DeleteAccount(ctx, id, ownerID)
}

func (s *CatalogService) checkAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := s.groups.FindAccountGroup(ctx, a.AccountGroupID, a.OwnerID); err != nil {
		return referenceError(err, core.EntityAccountGroup, a.AccountGroupID)
	}
	return nil
}

// Categories

func (s *CatalogService) Category(ctx context.Context, ownerID, id int64) (core.Category, error) {
	return s.categories.FindCategory(ctx, id, ownerID)
}

// Categories lists the owner's categories, optionally only those of kind.
func (s *CatalogService) Categories(ctx context.Context, ownerID int64, kind *core.CategoryKind) ([]core.Category, error) {
	if kind != nil && !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	return s.categories.ListCategories(ctx, ownerID, kind)
}

func (s *CatalogService) CreateCategory(ctx context.Context, ownerID int64, c core.Category) (core.Category, error) {
	c.OwnerID = ownerID
	if err := s.checkCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return s.categories.CreateCategory(ctx, c)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, ownerID, id int64, c core.Category) (core.Category, error) {
	c.ID, c.OwnerID = id, ownerID
	if err := s.checkCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return s.categories.UpdateCategory(ctx, id, c)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	return s.categories.DeleteCategory(ctx, id, ownerID)
}

// checkCategory validates c and resolves its parent. Cycles deeper than a
// direct self-reference are not detected.
func (s *CatalogService) checkCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ParentID == nil {
		return nil
	}
	if _, err := s.categories.FindCategory(ctx, *c.ParentID, c.OwnerID); err != nil {
		return referenceError(err, core.EntityCategory, *c.ParentID)
	}
	return nil
}
