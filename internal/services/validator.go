package services

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/core"
)

// ReferenceValidator checks that a transaction's category and account exist
// and belong to the owner. It only reads.
type ReferenceValidator struct {
	categories CategoryReader
	accounts   AccountReader
}

func NewReferenceValidator(categories CategoryReader, accounts AccountReader) *ReferenceValidator {
	return &ReferenceValidator{categories: categories, accounts: accounts}
}

// Validate resolves both references, category first. The resolved rows are
// returned so the caller can enrich without a second lookup.
func (v *ReferenceValidator) Validate(ctx context.Context, ownerID, categoryID, accountID int64) (core.Category, core.Account, error) {
	category, err := v.categories.FindCategory(ctx, categoryID, ownerID)
	if err != nil {
		return core.Category{}, core.Account{}, referenceError(err, core.EntityCategory, categoryID)
	}

	account, err := v.accounts.FindAccount(ctx, accountID, ownerID)
	if err != nil {
		return core.Category{}, core.Account{}, referenceError(err, core.EntityAccount, accountID)
	}

	return category, account, nil
}

// referenceError turns a store not-found into a ReferenceError and leaves
// every other failure wrapped as is.
func referenceError(err error, entity string, id int64) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.MissingReference(entity, id)
	}
	return fmt.Errorf("resolve %s %d: %w", entity, id, err)
}
