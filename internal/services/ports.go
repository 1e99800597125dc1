package services

import (
	"context"

	"ledger/internal/amqp"
	"ledger/internal/core"
)

// Store contracts. Not-found conditions are reported as core.ErrNotFound.
type (
	CategoryReader interface {
		FindCategory(ctx context.Context, id, ownerID int64) (core.Category, error)
		FindCategoriesByIDs(ctx context.Context, ids []int64, ownerID int64) ([]core.Category, error)
	}

	AccountReader interface {
		FindAccount(ctx context.Context, id, ownerID int64) (core.Account, error)
		FindAccountsByIDs(ctx context.Context, ids []int64, ownerID int64) ([]core.Account, error)
	}

	TransactionStore interface {
		FindTransaction(ctx context.Context, id, ownerID int64) (core.Transaction, error)
		ListTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id, ownerID int64) error
	}

	AccountGroupStore interface {
		FindAccountGroup(ctx context.Context, id, ownerID int64) (core.AccountGroup, error)
		ListAccountGroups(ctx context.Context, ownerID int64) ([]core.AccountGroup, error)
		CreateAccountGroup(ctx context.Context, g core.AccountGroup) (core.AccountGroup, error)
		UpdateAccountGroup(ctx context.Context, id int64, g core.AccountGroup) (core.AccountGroup, error)
		DeleteAccountGroup(ctx context.Context, id, ownerID int64) error
	}

	AccountStore interface {
		AccountReader
		ListAccounts(ctx context.Context, ownerID int64) ([]core.Account, error)
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
		UpdateAccount(ctx context.Context, id int64, a core.Account) (core.Account, error)
		DeleteAccount(ctx context.Context, id, ownerID int64) error
	}

	CategoryStore interface {
		CategoryReader
		ListCategories(ctx context.Context, ownerID int64, kind *core.CategoryKind) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, id int64, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, id, ownerID int64) error
	}

	// EventPublisher announces transaction changes to downstream consumers.
	EventPublisher interface {
		Publish(ctx context.Context, evt *amqp.LedgerEvent) error
	}
)
