package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
)

// TransactionService owns the transaction write path (validate, persist,
// announce) and the enriched read path.
type TransactionService struct {
	store      TransactionStore
	categories CategoryReader
	accounts   AccountReader
	validator  *ReferenceValidator
	publisher  EventPublisher
}

// NewTransactionService wires the service. publisher may be nil, in which
// case no events are sent.
func NewTransactionService(store TransactionStore, categories CategoryReader, accounts AccountReader, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:      store,
		categories: categories,
		accounts:   accounts,
		validator:  NewReferenceValidator(categories, accounts),
		publisher:  publisher,
	}
}

func (s *TransactionService) Create(ctx context.Context, ownerID int64, t core.Transaction) (core.EnrichedTransaction, error) {
	t.OwnerID = ownerID
	if err := t.Validate(); err != nil {
		return core.EnrichedTransaction{}, err
	}

	category, account, err := s.validator.Validate(ctx, ownerID, t.CategoryID, t.AccountID)
	if err != nil {
		return core.EnrichedTransaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.EnrichedTransaction{}, fmt.Errorf("save transaction: %w", err)
	}

	enriched, err := core.Enrich(saved, category, account)
	if err != nil {
		return core.EnrichedTransaction{}, err
	}

	s.publish(ctx, amqp.EventTransactionCreated, saved.ID, ownerID)
	return enriched, nil
}

// Update replaces transaction id. Both references are re-validated even
// when unchanged so an owner mismatch through stale data is caught.
func (s *TransactionService) Update(ctx context.Context, ownerID, id int64, t core.Transaction) (core.EnrichedTransaction, error) {
	t.ID = id
	t.OwnerID = ownerID
	if err := t.Validate(); err != nil {
		return core.EnrichedTransaction{}, err
	}

	category, account, err := s.validator.Validate(ctx, ownerID, t.CategoryID, t.AccountID)
	if err != nil {
		return core.EnrichedTransaction{}, err
	}

	saved, err := s.store.UpdateTransaction(ctx, id, t)
	if err != nil {
		return core.EnrichedTransaction{}, fmt.Errorf("update transaction: %w", err)
	}

	enriched, err := core.Enrich(saved, category, account)
	if err != nil {
		return core.EnrichedTransaction{}, err
	}

	s.publish(ctx, amqp.EventTransactionUpdated, id, ownerID)
	return enriched, nil
}

func (s *TransactionService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.EventTransactionDeleted, id, ownerID)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, ownerID, id int64) (core.EnrichedTransaction, error) {
	t, err := s.store.FindTransaction(ctx, id, ownerID)
	if err != nil {
		return core.EnrichedTransaction{}, err
	}

	enriched, err := s.EnrichAll(ctx, ownerID, []core.Transaction{t})
	if err != nil {
		return core.EnrichedTransaction{}, err
	}
	return enriched[0], nil
}

func (s *TransactionService) List(ctx context.Context, ownerID int64) ([]core.EnrichedTransaction, error) {
	txs, err := s.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return s.EnrichAll(ctx, ownerID, txs)
}

// Groups loads, enriches and groups every transaction of the owner by UTC
// day. There is no paging; the full set is processed on every call.
func (s *TransactionService) Groups(ctx context.Context, ownerID int64) ([]core.DateGroup, error) {
	enriched, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return core.GroupByDate(enriched), nil
}

// EnrichAll resolves the distinct categories and accounts of txs with one
// bulk lookup each and enriches every transaction. A reference missing from
// either lookup fails the whole batch with core.ErrIntegrity.
func (s *TransactionService) EnrichAll(ctx context.Context, ownerID int64, txs []core.Transaction) ([]core.EnrichedTransaction, error) {
	if len(txs) == 0 {
		return []core.EnrichedTransaction{}, nil
	}

	categoryIDs, accountIDs := core.ReferencedIDs(txs)

	var (
		categories []core.Category
		accounts   []core.Account
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.categories.FindCategoriesByIDs(gctx, categoryIDs, ownerID)
		if err != nil {
			return fmt.Errorf("bulk load categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.FindAccountsByIDs(gctx, accountIDs, ownerID)
		if err != nil {
			return fmt.Errorf("bulk load accounts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	categoryIndex := core.NewIndex(core.EntityCategory, categories, core.CategoryID)
	accountIndex := core.NewIndex(core.EntityAccount, accounts, core.AccountID)
	slog.DebugContext(ctx, "Bulk references loaded",
		log.FieldOwnerID, ownerID,
		"transactions", len(txs),
		"categories", categoryIndex.Len(),
		"accounts", accountIndex.Len())

	enriched, err := core.EnrichWith(txs, categoryIndex, accountIndex)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction enrichment failed", log.FieldOwnerID, ownerID, log.FieldError, err)
		return nil, err
	}
	return enriched, nil
}

// publish never fails the request: the write is already durable and the
// worker can be resynchronised.
func (s *TransactionService) publish(ctx context.Context, t amqp.EventType, id, ownerID int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping event", "type", t, "transaction_id", id)
		return
	}
	if err := s.publisher.Publish(ctx, amqp.NewLedgerEvent(t, id, ownerID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", t,
			"transaction_id", id,
			"error", err)
	}
}
