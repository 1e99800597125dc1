package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type (
	CategorySummary struct {
		ID   int64        `json:"id"`
		Name string       `json:"name"`
		Kind CategoryKind `json:"type"`
	}

	AccountSummary struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	// EnrichedTransaction is the read projection of a Transaction. It is
	// rebuilt on every read and never stored.
	EnrichedTransaction struct {
		ID          int64           `json:"id"`
		OccurredAt  time.Time       `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Currency    string          `json:"currency"`
		Kind        TransactionKind `json:"type"`
		Category    CategorySummary `json:"category"`
		Account     AccountSummary  `json:"account"`
		OwnerID     int64           `json:"owner_id"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}
)

func (e EnrichedTransaction) CategoryID() int64 { return e.Category.ID }
func (e EnrichedTransaction) AccountID() int64  { return e.Account.ID }

// Enrich attaches the category and account summaries to t. The caller
// resolves both; a mismatch with t's references is an integrity fault.
func Enrich(t Transaction, c Category, a Account) (EnrichedTransaction, error) {
	if c.ID != t.CategoryID {
		return EnrichedTransaction{}, fmt.Errorf("%w: transaction %d references category %d, got %d",
			ErrIntegrity, t.ID, t.CategoryID, c.ID)
	}
	if a.ID != t.AccountID {
		return EnrichedTransaction{}, fmt.Errorf("%w: transaction %d references account %d, got %d",
			ErrIntegrity, t.ID, t.AccountID, a.ID)
	}

	return EnrichedTransaction{
		ID:          t.ID,
		OccurredAt:  t.OccurredAt,
		Description: t.Description,
		Amount:      t.Amount,
		Currency:    Currency,
		Kind:        t.Kind,
		Category:    CategorySummary{ID: c.ID, Name: c.Name, Kind: c.Kind},
		Account:     AccountSummary{ID: a.ID, Name: a.Name},
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

// EnrichWith enriches every transaction from prebuilt indexes. Any miss
// fails the whole batch.
func EnrichWith(txs []Transaction, categories Index[Category], accounts Index[Account]) ([]EnrichedTransaction, error) {
	out := make([]EnrichedTransaction, 0, len(txs))
	for _, t := range txs {
		c, err := categories.Get(t.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("enrich transaction %d: %w", t.ID, err)
		}
		a, err := accounts.Get(t.AccountID)
		if err != nil {
			return nil, fmt.Errorf("enrich transaction %d: %w", t.ID, err)
		}
		e, err := Enrich(t, c, a)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ReferencedIDs returns the distinct category and account ids of txs in
// first-seen order.
func ReferencedIDs(txs []Transaction) (categoryIDs, accountIDs []int64) {
	seenCat := make(map[int64]struct{})
	seenAcc := make(map[int64]struct{})
	for _, t := range txs {
		if _, ok := seenCat[t.CategoryID]; !ok {
			seenCat[t.CategoryID] = struct{}{}
			categoryIDs = append(categoryIDs, t.CategoryID)
		}
		if _, ok := seenAcc[t.AccountID]; !ok {
			seenAcc[t.AccountID] = struct{}{}
			accountIDs = append(accountIDs, t.AccountID)
		}
	}
	return categoryIDs, accountIDs
}
