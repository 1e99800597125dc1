package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the display label attached to every enriched transaction.
// The ledger is single-currency; no conversion happens anywhere.
const Currency = "IDR"

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type (
	AccountGroup struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		OwnerID   int64     `json:"owner_id"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Account struct {
		ID             int64     `json:"id"`
		Name           string    `json:"name"`
		AccountGroupID int64     `json:"account_group_id"`
		OwnerID        int64     `json:"owner_id"`
		CreatedAt      time.Time `json:"created_at"`
		UpdatedAt      time.Time `json:"updated_at"`
	}

	Category struct {
		ID        int64        `json:"id"`
		Name      string       `json:"name"`
		Kind      CategoryKind `json:"type"`
		ParentID  *int64       `json:"parent_id"`
		OwnerID   int64        `json:"owner_id"`
		CreatedAt time.Time    `json:"created_at"`
		UpdatedAt time.Time    `json:"updated_at"`
	}

	Transaction struct {
		ID          int64
		OccurredAt  time.Time
		Description string
		Amount      decimal.Decimal
		OwnerID     int64
		CategoryID  int64
		AccountID   int64
		Kind        TransactionKind
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

func (g AccountGroup) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return Invalid("name is required")
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return Invalid("name is required")
	}
	if a.AccountGroupID <= 0 {
		return Invalid("account_group_id is required")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name is required")
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	if c.ParentID != nil {
		if *c.ParentID <= 0 {
			return Invalid("parent_id must be a positive id")
		}
		if c.ID != 0 && *c.ParentID == c.ID {
			return Invalid("category cannot be its own parent")
		}
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.OccurredAt.IsZero() {
		return Invalid("date is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return Invalid("description is required")
	}
	if t.CategoryID <= 0 {
		return Invalid("category_id is required")
	}
	if t.AccountID <= 0 {
		return Invalid("account_id is required")
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}
