package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

type failingCategories struct{ CategoryReader }

func (failingCategories) FindCategory(context.Context, int64, int64) (core.Category, error) {
	return core.Category{}, errors.New("connection reset")
}

func TestReferenceValidator(t *testing.T) {
	store := newMemStore()
	store.addCategory(1, 1, "Salary", core.CategoryIncome)
	store.addCategory(2, 2, "Someone else's", core.CategoryExpense)
	store.addAccount(10, 1, "Wallet")
	store.addAccount(20, 2, "Someone else's")

	v := NewReferenceValidator(store, store)
	ctx := context.Background()

	tests := []struct {
		name       string
		categoryID int64
		accountID  int64
		wantErr    error
	}{
		{"both owned", 1, 10, nil},
		{"category missing", 99, 10, core.ErrCategoryNotFound},
		{"category of another owner", 2, 10, core.ErrCategoryNotFound},
		{"account missing", 1, 99, core.ErrAccountNotFound},
		{"account of another owner", 1, 20, core.ErrAccountNotFound},
		{"category checked first", 99, 99, core.ErrCategoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, a, err := v.Validate(ctx, 1, tt.categoryID, tt.accountID)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.categoryID, c.ID)
				assert.Equal(t, tt.accountID, a.ID)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, core.ErrReferenceNotFound)
		})
	}
}

func TestReferenceValidatorStoreFailureIsNotAReferenceError(t *testing.T) {
	store := newMemStore()
	v := NewReferenceValidator(failingCategories{store}, store)

	_, _, err := v.Validate(context.Background(), 1, 1, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrReferenceNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}
