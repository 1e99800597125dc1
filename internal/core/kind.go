package core

import (
	"encoding/json"
	"fmt"
)

// TransactionKind and CategoryKind share the closed domain {Income, Expense}
// but are kept as distinct types so one cannot be passed where the other is
// expected. The zero value is not a valid kind.
type (
	TransactionKind uint8
	CategoryKind    uint8
)

const (
	TransactionIncome  TransactionKind = 1
	TransactionExpense TransactionKind = 2
)

const (
	CategoryIncome  CategoryKind = 1
	CategoryExpense CategoryKind = 2
)

const (
	symbolIncome  = "income"
	symbolExpense = "expense"
)

type kind interface {
	~uint8
}

func kindSymbol[K kind](k K) string {
	switch k {
	case 1:
		return symbolIncome
	case 2:
		return symbolExpense
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func kindLabel[K kind](k K) string {
	switch k {
	case 1:
		return "Income"
	case 2:
		return "Expense"
	default:
		return ""
	}
}

func parseKind[K kind](s string) (K, error) {
	switch s {
	case symbolIncome:
		return 1, nil
	case symbolExpense:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func kindFromCode[K kind](code int64) (K, error) {
	if code != 1 && code != 2 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownKindCode, code)
	}
	return K(code), nil
}

func unmarshalKind[K kind](data []byte) (K, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("%w: kind must be a string", ErrInvalidKind)
	}
	return parseKind[K](s)
}

// ParseTransactionKind accepts exactly "income" or "expense".
func ParseTransactionKind(s string) (TransactionKind, error) { return parseKind[TransactionKind](s) }

// TransactionKindFromCode decodes a persisted code, failing on anything but 1 or 2.
func TransactionKindFromCode(code int64) (TransactionKind, error) {
	return kindFromCode[TransactionKind](code)
}

func (k TransactionKind) Code() int64    { return int64(k) }
func (k TransactionKind) String() string { return kindSymbol(k) }
func (k TransactionKind) Label() string  { return kindLabel(k) }
func (k TransactionKind) Valid() bool    { return k == TransactionIncome || k == TransactionExpense }

func (k TransactionKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKindCode, k)
	}
	return json.Marshal(k.String())
}

func (k *TransactionKind) UnmarshalJSON(data []byte) error {
	v, err := unmarshalKind[TransactionKind](data)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseCategoryKind accepts exactly "income" or "expense".
func ParseCategoryKind(s string) (CategoryKind, error) { return parseKind[CategoryKind](s) }

// CategoryKindFromCode decodes a persisted code, failing on anything but 1 or 2.
func CategoryKindFromCode(code int64) (CategoryKind, error) {
	return kindFromCode[CategoryKind](code)
}

func (k CategoryKind) Code() int64    { return int64(k) }
func (k CategoryKind) String() string { return kindSymbol(k) }
func (k CategoryKind) Label() string  { return kindLabel(k) }
func (k CategoryKind) Valid() bool    { return k == CategoryIncome || k == CategoryExpense }

func (k CategoryKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKindCode, k)
	}
	return json.Marshal(k.String())
}

func (k *CategoryKind) UnmarshalJSON(data []byte) error {
	v, err := unmarshalKind[CategoryKind](data)
	if err != nil {
		return err
	}
	*k = v
	return nil
}
