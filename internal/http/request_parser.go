// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for decoding and validating JSON request
// bodies. Handlers receive fully typed domain values or a classified error.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

const maxBodyBytes = 1 << 20

// errMalformedBody marks a body that is not a JSON object at all.
var errMalformedBody = errors.New("malformed JSON body")

// dateLayouts are tried in order; the zone-less forms are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// decodeJSON reads a single JSON value into dst. Syntax problems wrap
// errMalformedBody; a field of the wrong JSON type is a validation failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return core.Invalid("%s must be a %s", typeErr.Field, jsonTypeName(typeErr.Type.Kind().String()))
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is required", errMalformedBody)
		default:
			return fmt.Errorf("%w: %v", errMalformedBody, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON object", errMalformedBody)
	}
	return nil
}

func jsonTypeName(kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
		return "number"
	case "ptr":
		return "number or null"
	}
	return kind
}

// parseDateTime accepts YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS or RFC 3339 and
// returns the instant in UTC.
func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.Invalid("date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, core.Invalid("date must be YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS or RFC 3339")
}

// parseAmount accepts a JSON number or a numeric string.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Decimal{}, core.Invalid("amount is required")
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, core.Invalid("amount must be a number")
		}
		text = strings.TrimSpace(s)
	}
	if len(text) > maxAmountText {
		return decimal.Decimal{}, core.Invalid("amount must be a number")
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, core.Invalid("amount must be a number")
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	if err := checkAmountRange(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

// Amounts must fit DECIMAL(19,4) exactly so both dialects store the value
// the caller sent.
const (
	maxAmountText     = 64
	maxAmountScale    = 4
	maxAmountIntegers = 15
)

// checkAmountRange works on the coefficient and exponent only; rendering
// an amount like 1e200000000 as text would never finish.
func checkAmountRange(d decimal.Decimal) error {
	digits := new(big.Int).Abs(d.Coefficient()).String()
	exp := int64(d.Exponent())
	for exp < 0 && len(digits) > 1 && digits[len(digits)-1] == '0' {
		digits = digits[:len(digits)-1]
		exp++
	}
	if exp < -maxAmountScale {
		return core.Invalid("amount must have at most %d decimal places", maxAmountScale)
	}
	if int64(len(digits))+exp > maxAmountIntegers {
		return core.Invalid("amount must have at most %d integer digits", maxAmountIntegers)
	}
	return nil
}

type transactionPayload struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	CategoryID  int64           `json:"category_id"`
	AccountID   int64           `json:"account_id"`
	Type        string          `json:"type"`
}

func (p transactionPayload) transaction() (core.Transaction, error) {
	occurredAt, err := parseDateTime(p.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(p.Type) == "" {
		return core.Transaction{}, core.Invalid("type is required")
	}
	kind, err := core.ParseTransactionKind(strings.TrimSpace(p.Type))
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		OccurredAt:  occurredAt,
		Description: sanitizeInput(p.Description),
		Amount:      amount,
		CategoryID:  p.CategoryID,
		AccountID:   p.AccountID,
		Kind:        kind,
	}, nil
}

type categoryPayload struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID *int64 `json:"parent_id"`
}

func (p categoryPayload) category() (core.Category, error) {
	if strings.TrimSpace(p.Type) == "" {
		return core.Category{}, core.Invalid("type is required")
	}
	kind, err := core.ParseCategoryKind(strings.TrimSpace(p.Type))
	if err != nil {
		return core.Category{}, err
	}
	return core.Category{
		Name:     sanitizeInput(p.Name),
		Kind:     kind,
		ParentID: p.ParentID,
	}, nil
}

type accountPayload struct {
	Name           string `json:"name"`
	AccountGroupID int64  `json:"account_group_id"`
}

func (p accountPayload) account() core.Account {
	return core.Account{Name: sanitizeInput(p.Name), AccountGroupID: p.AccountGroupID}
}

type accountGroupPayload struct {
	Name string `json:"name"`
}

func (p accountGroupPayload) accountGroup() core.AccountGroup {
	return core.AccountGroup{Name: sanitizeInput(p.Name)}
}

// parseKindFilter reads the optional ?type= filter for category lists.
func parseKindFilter(r *http.Request) (*core.CategoryKind, error) {
	v := strings.TrimSpace(r.URL.Query().Get("type"))
	if v == "" {
		return nil, nil
	}
	kind, err := core.ParseCategoryKind(v)
	if err != nil {
		return nil, err
	}
	return &kind, nil
}
