package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateKeyLayout is the bucket key format. Keys compare lexically in
// chronological order only because every part is zero-padded.
const DateKeyLayout = "2006-01-02"

// DateGroup summarises one UTC calendar day.
type DateGroup struct {
	Date             string                `json:"date"`
	TotalIncome      decimal.Decimal       `json:"total_income"`
	TotalExpense     decimal.Decimal       `json:"total_expense"`
	NetTotal         decimal.Decimal       `json:"net_total"`
	TransactionCount int                   `json:"transaction_count"`
	Transactions     []EnrichedTransaction `json:"transactions"`
}

// DateKey truncates t to its UTC calendar day.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateKeyLayout)
}

// GroupByDate buckets txs by UTC day, keeping input order inside each day,
// and returns the groups newest day first. Expense amounts are summed by
// magnitude so the stored sign does not matter.
func GroupByDate(txs []EnrichedTransaction) []DateGroup {
	buckets := make(map[string]*DateGroup)
	keys := make([]string, 0)

	for _, t := range txs {
		key := DateKey(t.OccurredAt)
		g, ok := buckets[key]
		if !ok {
			g = &DateGroup{
				Date:         key,
				TotalIncome:  decimal.Zero,
				TotalExpense: decimal.Zero,
				Transactions: make([]EnrichedTransaction, 0, 1),
			}
			buckets[key] = g
			keys = append(keys, key)
		}

		switch t.Kind {
		case TransactionIncome:
			g.TotalIncome = g.TotalIncome.Add(t.Amount)
		case TransactionExpense:
			g.TotalExpense = g.TotalExpense.Add(t.Amount.Abs())
		}
		g.Transactions = append(g.Transactions, t)
	}

	sort.SliceStable(keys, func(i, j int) bool { return keys[i] > keys[j] })

	out := make([]DateGroup, 0, len(keys))
	for _, k := range keys {
		g := buckets[k]
		g.NetTotal = g.TotalIncome.Sub(g.TotalExpense)
		g.TransactionCount = len(g.Transactions)
		out = append(out, *g)
	}
	return out
}
