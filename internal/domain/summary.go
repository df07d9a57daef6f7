package domain

import (
	"math"
	"time"
)

// MonthlySummary holds the derived figures shown on the dashboard for one
// calendar month. All figures assume a single display currency.
type MonthlySummary struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// Summarize computes income, expense and net totals for the transactions
// falling inside the given month. Amounts are stored unsigned, so totals
// branch on the transaction type, never on the numeric sign; abs() guards
// against rows written before that invariant held. Empty input yields zeros.
func Summarize(txs []Transaction, year int, month time.Month) MonthlySummary {
	s := MonthlySummary{Year: year, Month: int(month)}

	for _, tx := range txs {
		d := tx.TransactionDate
		if d.Year() != year || d.Month() != month {
			continue
		}
		switch tx.Type {
		case TypeIncome:
			s.Income += math.Abs(tx.Amount)
		case TypeExpense:
			s.Expenses += math.Abs(tx.Amount)
		}
	}

	s.Net = s.Income - s.Expenses
	return s
}
