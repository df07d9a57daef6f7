package domain

import (
	"testing"
	"time"
)

func tx(t TransactionType, amount float64, date Date) Transaction {
	return Transaction{Amount: amount, Currency: "PHP", Type: t, TransactionDate: date}
}

func TestSummarize(t *testing.T) {
	june := NewDate(2025, time.June, 15)
	july := NewDate(2025, time.July, 2)

	tests := []struct {
		name         string
		txs          []Transaction
		wantIncome   float64
		wantExpenses float64
		wantNet      float64
	}{
		{
			name: "mixed month with out-of-month record excluded",
			txs: []Transaction{
				tx(TypeIncome, 100, june),
				tx(TypeExpense, 40, june),
				tx(TypeExpense, 999, july),
			},
			wantIncome:   100,
			wantExpenses: 40,
			wantNet:      60,
		},
		{
			name:         "empty input yields zeros",
			txs:          nil,
			wantIncome:   0,
			wantExpenses: 0,
			wantNet:      0,
		},
		{
			name: "totals branch on type not sign",
			txs: []Transaction{
				tx(TypeExpense, 25.5, june),
				tx(TypeExpense, 10, june),
				tx(TypeIncome, 5, june),
			},
			wantIncome:   5,
			wantExpenses: 35.5,
			wantNet:      -30.5,
		},
		{
			name: "same month different year excluded",
			txs: []Transaction{
				tx(TypeIncome, 100, NewDate(2024, time.June, 15)),
			},
			wantIncome:   0,
			wantExpenses: 0,
			wantNet:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.txs, 2025, time.June)
			if got.Income != tt.wantIncome {
				t.Errorf("Income = %v, want %v", got.Income, tt.wantIncome)
			}
			if got.Expenses != tt.wantExpenses {
				t.Errorf("Expenses = %v, want %v", got.Expenses, tt.wantExpenses)
			}
			if got.Net != tt.wantNet {
				t.Errorf("Net = %v, want %v", got.Net, tt.wantNet)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Amount:          12.5,
		Currency:        "PHP",
		Type:            TypeExpense,
		TransactionDate: NewDate(2025, time.June, 15),
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr bool
	}{
		{"valid expense", func(*Transaction) {}, false},
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }, true},
		{"negative amount", func(tx *Transaction) { tx.Amount = -10 }, true},
		{"currency too short", func(tx *Transaction) { tx.Currency = "PH" }, true},
		{"currency too long", func(tx *Transaction) { tx.Currency = "PESO" }, true},
		{"unknown type", func(tx *Transaction) { tx.Type = "transfer" }, true},
		{"missing date", func(tx *Transaction) { tx.TransactionDate = Date{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, time.January, 19)

	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(data) != `"2025-01-19"` {
		t.Errorf("MarshalJSON = %s, want %q", data, `"2025-01-19"`)
	}

	var back Date
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2025-13-40"); err == nil {
		t.Error("expected error for impossible date")
	}
	if _, err := ParseDate("19/01/2025"); err == nil {
		t.Error("expected error for wrong format")
	}
	d, err := ParseDate(" 2025-01-19 ")
	if err != nil {
		t.Fatalf("ParseDate with surrounding spaces failed: %v", err)
	}
	if d.Day() != 19 {
		t.Errorf("Day = %d, want 19", d.Day())
	}
}
