package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType distinguishes money coming in from money going out.
// Amounts are stored unsigned; the semantics live here, never in the sign.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is one confirmed income or expense record owned by a profile.
type Transaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Amount          float64         `json:"amount"`
	Currency        string          `json:"currency"`
	Type            TransactionType `json:"transaction_type"`
	MerchantName    *string         `json:"merchant_name,omitempty"`
	Category        *string         `json:"category,omitempty"`
	TransactionDate Date            `json:"transaction_date"`
	Description     *string         `json:"description,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	ImageURL        *string         `json:"image_url,omitempty"`
	IsAIParsed      bool            `json:"is_ai_parsed"`
	ConfidenceScore *float64        `json:"confidence_score,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Validate checks the invariants every stored transaction must satisfy:
// positive amount, 3-letter currency, known type, and a transaction date.
func (t *Transaction) Validate() error {
	if t.Amount <= 0 {
		return fmt.Errorf("amount must be a positive number, got %v", t.Amount)
	}
	if len(t.Currency) != 3 {
		return fmt.Errorf("currency must be exactly 3 characters, got %q", t.Currency)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("transaction_type must be %q or %q, got %q", TypeIncome, TypeExpense, t.Type)
	}
	if t.TransactionDate.IsZero() {
		return fmt.Errorf("transaction_date is required")
	}
	return nil
}

// Date is a calendar date without a time component. It marshals as
// "YYYY-MM-DD" on the wire and maps to a Postgres DATE column.
type Date struct {
	time.Time
}

// NewDate builds a Date from year/month/day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
