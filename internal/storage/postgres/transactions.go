package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rjdelrosario/gastos/internal/domain"
)

const transactionColumns = `id, user_id, amount, currency, transaction_type,
	merchant_name, category, transaction_date, description, notes, image_url,
	is_ai_parsed, confidence_score, created_at, updated_at`

// InsertTransaction persists a validated transaction scoped to its owner
// and returns the stored row.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("InsertTransaction: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO transactions (
			user_id, amount, currency, transaction_type, merchant_name,
			category, transaction_date, description, notes, image_url,
			is_ai_parsed, confidence_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+transactionColumns+`
	`,
		tx.UserID, tx.Amount, tx.Currency, tx.Type, tx.MerchantName,
		tx.Category, tx.TransactionDate.Time, tx.Description, tx.Notes,
		tx.ImageURL, tx.IsAIParsed, tx.ConfidenceScore,
	)

	stored, err := scanTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("InsertTransaction: %w", err)
	}
	return stored, nil
}

// ListTransactions returns one page of the owner's transactions ordered by
// transaction date descending.
func (s *Store) ListTransactions(ctx context.Context, profileID string, page, limit int) ([]domain.Transaction, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	rows, err := s.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`, profileID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListTransactionsForMonth returns all of the owner's transactions dated
// inside the given calendar month, for the summary view.
func (s *Store) ListTransactionsForMonth(ctx context.Context, profileID string, year int, month time.Month) ([]domain.Transaction, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := s.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		  AND transaction_date >= $2
		  AND transaction_date < $3
		ORDER BY transaction_date DESC
	`, profileID, start, end)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsForMonth: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	// Empty result must serialize as [], not null.
	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Amount,
		&tx.Currency,
		&tx.Type,
		&tx.MerchantName,
		&tx.Category,
		&tx.TransactionDate.Time,
		&tx.Description,
		&tx.Notes,
		&tx.ImageURL,
		&tx.IsAIParsed,
		&tx.ConfidenceScore,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
