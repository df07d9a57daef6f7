package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rjdelrosario/gastos/internal/domain"
)

const promptColumns = `id, user_id, name, prompt_content, is_active, version, created_at, updated_at`

// GetActivePrompt returns the user's single active custom prompt, or
// ErrNotFound when none is active.
func (s *Store) GetActivePrompt(ctx context.Context, profileID string) (*domain.UserPrompt, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+promptColumns+`
		FROM user_prompts
		WHERE user_id = $1 AND is_active
	`, profileID)

	p, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("GetActivePrompt: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("GetActivePrompt: %w", err)
	}
	return p, nil
}

// ListPrompts returns all of the user's prompts, newest first.
func (s *Store) ListPrompts(ctx context.Context, profileID string) ([]domain.UserPrompt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+promptColumns+`
		FROM user_prompts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("ListPrompts: %w", err)
	}
	defer rows.Close()

	prompts := make([]domain.UserPrompt, 0)
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPrompts: scanning: %w", err)
		}
		prompts = append(prompts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListPrompts: iterating: %w", err)
	}
	return prompts, nil
}

// CreatePrompt inserts a new inactive prompt for the user.
func (s *Store) CreatePrompt(ctx context.Context, profileID, name, content string) (*domain.UserPrompt, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO user_prompts (user_id, name, prompt_content)
		VALUES ($1, $2, $3)
		RETURNING `+promptColumns+`
	`, profileID, name, content)

	p, err := scanPrompt(row)
	if err != nil {
		return nil, fmt.Errorf("CreatePrompt: %w", err)
	}
	return p, nil
}

// ActivatePrompt makes the given prompt the user's single active one. The
// deactivate-then-activate swap runs in a transaction so the partial unique
// index never sees two active rows.
func (s *Store) ActivatePrompt(ctx context.Context, profileID, promptID string) (*domain.UserPrompt, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ActivatePrompt: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE user_prompts SET is_active = FALSE, updated_at = now()
		WHERE user_id = $1 AND is_active
	`, profileID); err != nil {
		return nil, fmt.Errorf("ActivatePrompt: deactivate: %w", err)
	}

	row := tx.QueryRow(ctx, `
		UPDATE user_prompts SET is_active = TRUE, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+promptColumns+`
	`, promptID, profileID)

	p, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ActivatePrompt: prompt %s: %w", promptID, ErrNotFound)
		}
		return nil, fmt.Errorf("ActivatePrompt: activate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ActivatePrompt: commit: %w", err)
	}
	return p, nil
}

func scanPrompt(row pgx.Row) (*domain.UserPrompt, error) {
	var p domain.UserPrompt
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.PromptContent,
		&p.IsActive,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
