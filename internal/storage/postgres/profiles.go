package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rjdelrosario/gastos/internal/domain"
)

const profileColumns = `id, clerk_user_id, email, first_name, last_name,
	default_currency, custom_gemini_api_key, theme_preference, created_at, updated_at`

// GetProfileByClerkID looks up the profile provisioned for an identity
// provider user id. Returns ErrNotFound when provisioning has not happened
// yet (the webhook creates profiles asynchronously).
func (s *Store) GetProfileByClerkID(ctx context.Context, clerkUserID string) (*domain.UserProfile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM user_profiles
		WHERE clerk_user_id = $1
	`, clerkUserID)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("GetProfileByClerkID: profile for %s: %w", clerkUserID, ErrNotFound)
		}
		return nil, fmt.Errorf("GetProfileByClerkID: %w", err)
	}
	return p, nil
}

// CreateProfile inserts a freshly provisioned profile.
func (s *Store) CreateProfile(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (clerk_user_id, email, first_name, last_name, default_currency, theme_preference)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+profileColumns+`
	`, p.ClerkUserID, p.Email, p.FirstName, p.LastName, p.DefaultCurrency, p.ThemePreference)

	created, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("CreateProfile: %w", err)
	}
	return created, nil
}

// ProfileSettings are the mutable settings fields. Nil pointers leave the
// stored value unchanged.
type ProfileSettings struct {
	DefaultCurrency    *string
	ThemePreference    *string
	CustomGeminiAPIKey *string
}

// UpdateProfileSettings applies a partial settings update and returns the
// updated profile.
func (s *Store) UpdateProfileSettings(ctx context.Context, profileID string, set ProfileSettings) (*domain.UserProfile, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE user_profiles SET
			default_currency = COALESCE($2, default_currency),
			theme_preference = COALESCE($3, theme_preference),
			custom_gemini_api_key = COALESCE($4, custom_gemini_api_key),
			updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns+`
	`, profileID, set.DefaultCurrency, set.ThemePreference, set.CustomGeminiAPIKey)

	updated, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("UpdateProfileSettings: profile %s: %w", profileID, ErrNotFound)
		}
		return nil, fmt.Errorf("UpdateProfileSettings: %w", err)
	}
	return updated, nil
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := row.Scan(
		&p.ID,
		&p.ClerkUserID,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.DefaultCurrency,
		&p.CustomGeminiAPIKey,
		&p.ThemePreference,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
