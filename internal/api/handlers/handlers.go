// Package handlers implements the HTTP API: receipt parsing, transaction
// CRUD, monthly summaries, profile settings, custom prompts, and the
// identity provider webhook.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rjdelrosario/gastos/internal/api/middleware"
	"github.com/rjdelrosario/gastos/internal/domain"
	"github.com/rjdelrosario/gastos/internal/storage/postgres"
)

// ProfileRepository is the profile storage surface the handlers consume.
// *postgres.Store satisfies it.
type ProfileRepository interface {
	GetProfileByClerkID(ctx context.Context, clerkUserID string) (*domain.UserProfile, error)
	CreateProfile(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error)
	UpdateProfileSettings(ctx context.Context, profileID string, set postgres.ProfileSettings) (*domain.UserProfile, error)
}

// TransactionRepository is the transaction storage surface the handlers consume.
type TransactionRepository interface {
	InsertTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, profileID string, page, limit int) ([]domain.Transaction, error)
	ListTransactionsForMonth(ctx context.Context, profileID string, year int, month time.Month) ([]domain.Transaction, error)
}

// PromptRepository is the prompt storage surface the handlers consume.
type PromptRepository interface {
	GetActivePrompt(ctx context.Context, profileID string) (*domain.UserPrompt, error)
	ListPrompts(ctx context.Context, profileID string) ([]domain.UserPrompt, error)
	CreatePrompt(ctx context.Context, profileID, name, content string) (*domain.UserPrompt, error)
	ActivatePrompt(ctx context.Context, profileID, promptID string) (*domain.UserPrompt, error)
}

// requireProfile resolves the authenticated caller's profile. It writes the
// appropriate error response and returns nil when the request carries no
// identity (401) or the identity has no provisioned profile yet (404).
func requireProfile(w http.ResponseWriter, r *http.Request, profiles ProfileRepository) *domain.UserProfile {
	clerkUserID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil
	}

	profile, err := profiles.GetProfileByClerkID(r.Context(), clerkUserID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "User profile not found")
			return nil
		}
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load user profile")
		return nil
	}
	return profile
}
