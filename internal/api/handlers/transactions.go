package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rjdelrosario/gastos/internal/api/middleware"
	"github.com/rjdelrosario/gastos/internal/domain"
)

// TransactionsHandler handles transaction endpoints. All of them require an
// authenticated caller with a provisioned profile.
type TransactionsHandler struct {
	repo     TransactionRepository
	profiles ProfileRepository
	log      zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo TransactionRepository, profiles ProfileRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		repo:     repo,
		profiles: profiles,
		log:      log,
	}
}

// Create handles POST /api/transactions. The body is a reviewed draft or a
// manual entry; it is validated before anything is written.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile := requireProfile(w, r, h.profiles)
	if profile == nil {
		return
	}

	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Ownership comes from the session, never from the body.
	tx.UserID = profile.ID
	tx.ID = ""

	if err := tx.Validate(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if tx.ConfidenceScore != nil && (*tx.ConfidenceScore < 0 || *tx.ConfidenceScore > 1) {
		middleware.WriteError(w, http.StatusBadRequest, "confidence_score must be between 0 and 1")
		return
	}

	stored, err := h.repo.InsertTransaction(ctx, &tx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, stored)
}

// List handles GET /api/transactions with page/limit pagination, newest
// transaction date first.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile := requireProfile(w, r, h.profiles)
	if profile == nil {
		return
	}

	query := r.URL.Query()
	page := intParam(query.Get("page"), 1)
	limit := intParam(query.Get("limit"), 20)

	transactions, err := h.repo.ListTransactions(ctx, profile.ID, page, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"page":         page,
		"limit":        limit,
		"count":        len(transactions),
	})
}

func intParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
