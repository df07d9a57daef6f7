package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rjdelrosario/gastos/internal/api/middleware"
	"github.com/rjdelrosario/gastos/internal/domain"
)

// SummaryHandler serves the dashboard's monthly aggregate figures.
type SummaryHandler struct {
	repo     TransactionRepository
	profiles ProfileRepository
	log      zerolog.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(repo TransactionRepository, profiles ProfileRepository, log zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{
		repo:     repo,
		profiles: profiles,
		log:      log,
	}
}

// Get handles GET /api/summary. month and year query parameters default to
// the current month.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile := requireProfile(w, r, h.profiles)
	if profile == nil {
		return
	}

	now := time.Now()
	query := r.URL.Query()
	year := intParam(query.Get("year"), now.Year())
	monthNum := intParam(query.Get("month"), int(now.Month()))
	if monthNum < 1 || monthNum > 12 {
		middleware.WriteError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}
	month := time.Month(monthNum)

	transactions, err := h.repo.ListTransactionsForMonth(ctx, profile.ID, year, month)
	if err != nil {
		h.log.Error().Err(err).Int("year", year).Int("month", monthNum).Msg("Failed to load month transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, domain.Summarize(transactions, year, month))
}
