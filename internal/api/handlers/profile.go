package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rjdelrosario/gastos/internal/api/middleware"
	"github.com/rjdelrosario/gastos/internal/domain"
	"github.com/rjdelrosario/gastos/internal/storage/postgres"
)

// ProfileHandler handles the profile settings endpoints.
type ProfileHandler struct {
	profiles ProfileRepository
	log      zerolog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles ProfileRepository, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		log:      log,
	}
}

// profileResponse is the profile as the settings page sees it. The custom
// model credential itself never leaves the server.
type profileResponse struct {
	*domain.UserProfile
	HasCustomAPIKey bool `json:"has_custom_api_key"`
}

func newProfileResponse(p *domain.UserProfile) profileResponse {
	return profileResponse{
		UserProfile:     p,
		HasCustomAPIKey: p.CustomGeminiAPIKey != nil && *p.CustomGeminiAPIKey != "",
	}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile := requireProfile(w, r, h.profiles)
	if profile == nil {
		return
	}

	middleware.WriteJSON(w, http.StatusOK, newProfileResponse(profile))
}

// Update handles PUT /api/profile. Fields absent from the body are left
// unchanged; an empty gemini_api_key string clears the override.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile := requireProfile(w, r, h.profiles)
	if profile == nil {
		return
	}

	var req struct {
		DefaultCurrency *string `json:"default_currency"`
		ThemePreference *string `json:"theme_preference"`
		GeminiAPIKey    *string `json:"gemini_api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.DefaultCurrency != nil && len(*req.DefaultCurrency) != 3 {
		middleware.WriteError(w, http.StatusBadRequest, "default_currency must be exactly 3 characters")
		return
	}
	if req.ThemePreference != nil && *req.ThemePreference != "clarity" && *req.ThemePreference != "focus" {
		middleware.WriteError(w, http.StatusBadRequest, `theme_preference must be "clarity" or "focus"`)
		return
	}

	updated, err := h.profiles.UpdateProfileSettings(ctx, profile.ID, postgres.ProfileSettings{
		DefaultCurrency:    req.DefaultCurrency,
		ThemePreference:    req.ThemePreference,
		CustomGeminiAPIKey: req.GeminiAPIKey,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update profile settings")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, newProfileResponse(updated))
}
