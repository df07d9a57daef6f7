package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rjdelrosario/gastos/internal/api/middleware"
	"github.com/rjdelrosario/gastos/internal/storage/postgres"
)

// PromptsHandler handles custom parsing prompt endpoints.
type PromptsHandler struct {
	prompts  PromptRepository
	profiles ProfileRepository
	log      zerolog.Logger
}

// NewPromptsHandler creates a new prompts handler.
func NewPromptsHandler(prompts PromptRepository, profiles ProfileRepository, log zerolog.Logger) *PromptsHandler {
	return &PromptsHandler{
		prompts:  prompts,
		profiles: profiles,
		log:      log,
	}
}

// List handles GET /api/prompts.
func (h *PromptsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile := requireProfile(w, r, h.profiles)
	if profile == nil {
		return
	}

	prompts, err := h.prompts.ListPrompts(ctx, profile.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list prompts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list prompts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"prompts": prompts,
		"count":   len(prompts),
	})
}

// Create handles POST /api/prompts. New prompts start inactive; activation
// is an explicit second step.
func (h *PromptsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile := requireProfile(w, r, h.profiles)
	if profile == nil {
		return
	}

	var req struct {
		Name          string `json:"name"`
		PromptContent string `json:"prompt_content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.PromptContent = strings.TrimSpace(req.PromptContent)
	if req.Name == "" || req.PromptContent == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name and prompt_content are required")
		return
	}

	prompt, err := h.prompts.CreatePrompt(ctx, profile.ID, req.Name, req.PromptContent)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create prompt")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create prompt")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, prompt)
}

// Activate handles POST /api/prompts/{id}/activate. The previously active
// prompt, if any, is deactivated in the same transaction.
func (h *PromptsHandler) Activate(w http.ResponseWriter, r *http.Request, promptID string) {
	ctx := r.Context()

	profile := requireProfile(w, r, h.profiles)
	if profile == nil {
		return
	}

	prompt, err := h.prompts.ActivatePrompt(ctx, profile.ID, promptID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Prompt not found")
			return
		}
		h.log.Error().Err(err).Str("prompt_id", promptID).Msg("Failed to activate prompt")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to activate prompt")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, prompt)
}
