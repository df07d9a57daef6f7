package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/rjdelrosario/gastos/internal/api/middleware"
	"github.com/rjdelrosario/gastos/internal/domain"
)

// WebhookHandler provisions profiles from identity provider events. Clerk
// signs webhook deliveries with svix; unverifiable payloads are rejected
// before any database write.
type WebhookHandler struct {
	webhook  *svix.Webhook
	profiles ProfileRepository
	log      zerolog.Logger
}

// NewWebhookHandler creates a webhook handler verifying against the given
// signing secret.
func NewWebhookHandler(secret string, profiles ProfileRepository, log zerolog.Logger) (*WebhookHandler, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return &WebhookHandler{
		webhook:  wh,
		profiles: profiles,
		log:      log,
	}, nil
}

// clerkEvent is the subset of the Clerk webhook envelope we consume.
type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string  `json:"id"`
		FirstName      *string `json:"first_name"`
		LastName       *string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// HandleClerk handles POST /api/webhooks/clerk.
func (h *WebhookHandler) HandleClerk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := h.webhook.Verify(payload, r.Header); err != nil {
		h.log.Warn().Err(err).Msg("Webhook signature verification failed")
		middleware.WriteError(w, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	var event clerkEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	if event.Type != "user.created" {
		// Other event types are acknowledged and ignored.
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if event.Data.ID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Missing user id in webhook payload")
		return
	}

	email := ""
	if len(event.Data.EmailAddresses) > 0 {
		email = event.Data.EmailAddresses[0].EmailAddress
	}

	profile, err := h.profiles.CreateProfile(ctx, &domain.UserProfile{
		ClerkUserID:     event.Data.ID,
		Email:           email,
		FirstName:       event.Data.FirstName,
		LastName:        event.Data.LastName,
		DefaultCurrency: domain.DefaultCurrency,
		ThemePreference: domain.DefaultTheme,
	})
	if err != nil {
		h.log.Error().Err(err).Str("clerk_user_id", event.Data.ID).Msg("Failed to provision profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to provision profile")
		return
	}

	h.log.Info().Str("clerk_user_id", profile.ClerkUserID).Msg("Profile provisioned")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "created"})
}
