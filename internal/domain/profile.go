package domain

import "time"

// Default settings applied when a profile is provisioned by the identity
// provider webhook.
const (
	DefaultCurrency = "PHP"
	DefaultTheme    = "clarity"
)

// UserProfile is the application-level user record, keyed by the identity
// provider's user id. It is created by the provisioning webhook on sign-up
// and mutated through the settings endpoints; profiles are never hard-deleted.
type UserProfile struct {
	ID              string    `json:"id"`
	ClerkUserID     string    `json:"clerk_user_id"`
	Email           string    `json:"email"`
	FirstName       *string   `json:"first_name,omitempty"`
	LastName        *string   `json:"last_name,omitempty"`
	DefaultCurrency string    `json:"default_currency"`
	ThemePreference string    `json:"theme_preference"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// CustomGeminiAPIKey overrides the shared model credential when set.
	// Never serialized; the settings API only reports whether one exists.
	CustomGeminiAPIKey *string `json:"-"`
}

// UserPrompt is a named user-supplied instruction string appended to the
// receipt parsing prompt. At most one prompt is active per user; the storage
// layer enforces this with a partial unique index.
type UserPrompt struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	PromptContent string    `json:"prompt_content"`
	IsActive      bool      `json:"is_active"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
