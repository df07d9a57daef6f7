package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModelName is the vision model used for receipt extraction.
const DefaultModelName = "gemini-2.5-flash"

// Upstream failure taxonomy. Handlers translate these into distinct HTTP
// statuses instead of leaking provider error text to clients.
var (
	// ErrQuotaExceeded indicates the model API quota is exhausted.
	ErrQuotaExceeded = errors.New("model quota exceeded")

	// ErrInvalidAPIKey indicates the shared or user-supplied credential was
	// rejected by the model API.
	ErrInvalidAPIKey = errors.New("invalid model API key")
)

// Request carries one receipt image to the model, plus the per-user knobs
// that shape the extraction.
type Request struct {
	Image    []byte
	MIMEType string

	// DefaultCurrency is emitted when the receipt does not state one.
	DefaultCurrency string

	// Instructions is the user's active custom prompt, appended to the
	// system prompt. Empty means no customization.
	Instructions string

	// APIKey overrides the shared credential when the user configured one.
	APIKey string
}

// ReceiptParser sends a receipt image to a vision model and returns the raw
// response text. Implementations must return an error for transport/auth/
// quota failures rather than fabricating output; interpreting the text is
// the normalizer's job.
type ReceiptParser interface {
	ParseReceipt(ctx context.Context, req Request) (string, error)
}

// Parser is the Gemini-backed ReceiptParser.
type Parser struct {
	apiKey string
	model  string
	log    zerolog.Logger
}

// New creates a Parser using the shared API key.
func New(apiKey string, log zerolog.Logger) *Parser {
	return &Parser{
		apiKey: apiKey,
		model:  DefaultModelName,
		log:    log,
	}
}

// ParseReceipt implements ReceiptParser against the Gemini API. The client
// is created per call because the effective credential can differ per user.
func (p *Parser) ParseReceipt(ctx context.Context, req Request) (string, error) {
	key := p.apiKey
	if req.APIKey != "" {
		key = req.APIKey
		p.log.Debug().Msg("using user-supplied Gemini API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("ParseReceipt: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(req.DefaultCurrency, req.Instructions)},
				{
					InlineData: &genai.Blob{
						MIMEType: req.MIMEType,
						Data:     req.Image,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", classifyError(err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("ParseReceipt: empty response from model")
	}

	return rawText, nil
}

// classifyError maps provider errors onto the package sentinels so callers
// can distinguish quota exhaustion and bad credentials with errors.Is.
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	case strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthenticated"),
		strings.Contains(msg, "permission_denied"):
		return fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
	default:
		return fmt.Errorf("ParseReceipt: generate content: %w", err)
	}
}
