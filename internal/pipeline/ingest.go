package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rjdelrosario/gastos/internal/gemini"
	"github.com/rjdelrosario/gastos/internal/objectstore"

	"github.com/rjdelrosario/gastos/internal/domain"
)

// MaxUploadBytes caps receipt image payloads at 10 MB.
const MaxUploadBytes = 10 << 20

// ErrInvalidUpload marks client-side input problems (bad MIME type,
// oversized payload). These are rejected before any remote call is made.
var ErrInvalidUpload = errors.New("invalid upload")

// Upload is one receipt image received from a client.
type Upload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Options carries the per-user knobs for a parse: the currency to default
// to, the active custom prompt, and an optional credential override. The
// zero value is valid for anonymous requests.
type Options struct {
	ProfileID       string
	DefaultCurrency string
	Instructions    string
	APIKey          string
}

// Ingestor runs the receipt ingestion flow: validate the upload, store the
// image, invoke the model, normalize the response into a draft.
type Ingestor struct {
	parser gemini.ReceiptParser
	images objectstore.ImageStore
	log    zerolog.Logger
}

// NewIngestor wires an Ingestor. images may be a disabled store; image
// persistence is best-effort and never blocks parsing.
func NewIngestor(parser gemini.ReceiptParser, images objectstore.ImageStore, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		parser: parser,
		images: images,
		log:    log,
	}
}

// ValidateUpload rejects uploads the pipeline will not send to the model:
// anything that is not an image, and anything over MaxUploadBytes.
func ValidateUpload(up Upload) error {
	if len(up.Data) == 0 {
		return fmt.Errorf("%w: no file provided", ErrInvalidUpload)
	}
	if !strings.HasPrefix(up.MIMEType, "image/") {
		return fmt.Errorf("%w: unsupported type %q, expected an image", ErrInvalidUpload, up.MIMEType)
	}
	if len(up.Data) > MaxUploadBytes {
		return fmt.Errorf("%w: file is %d bytes, limit is %d", ErrInvalidUpload, len(up.Data), MaxUploadBytes)
	}
	return nil
}

// ParseReceipt runs one upload through the pipeline and returns a draft.
// Input validation errors and upstream model failures are returned as
// errors; unusable model OUTPUT is not — it is repaired into a
// low-confidence draft by the normalizer.
func (in *Ingestor) ParseReceipt(ctx context.Context, up Upload, opts Options) (domain.ReceiptDraft, error) {
	if err := ValidateUpload(up); err != nil {
		return domain.ReceiptDraft{}, err
	}

	imageURL := in.storeImage(ctx, up, opts.ProfileID)

	raw, err := in.parser.ParseReceipt(ctx, gemini.Request{
		Image:           up.Data,
		MIMEType:        up.MIMEType,
		DefaultCurrency: opts.DefaultCurrency,
		Instructions:    opts.Instructions,
		APIKey:          opts.APIKey,
	})
	if err != nil {
		return domain.ReceiptDraft{}, err
	}

	draft := Normalize(raw, opts.DefaultCurrency, time.Now())
	draft.ImageURL = imageURL

	in.log.Info().
		Str("merchant", draft.MerchantName).
		Float64("amount", draft.Amount).
		Float64("confidence", draft.ConfidenceScore).
		Msg("Receipt parsed")

	return draft, nil
}

// storeImage persists the receipt image and returns its URL. Failures are
// logged and swallowed: a draft without an image reference is still useful.
func (in *Ingestor) storeImage(ctx context.Context, up Upload, profileID string) string {
	if in.images == nil || !in.images.Enabled() {
		return ""
	}

	owner := profileID
	if owner == "" {
		owner = "guest"
	}
	objectName := objectstore.ReceiptObjectName(owner, up.Filename)

	url, err := in.images.Save(ctx, objectName, up.MIMEType, up.Data)
	if err != nil {
		in.log.Warn().Err(err).Str("object", objectName).Msg("Failed to store receipt image")
		return ""
	}
	return url
}
