package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rjdelrosario/gastos/internal/api/middleware"
	"github.com/rjdelrosario/gastos/internal/domain"
	"github.com/rjdelrosario/gastos/internal/gemini"
	"github.com/rjdelrosario/gastos/internal/jobs"
	"github.com/rjdelrosario/gastos/internal/pipeline"
	"github.com/rjdelrosario/gastos/internal/storage/postgres"
)

// ReceiptIngestor parses one uploaded receipt image into a draft.
// *pipeline.Ingestor satisfies it.
type ReceiptIngestor interface {
	ParseReceipt(ctx context.Context, up pipeline.Upload, opts pipeline.Options) (domain.ReceiptDraft, error)
}

// ReceiptsHandler handles receipt upload and parsing endpoints.
type ReceiptsHandler struct {
	ingestor  ReceiptIngestor
	profiles  ProfileRepository
	prompts   PromptRepository
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(ingestor ReceiptIngestor, profiles ProfileRepository, prompts PromptRepository, publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		ingestor:  ingestor,
		profiles:  profiles,
		prompts:   prompts,
		publisher: publisher,
		store:     store,
		log:       log,
	}
}

// Parse handles POST /api/receipts/parse. Works for both signed-in users
// (their settings and active prompt apply) and guests (defaults apply).
func (h *ReceiptsHandler) Parse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	upload, ok := h.readUpload(w, r, "file")
	if !ok {
		return
	}

	opts := h.parseOptions(ctx)

	draft, err := h.ingestor.ParseReceipt(ctx, upload, opts)
	if err != nil {
		h.writeParseError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, draft)
}

// Batch handles POST /api/receipts/batch. Each file becomes one upload
// tracked independently; the response carries the ids to poll. Requires an
// authenticated profile so every upload has an owner to scope polling to.
func (h *ReceiptsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if requireProfile(w, r, h.profiles) == nil {
		return
	}

	if err := r.ParseMultipartForm(pipeline.MaxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "No files provided")
		return
	}

	opts := h.parseOptions(ctx)

	// Workers start mutating a job the moment it is published, so the
	// response is built from snapshots taken before publishing.
	uploads := make([]jobs.ParseReceiptJob, 0, len(files))
	for _, fh := range files {
		data, mimeType, err := readFileHeader(fh)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}

		job := &jobs.ParseReceiptJob{
			UploadID:  uuid.NewString(),
			Filename:  fh.Filename,
			Status:    jobs.StatusUploading,
			CreatedAt: time.Now(),
			Upload: pipeline.Upload{
				Filename: fh.Filename,
				MIMEType: mimeType,
				Data:     data,
			},
			Options: opts,
		}

		snapshot := *job
		snapshot.Upload = pipeline.Upload{}

		if err := h.publisher.PublishParseReceipt(ctx, job); err != nil {
			h.log.Error().Err(err).Str("filename", fh.Filename).Msg("Failed to enqueue receipt")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue uploads")
			return
		}
		uploads = append(uploads, snapshot)
	}

	h.log.Info().Int("count", len(uploads)).Msg("Receipt batch enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"uploads": uploads,
		"count":   len(uploads),
	})
}

// UploadStatus handles GET /api/receipts/uploads/{id}. Foreign uploads are
// indistinguishable from missing ones.
func (h *ReceiptsHandler) UploadStatus(w http.ResponseWriter, r *http.Request, uploadID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, uploadID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Upload not found")
		return
	}

	if job.Options.ProfileID != h.callerProfileID(ctx) {
		middleware.WriteError(w, http.StatusNotFound, "Upload not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// readUpload extracts the single uploaded image from a multipart request.
// On failure it writes the error response and returns ok=false.
func (h *ReceiptsHandler) readUpload(w http.ResponseWriter, r *http.Request, field string) (pipeline.Upload, bool) {
	if err := r.ParseMultipartForm(pipeline.MaxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return pipeline.Upload{}, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "No file provided")
		return pipeline.Upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return pipeline.Upload{}, false
	}

	return pipeline.Upload{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}, true
}

// parseOptions assembles the per-user parse options. Settings lookups are
// best-effort: a failed profile or prompt read falls back to defaults so the
// receipt still gets parsed.
func (h *ReceiptsHandler) parseOptions(ctx context.Context) pipeline.Options {
	opts := pipeline.Options{DefaultCurrency: domain.DefaultCurrency}

	clerkUserID, ok := middleware.UserID(ctx)
	if !ok {
		return opts
	}

	profile, err := h.profiles.GetProfileByClerkID(ctx, clerkUserID)
	if err != nil {
		if !errors.Is(err, postgres.ErrNotFound) {
			h.log.Warn().Err(err).Msg("Failed to load profile settings, using defaults")
		}
		return opts
	}

	opts.ProfileID = profile.ID
	if profile.DefaultCurrency != "" {
		opts.DefaultCurrency = profile.DefaultCurrency
	}
	if profile.CustomGeminiAPIKey != nil && *profile.CustomGeminiAPIKey != "" {
		opts.APIKey = *profile.CustomGeminiAPIKey
	}

	prompt, err := h.prompts.GetActivePrompt(ctx, profile.ID)
	if err != nil {
		if !errors.Is(err, postgres.ErrNotFound) {
			h.log.Warn().Err(err).Msg("Failed to load active prompt, using default")
		}
		return opts
	}
	opts.Instructions = prompt.PromptContent

	return opts
}

func (h *ReceiptsHandler) callerProfileID(ctx context.Context) string {
	clerkUserID, ok := middleware.UserID(ctx)
	if !ok {
		return ""
	}
	profile, err := h.profiles.GetProfileByClerkID(ctx, clerkUserID)
	if err != nil {
		return ""
	}
	return profile.ID
}

func (h *ReceiptsHandler) writeParseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidUpload):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gemini.ErrQuotaExceeded):
		middleware.WriteError(w, http.StatusTooManyRequests, "API quota exceeded. Please try again later.")
	case errors.Is(err, gemini.ErrInvalidAPIKey):
		middleware.WriteError(w, http.StatusInternalServerError, "Invalid API key configuration")
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("Receipt parse failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to parse receipt. Please try again.")
	}
}

func readFileHeader(fh *multipart.FileHeader) (data []byte, mimeType string, err error) {
	file, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Header.Get("Content-Type"), nil
}
