package jobs

import (
	"context"
	"time"

	"github.com/rjdelrosario/gastos/internal/domain"
	"github.com/rjdelrosario/gastos/internal/pipeline"
)

// UploadStatus tracks one batch-uploaded receipt through its lifecycle.
type UploadStatus string

const (
	// StatusUploading indicates the image is queued, not yet being parsed.
	StatusUploading UploadStatus = "uploading"
	// StatusParsing indicates the image is at the model.
	StatusParsing UploadStatus = "parsing"
	// StatusCompleted indicates a draft is ready for review.
	StatusCompleted UploadStatus = "completed"
	// StatusError indicates the parse failed. There is no automatic retry;
	// the user re-uploads the image.
	StatusError UploadStatus = "error"
)

// ParseReceiptJob is one receipt image moving through the batch pipeline.
// The image bytes and parse options never leave the process; status
// responses expose only the lifecycle fields and the finished draft.
type ParseReceiptJob struct {
	// UploadID identifies the upload for status polling.
	UploadID string `json:"id"`

	Filename string       `json:"filename"`
	Status   UploadStatus `json:"status"`

	// Draft is set once parsing completes.
	Draft *domain.ReceiptDraft `json:"parsed_data,omitempty"`

	// ErrorMessage is set when Status is StatusError.
	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Upload  pipeline.Upload  `json:"-"`
	Options pipeline.Options `json:"-"`
}

// Publisher enqueues receipt parse jobs.
type Publisher interface {
	// PublishParseReceipt enqueues one receipt image for parsing.
	PublishParseReceipt(ctx context.Context, job *ParseReceiptJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer processes enqueued jobs.
type Consumer interface {
	// Start begins consuming jobs; the handler is called for each one.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler parses one receipt. On success it sets job.Draft; a returned
// error marks the upload failed.
type JobHandler func(ctx context.Context, job *ParseReceiptJob) error

// JobStore tracks upload status for polling.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ParseReceiptJob) error

	// GetJob retrieves a job by upload id.
	GetJob(ctx context.Context, uploadID string) (*ParseReceiptJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ParseReceiptJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// ProfileID filters jobs by owning profile.
	ProfileID string

	// Status filters jobs by upload status.
	Status UploadStatus

	// Limit limits the number of results.
	Limit int
}
