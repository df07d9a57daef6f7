package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rjdelrosario/gastos/internal/jobs"
)

// Store is an in-memory implementation of JobStore. Upload status is
// session-scoped by design: a restart loses pending uploads, and the client
// simply re-uploads.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ParseReceiptJob
}

// NewStore creates a new in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.ParseReceiptJob),
	}
}

// SaveJob implements the JobStore interface.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ParseReceiptJob) error {
	if job.UploadID == "" {
		return fmt.Errorf("upload ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to guard against external mutation.
	jobCopy := *job
	s.jobs[job.UploadID] = &jobCopy

	return nil
}

// GetJob implements the JobStore interface.
func (s *Store) GetJob(ctx context.Context, uploadID string) (*jobs.ParseReceiptJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[uploadID]
	if !ok {
		return nil, fmt.Errorf("upload %s not found", uploadID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs implements the JobStore interface. Results are newest first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ParseReceiptJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*jobs.ParseReceiptJob, 0)
	for _, job := range s.jobs {
		if filter.ProfileID != "" && job.Options.ProfileID != filter.ProfileID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

var _ jobs.JobStore = (*Store)(nil)
