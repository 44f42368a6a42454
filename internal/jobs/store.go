package jobs

import (
	"context"
	"errors"

	"freightmarket-api-server/internal/models"
)

// ErrJobNotFound is returned by Store lookups when the id does not resolve.
var ErrJobNotFound = errors.New("job not found")

// ErrStaleJob is returned by Store.ReplaceJob when the stored version no
// longer matches the version the job was loaded at, i.e. the caller lost
// a race with another writer on the same job.
var ErrStaleJob = errors.New("job version is stale")

// ListFilter narrows a job listing. Zero values mean "no constraint".
type ListFilter struct {
	Status     string
	PostedBy   string
	AssignedTo string
	// OpenOrAssignedTo is the trucker view: open jobs plus jobs
	// assigned to this user.
	OpenOrAssignedTo string
}

// Store is the persistence contract the engine runs against. ReplaceJob
// must be a compare-and-swap on the job's Version field: it writes the
// whole document (bids and history included) only if the stored version
// still equals job.Version, and bumps job.Version on success.
type Store interface {
	InsertJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ReplaceJob(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context, filter ListFilter) ([]models.Job, error)
}

// Directory resolves notification fan-out recipients.
type Directory interface {
	ActiveTruckerIDs(ctx context.Context) ([]string, error)
}
