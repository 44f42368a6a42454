package jobs

import (
	"context"
	"sort"
	"sync"

	"freightmarket-api-server/internal/models"
	"freightmarket-api-server/internal/notify"
)

// memStore is an in-memory Store and Directory with the same version
// compare-and-swap contract as the Mongo implementation. It hands out
// deep copies so callers cannot mutate stored state behind its back.
type memStore struct {
	mu       sync.Mutex
	jobs     map[string]models.Job
	truckers []string
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]models.Job)}
}

func cloneJob(j models.Job) models.Job {
	j.Bids = append([]models.Bid(nil), j.Bids...)
	for i := range j.Bids {
		if j.Bids[i].RespondedAt != nil {
			t := *j.Bids[i].RespondedAt
			j.Bids[i].RespondedAt = &t
		}
	}
	j.StatusHistory = append([]models.StatusChange(nil), j.StatusHistory...)
	j.Cargo.SpecialRequirements = append([]string(nil), j.Cargo.SpecialRequirements...)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		j.CompletedAt = &t
	}
	return j
}

func (m *memStore) InsertJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID.Hex()] = cloneJob(*job)
	return nil
}

func (m *memStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	job := cloneJob(stored)
	return &job, nil
}

func (m *memStore) ReplaceJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID.Hex()]
	if !ok {
		return ErrJobNotFound
	}
	if stored.Version != job.Version {
		return ErrStaleJob
	}
	job.Version++
	m.jobs[job.ID.Hex()] = cloneJob(*job)
	return nil
}

func (m *memStore) DeleteJob(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return ErrJobNotFound
	}
	delete(m.jobs, id)
	return nil
}

func (m *memStore) ListJobs(ctx context.Context, filter ListFilter) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []models.Job{}
	for _, job := range m.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if filter.PostedBy != "" && job.PostedBy != filter.PostedBy {
			continue
		}
		if filter.AssignedTo != "" && job.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.OpenOrAssignedTo != "" &&
			job.Status != models.JobStatusOpen && job.AssignedTo != filter.OpenOrAssignedTo {
			continue
		}
		result = append(result, cloneJob(job))
	}
	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.After(result[k].CreatedAt)
	})
	return result, nil
}

func (m *memStore) ActiveTruckerIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.truckers...), nil
}

// recordedNotification is one Notify call captured by the fake.
type recordedNotification struct {
	recipients []string
	input      notify.Input
}

type statusEvent struct {
	jobID     string
	status    string
	updatedBy string
}

// recordingNotifier captures everything the engine asks the dispatcher
// to do without persisting or pushing anything.
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []recordedNotification
	statusEvents  []statusEvent
	bidEvents     []string
	postedEvents  []string
}

func (r *recordingNotifier) Notify(ctx context.Context, recipients []string, in notify.Input) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, recordedNotification{
		recipients: append([]string(nil), recipients...),
		input:      in,
	})
}

func (r *recordingNotifier) BroadcastJobStatus(jobID, status, updatedBy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusEvents = append(r.statusEvents, statusEvent{jobID: jobID, status: status, updatedBy: updatedBy})
}

func (r *recordingNotifier) BroadcastNewBid(jobID string, amount float64, trucker string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bidEvents = append(r.bidEvents, jobID)
}

func (r *recordingNotifier) BroadcastJobPosted(jobID, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postedEvents = append(r.postedEvents, jobID)
}

// byType returns the captured Notify calls of one notification type.
func (r *recordingNotifier) byType(notificationType string) []recordedNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedNotification
	for _, n := range r.notifications {
		if n.input.Type == notificationType {
			out = append(out, n)
		}
	}
	return out
}

func newTestService() (*Service, *memStore, *recordingNotifier) {
	store := newMemStore()
	sink := &recordingNotifier{}
	return NewService(store, store, sink), store, sink
}
