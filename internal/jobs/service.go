package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freightmarket-api-server/internal/models"
	"freightmarket-api-server/internal/notify"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// casRetries bounds how many times a mutation is replayed after losing
// the compare-and-swap. Each replay re-reads the job and re-runs the
// business rules, so a loser whose operation is no longer legal gets the
// state-specific error rather than a bare conflict.
const casRetries = 3

// Notifier is what the engine needs from the dispatcher. Side effects
// run strictly after the store write commits and never affect the
// operation's outcome.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, in notify.Input)
	BroadcastJobStatus(jobID, status, updatedBy string)
	BroadcastNewBid(jobID string, amount float64, trucker string)
	BroadcastJobPosted(jobID, title string)
}

// Service is the job lifecycle and bidding engine. All mutating
// operations on one job are serialized through the store's version CAS;
// operations on distinct jobs run fully in parallel.
type Service struct {
	store     Store
	directory Directory
	notifier  Notifier
	log       *zap.SugaredLogger
}

func NewService(store Store, directory Directory, notifier Notifier) *Service {
	return &Service{
		store:     store,
		directory: directory,
		notifier:  notifier,
		log:       zap.S().Named("jobs"),
	}
}

// CreateJobInput is the posting payload.
type CreateJobInput struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Pickup            models.Stop    `json:"pickup"`
	Delivery          models.Stop    `json:"delivery"`
	Cargo             models.Cargo   `json:"cargo"`
	Payment           models.Payment `json:"payment"`
	Distance          float64        `json:"distance"`
	EstimatedDuration float64        `json:"estimatedDuration"`
}

// UpdateJobInput carries partial edits; nil fields are left untouched.
type UpdateJobInput struct {
	Title             *string       `json:"title"`
	Description       *string       `json:"description"`
	Pickup            *models.Stop  `json:"pickup"`
	Delivery          *models.Stop  `json:"delivery"`
	Cargo             *models.Cargo `json:"cargo"`
	PaymentAmount     *float64      `json:"paymentAmount"`
	Distance          *float64      `json:"distance"`
	EstimatedDuration *float64      `json:"estimatedDuration"`
}

// PlaceBidInput is a trucker's offer.
type PlaceBidInput struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Message  string  `json:"message"`
}

// CreateJob validates and stores a new posting, then announces it.
func (s *Service) CreateJob(ctx context.Context, actor Actor, in CreateJobInput) (*models.Job, error) {
	if !CanPostJob(actor) {
		return nil, Unauthorized("only dispatchers and shippers can post jobs")
	}

	now := time.Now()
	job := &models.Job{
		ID:                primitive.NewObjectID(),
		Reference:         NewJobReference(),
		Title:             in.Title,
		Description:       in.Description,
		PostedBy:          actor.ID,
		PostedByRole:      actor.Role,
		Status:            models.JobStatusOpen,
		Pickup:            in.Pickup,
		Delivery:          in.Delivery,
		Cargo:             in.Cargo,
		Payment:           in.Payment,
		Distance:          in.Distance,
		EstimatedDuration: in.EstimatedDuration,
		Bids:              []models.Bid{},
		StatusHistory: []models.StatusChange{{
			Status:    models.JobStatusOpen,
			Timestamp: now,
			UpdatedBy: actor.ID,
			Notes:     "Job posted",
		}},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if job.Payment.Currency == "" {
		job.Payment.Currency = "USD"
	}
	if job.Payment.PaymentStatus == "" {
		job.Payment.PaymentStatus = models.PaymentStatusPending
	}

	if err := ValidateNewJob(job); err != nil {
		return nil, err
	}
	if err := s.store.InsertJob(ctx, job); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	jobID := job.ID.Hex()
	truckers, err := s.directory.ActiveTruckerIDs(ctx)
	if err != nil {
		s.log.Errorw("failed to resolve truckers for job announcement", "jobId", jobID, "error", err)
	} else {
		s.notifier.Notify(ctx, truckers, notify.Input{
			Sender:     actor.ID,
			Type:       models.NotificationJobPosted,
			Title:      "New Job Available",
			Message:    fmt.Sprintf("A new job %q has been posted", job.Title),
			RelatedJob: jobID,
			Link:       "/jobs/" + jobID,
		})
	}
	s.notifier.BroadcastJobPosted(jobID, job.Title)

	return job, nil
}

// ListJobs returns postings scoped to what the requester may see:
// truckers get open jobs plus their assignments, posters get their own
// postings, admins get everything.
func (s *Service) ListJobs(ctx context.Context, actor Actor, status string) ([]models.Job, error) {
	if status != "" && !IsValidStatus(status) {
		return nil, ValidationError(fmt.Sprintf("unknown status %q", status))
	}
	filter := ListFilter{Status: status}
	switch actor.Role {
	case models.RoleTrucker:
		filter.OpenOrAssignedTo = actor.ID
	case models.RoleAdmin:
		// no scoping
	default:
		filter.PostedBy = actor.ID
	}
	jobList, err := s.store.ListJobs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobList, nil
}

// GetJob fetches one job by id.
func (s *Service) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return s.load(ctx, id)
}

// UpdateJob edits a non-terminal posting's descriptive fields.
func (s *Service) UpdateJob(ctx context.Context, id string, actor Actor, in UpdateJobInput) (*models.Job, error) {
	return s.mutate(ctx, id, func(job *models.Job) *Error {
		if !CanModifyJob(actor, job) {
			return Unauthorized("not authorized to update this job")
		}
		if IsTerminal(job.Status) {
			return InvalidTransition(fmt.Sprintf("job is %s and can no longer be updated", job.Status))
		}
		if in.Title != nil {
			job.Title = *in.Title
		}
		if in.Description != nil {
			job.Description = *in.Description
		}
		if in.Pickup != nil {
			job.Pickup = *in.Pickup
		}
		if in.Delivery != nil {
			job.Delivery = *in.Delivery
		}
		if in.Cargo != nil {
			job.Cargo = *in.Cargo
		}
		if in.PaymentAmount != nil {
			job.Payment.Amount = *in.PaymentAmount
		}
		if in.Distance != nil {
			job.Distance = *in.Distance
		}
		if in.EstimatedDuration != nil {
			job.EstimatedDuration = *in.EstimatedDuration
		}
		job.UpdatedAt = time.Now()
		return ValidateNewJob(job)
	})
}

// DeleteJob removes a posting. Same authorization as UpdateJob.
func (s *Service) DeleteJob(ctx context.Context, id string, actor Actor) error {
	job, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !CanModifyJob(actor, job) {
		return Unauthorized("not authorized to delete this job")
	}
	if err := s.store.DeleteJob(ctx, id); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return NotFound("job not found")
		}
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// ClaimJob directly assigns an open job to the acting trucker. Of two
// concurrent claims exactly one wins; the loser observes the refreshed
// job and gets JobNotOpen.
func (s *Service) ClaimJob(ctx context.Context, id string, actor Actor) (*models.Job, error) {
	job, err := s.mutate(ctx, id, func(job *models.Job) *Error {
		return Claim(job, actor, time.Now())
	})
	if err != nil {
		return nil, err
	}

	jobID := job.ID.Hex()
	s.notifier.Notify(ctx, []string{job.PostedBy}, notify.Input{
		Sender:     actor.ID,
		Type:       models.NotificationJobClaimed,
		Title:      "Job Claimed",
		Message:    fmt.Sprintf("Your job %q has been claimed", job.Title),
		RelatedJob: jobID,
		Link:       "/jobs/" + jobID,
	})
	s.notifier.BroadcastJobStatus(jobID, job.Status, actor.ID)
	return job, nil
}

// UpdateJobStatus walks the job along the lifecycle graph.
func (s *Service) UpdateJobStatus(ctx context.Context, id string, actor Actor, newStatus, notes string) (*models.Job, error) {
	// Cancellation releases the assignee, so remember who held the job
	// before the transition: they are exactly who must hear about it.
	var assignee string
	job, err := s.mutate(ctx, id, func(job *models.Job) *Error {
		assignee = job.AssignedTo
		return ApplyTransition(job, newStatus, actor, notes, time.Now())
	})
	if err != nil {
		return nil, err
	}

	jobID := job.ID.Hex()
	recipients := statusChangeRecipients(job.PostedBy, assignee, actor)
	s.notifier.Notify(ctx, recipients, notify.Input{
		Sender:     actor.ID,
		Type:       models.NotificationJobStatusUpdate,
		Title:      "Job Status Updated",
		Message:    fmt.Sprintf("Job %q status updated to %s", job.Title, job.Status),
		RelatedJob: jobID,
		Link:       "/jobs/" + jobID,
	})
	s.notifier.BroadcastJobStatus(jobID, job.Status, actor.ID)
	return job, nil
}

// PlaceBid appends a pending bid to an open job.
func (s *Service) PlaceBid(ctx context.Context, id string, actor Actor, in PlaceBidInput) (*models.Job, error) {
	var placed models.Bid
	job, err := s.mutate(ctx, id, func(job *models.Job) *Error {
		bid, aerr := AddBid(job, actor, in.Amount, in.Currency, in.Message, time.Now())
		if aerr != nil {
			return aerr
		}
		placed = *bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	jobID := job.ID.Hex()
	s.notifier.Notify(ctx, []string{job.PostedBy}, notify.Input{
		Sender:     actor.ID,
		Type:       models.NotificationBidReceived,
		Title:      "New Bid Received",
		Message:    fmt.Sprintf("New bid of $%.2f received for %q", placed.Amount, job.Title),
		RelatedJob: jobID,
		RelatedBid: placed.ID,
		Link:       "/jobs/" + jobID,
	})
	s.notifier.BroadcastNewBid(jobID, placed.Amount, actor.ID)
	return job, nil
}

// AcceptBid selects a winner: the bid goes accepted, every rival pending
// bid goes rejected and the job is assigned to the winning trucker, all
// in one document write.
func (s *Service) AcceptBid(ctx context.Context, jobID, bidID string, actor Actor) (*models.Job, error) {
	var accepted models.Bid
	var rejected []string
	job, err := s.mutate(ctx, jobID, func(job *models.Job) *Error {
		bid, losers, aerr := AcceptBid(job, bidID, actor, time.Now())
		if aerr != nil {
			return aerr
		}
		accepted = *bid
		rejected = losers
		return nil
	})
	if err != nil {
		return nil, err
	}

	id := job.ID.Hex()
	s.notifier.Notify(ctx, []string{accepted.Trucker}, notify.Input{
		Sender:     actor.ID,
		Type:       models.NotificationBidAccepted,
		Title:      "Bid Accepted",
		Message:    fmt.Sprintf("Your bid on %q was accepted", job.Title),
		RelatedJob: id,
		RelatedBid: accepted.ID,
		Link:       "/jobs/" + id,
	})
	s.notifier.Notify(ctx, rejected, notify.Input{
		Sender:     actor.ID,
		Type:       models.NotificationBidRejected,
		Title:      "Bid Not Selected",
		Message:    fmt.Sprintf("Your bid on %q was not selected", job.Title),
		RelatedJob: id,
		Link:       "/jobs/" + id,
	})
	s.notifier.BroadcastJobStatus(id, job.Status, actor.ID)
	return job, nil
}

// RejectBid declines a single pending bid without touching its rivals.
func (s *Service) RejectBid(ctx context.Context, jobID, bidID string, actor Actor) (*models.Job, error) {
	var rejected models.Bid
	job, err := s.mutate(ctx, jobID, func(job *models.Job) *Error {
		bid, aerr := RejectBid(job, bidID, actor, time.Now())
		if aerr != nil {
			return aerr
		}
		rejected = *bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	id := job.ID.Hex()
	s.notifier.Notify(ctx, []string{rejected.Trucker}, notify.Input{
		Sender:     actor.ID,
		Type:       models.NotificationBidRejected,
		Title:      "Bid Rejected",
		Message:    fmt.Sprintf("Your bid on %q was rejected", job.Title),
		RelatedJob: id,
		RelatedBid: rejected.ID,
		Link:       "/jobs/" + id,
	})
	return job, nil
}

// WithdrawBid lets a trucker pull their own pending bid. The poster is
// told so they stop weighing an offer that no longer exists.
func (s *Service) WithdrawBid(ctx context.Context, jobID, bidID string, actor Actor) (*models.Job, error) {
	var withdrawn models.Bid
	job, err := s.mutate(ctx, jobID, func(job *models.Job) *Error {
		bid, aerr := WithdrawBid(job, bidID, actor, time.Now())
		if aerr != nil {
			return aerr
		}
		withdrawn = *bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	id := job.ID.Hex()
	s.notifier.Notify(ctx, []string{job.PostedBy}, notify.Input{
		Sender:     actor.ID,
		Type:       models.NotificationBidWithdrawn,
		Title:      "Bid Withdrawn",
		Message:    fmt.Sprintf("A bid on %q was withdrawn", job.Title),
		RelatedJob: id,
		RelatedBid: withdrawn.ID,
		Link:       "/jobs/" + id,
	})
	return job, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, NotFound("job not found")
		}
		return nil, fmt.Errorf("load job: %w", err)
	}
	return job, nil
}

// mutate is the engine's single write path: load the job, run the pure
// mutation on the copy, then compare-and-swap it back. Losing the swap
// means another writer got in first, so the loop reloads and re-runs the
// rules against fresh state; a loser whose operation is now illegal gets
// the precise business error instead of a conflict.
func (s *Service) mutate(ctx context.Context, id string, fn func(*models.Job) *Error) (*models.Job, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		job, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if aerr := fn(job); aerr != nil {
			return nil, aerr
		}
		err = s.store.ReplaceJob(ctx, job)
		if err == nil {
			return job, nil
		}
		if !errors.Is(err, ErrStaleJob) {
			return nil, fmt.Errorf("persist job: %w", err)
		}
		s.log.Debugw("lost update race, retrying", "jobId", id, "attempt", attempt+1)
	}
	return nil, Conflict("job was modified concurrently, please retry")
}

// statusChangeRecipients is the poster plus, when it is someone other
// than the actor, the assignee the job had when the transition ran.
func statusChangeRecipients(postedBy, assignee string, actor Actor) []string {
	recipients := []string{postedBy}
	if assignee != "" && assignee != actor.ID && assignee != postedBy {
		recipients = append(recipients, assignee)
	}
	return recipients
}
