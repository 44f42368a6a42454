package jobs

import (
	"fmt"
	"strings"
	"time"

	"freightmarket-api-server/internal/models"

	"github.com/google/uuid"
)

// Actor is the authenticated principal an operation runs as.
type Actor struct {
	ID   string
	Role string
}

// transitions is the job lifecycle graph. Anything not listed here is an
// invalid transition; completed and cancelled have no outgoing edges.
var transitions = map[string][]string{
	models.JobStatusOpen:       {models.JobStatusAssigned, models.JobStatusCancelled},
	models.JobStatusAssigned:   {models.JobStatusInProgress, models.JobStatusCancelled},
	models.JobStatusInProgress: {models.JobStatusDelivered, models.JobStatusCompleted, models.JobStatusCancelled},
	models.JobStatusDelivered:  {models.JobStatusCompleted, models.JobStatusCancelled},
}

// IsValidStatus reports whether s is a known job status.
func IsValidStatus(s string) bool {
	switch s {
	case models.JobStatusOpen, models.JobStatusAssigned, models.JobStatusInProgress,
		models.JobStatusDelivered, models.JobStatusCompleted, models.JobStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether a job in status s can never change again.
func IsTerminal(s string) bool {
	return s == models.JobStatusCompleted || s == models.JobStatusCancelled
}

// CanTransition reports whether the lifecycle graph has an edge from -> to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Capability predicates. These are the single place role and ownership
// rules live; handlers and the service never check role strings inline.

// CanPostJob reports whether the actor may create job postings.
func CanPostJob(a Actor) bool {
	return a.Role == models.RoleDispatcher || a.Role == models.RoleShipper
}

// CanModifyJob reports whether the actor may edit or delete the job.
func CanModifyJob(a Actor, j *models.Job) bool {
	return a.ID == j.PostedBy || a.Role == models.RoleAdmin
}

// CanTransitionJob reports whether the actor may change the job's status.
func CanTransitionJob(a Actor, j *models.Job) bool {
	return a.ID == j.PostedBy || (j.AssignedTo != "" && a.ID == j.AssignedTo) || a.Role == models.RoleAdmin
}

// CanDecideBid reports whether the actor may accept or reject bids on the job.
func CanDecideBid(a Actor, j *models.Job) bool {
	return a.ID == j.PostedBy || a.Role == models.RoleAdmin
}

// CanPlaceBid reports whether the actor may bid on (or claim) jobs.
func CanPlaceBid(a Actor) bool {
	return a.Role == models.RoleTrucker
}

// NewBidID returns a short human-friendly bid reference.
func NewBidID() string {
	return "BID-" + strings.ToUpper(uuid.New().String()[:8])
}

// NewJobReference returns a short human-friendly job reference.
func NewJobReference() string {
	return "JOB-" + strings.ToUpper(uuid.New().String()[:8])
}

// ValidateNewJob checks the fields required before a posting may be stored.
func ValidateNewJob(j *models.Job) *Error {
	switch {
	case strings.TrimSpace(j.Title) == "":
		return ValidationError("title is required")
	case strings.TrimSpace(j.Description) == "":
		return ValidationError("description is required")
	case strings.TrimSpace(j.Pickup.Location) == "":
		return ValidationError("pickup.location is required")
	case j.Pickup.Date.IsZero():
		return ValidationError("pickup.date is required")
	case strings.TrimSpace(j.Delivery.Location) == "":
		return ValidationError("delivery.location is required")
	case j.Delivery.Date.IsZero():
		return ValidationError("delivery.date is required")
	case strings.TrimSpace(j.Cargo.Type) == "":
		return ValidationError("cargo.type is required")
	case j.Payment.Amount <= 0:
		return ValidationError("payment.amount must be greater than zero")
	}
	return nil
}

// pushStatus applies a status change and appends the history entry.
// Callers have already validated the edge. Cancellation releases the
// assignee so that assignedTo stays set exactly while the job is in an
// assigned-family status.
func pushStatus(j *models.Job, status, actorID, notes string, now time.Time) {
	j.Status = status
	if status == models.JobStatusCancelled {
		j.AssignedTo = ""
	}
	if status == models.JobStatusCompleted {
		j.CompletedAt = &now
	}
	j.StatusHistory = append(j.StatusHistory, models.StatusChange{
		Status:    status,
		Timestamp: now,
		UpdatedBy: actorID,
		Notes:     notes,
	})
	j.UpdatedAt = now
}

// ApplyTransition validates and applies a status change requested by actor.
func ApplyTransition(j *models.Job, newStatus string, actor Actor, notes string, now time.Time) *Error {
	if !CanTransitionJob(actor, j) {
		return Unauthorized("not authorized to update this job's status")
	}
	if !IsValidStatus(newStatus) {
		return ValidationError(fmt.Sprintf("unknown status %q", newStatus))
	}
	if !CanTransition(j.Status, newStatus) {
		return InvalidTransition(fmt.Sprintf("cannot move job from %q to %q", j.Status, newStatus))
	}
	pushStatus(j, newStatus, actor.ID, notes, now)
	return nil
}

// AddBid appends a pending bid from the actor. The job status is untouched.
func AddBid(j *models.Job, actor Actor, amount float64, currency, message string, now time.Time) (*models.Bid, *Error) {
	if !CanPlaceBid(actor) {
		return nil, Unauthorized("only truckers can bid on jobs")
	}
	if j.Status != models.JobStatusOpen {
		return nil, JobNotOpen("job is not open for bidding")
	}
	if amount <= 0 {
		return nil, ValidationError("bid amount must be greater than zero")
	}
	for i := range j.Bids {
		if j.Bids[i].Trucker == actor.ID && j.Bids[i].Status != models.BidStatusWithdrawn {
			return nil, DuplicateBid("you have already placed a bid on this job")
		}
	}
	if currency == "" {
		currency = j.Payment.Currency
	}
	j.Bids = append(j.Bids, models.Bid{
		ID:        NewBidID(),
		Trucker:   actor.ID,
		Amount:    amount,
		Currency:  currency,
		Message:   message,
		Status:    models.BidStatusPending,
		CreatedAt: now,
	})
	j.UpdatedAt = now
	return &j.Bids[len(j.Bids)-1], nil
}

// AcceptBid marks one bid accepted, rejects every other pending bid and
// assigns the job to the winning trucker, all on the in-memory copy.
// It returns the accepted bid and the bidders whose bids were rejected.
func AcceptBid(j *models.Job, bidID string, actor Actor, now time.Time) (*models.Bid, []string, *Error) {
	if !CanDecideBid(actor, j) {
		return nil, nil, Unauthorized("only the job poster can accept bids")
	}
	bid := j.Bid(bidID)
	if bid == nil {
		return nil, nil, NotFound("bid not found")
	}
	if bid.Status != models.BidStatusPending {
		return nil, nil, BidNotPending("bid has already been responded to")
	}
	if j.Status != models.JobStatusOpen {
		return nil, nil, JobNotOpen("job is no longer open")
	}

	bid.Status = models.BidStatusAccepted
	bid.RespondedAt = &now

	var rejected []string
	for i := range j.Bids {
		if j.Bids[i].ID != bid.ID && j.Bids[i].Status == models.BidStatusPending {
			j.Bids[i].Status = models.BidStatusRejected
			j.Bids[i].RespondedAt = &now
			rejected = append(rejected, j.Bids[i].Trucker)
		}
	}

	j.AssignedTo = bid.Trucker
	pushStatus(j, models.JobStatusAssigned, actor.ID, "Bid accepted", now)
	return bid, rejected, nil
}

// RejectBid marks a single pending bid rejected. No other bid or job
// field changes.
func RejectBid(j *models.Job, bidID string, actor Actor, now time.Time) (*models.Bid, *Error) {
	if !CanDecideBid(actor, j) {
		return nil, Unauthorized("only the job poster can reject bids")
	}
	bid := j.Bid(bidID)
	if bid == nil {
		return nil, NotFound("bid not found")
	}
	if bid.Status != models.BidStatusPending {
		return nil, BidNotPending("bid has already been responded to")
	}
	bid.Status = models.BidStatusRejected
	bid.RespondedAt = &now
	j.UpdatedAt = now
	return bid, nil
}

// WithdrawBid lets a trucker pull their own pending bid.
func WithdrawBid(j *models.Job, bidID string, actor Actor, now time.Time) (*models.Bid, *Error) {
	bid := j.Bid(bidID)
	if bid == nil {
		return nil, NotFound("bid not found")
	}
	if bid.Trucker != actor.ID {
		return nil, Unauthorized("only the bidder can withdraw this bid")
	}
	if bid.Status != models.BidStatusPending {
		return nil, BidNotPending("bid is no longer pending")
	}
	bid.Status = models.BidStatusWithdrawn
	j.UpdatedAt = now
	return bid, nil
}

// Claim directly assigns an open job to the acting trucker, bypassing
// bidding. The caller must persist with a conditional write so that of
// two racing claims exactly one lands.
func Claim(j *models.Job, actor Actor, now time.Time) *Error {
	if !CanPlaceBid(actor) {
		return Unauthorized("only truckers can claim jobs")
	}
	if j.Status != models.JobStatusOpen {
		return JobNotOpen("job is not available")
	}
	j.AssignedTo = actor.ID
	pushStatus(j, models.JobStatusAssigned, actor.ID, "Job claimed by trucker", now)
	return nil
}
