package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job statuses. A job starts "open" and walks the graph
// open -> assigned -> in_progress -> (delivered) -> completed,
// with "cancelled" reachable from every non-terminal state.
const (
	JobStatusOpen       = "open"
	JobStatusAssigned   = "assigned"
	JobStatusInProgress = "in_progress"
	JobStatusDelivered  = "delivered"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// Payment statuses, tracked independently of the job status.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Stop describes one end of the haul (pickup or delivery).
type Stop struct {
	Location    string      `bson:"location" json:"location"`
	Address     string      `bson:"address,omitempty" json:"address,omitempty"`
	City        string      `bson:"city,omitempty" json:"city,omitempty"`
	State       string      `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode     string      `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Coordinates Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Date        time.Time   `bson:"date" json:"date"`
}

// Cargo describes what is being hauled.
type Cargo struct {
	Type                string   `bson:"type" json:"type"`
	Weight              float64  `bson:"weight,omitempty" json:"weight,omitempty"`
	Volume              float64  `bson:"volume,omitempty" json:"volume,omitempty"`
	Quantity            int      `bson:"quantity,omitempty" json:"quantity,omitempty"`
	SpecialRequirements []string `bson:"specialRequirements,omitempty" json:"specialRequirements,omitempty"`
}

// Payment is the agreed price for the haul.
type Payment struct {
	Amount        float64 `bson:"amount" json:"amount"`
	Currency      string  `bson:"currency" json:"currency"`
	PaymentStatus string  `bson:"paymentStatus" json:"paymentStatus"`
}

// StatusChange is one entry in a job's append-only status history.
type StatusChange struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	UpdatedBy string    `bson:"updatedBy" json:"updatedBy"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Job is a freight transport task posted by a dispatcher or shipper.
// Bids and the status history are embedded so a single document update
// covers the whole unit; Version is the compare-and-swap counter that
// serializes concurrent writers on the same job.
type Job struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference         string             `bson:"reference" json:"reference"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	PostedBy          string             `bson:"postedBy" json:"postedBy"`
	PostedByRole      string             `bson:"postedByRole" json:"postedByRole"`
	AssignedTo        string             `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Status            string             `bson:"status" json:"status"`
	Pickup            Stop               `bson:"pickup" json:"pickup"`
	Delivery          Stop               `bson:"delivery" json:"delivery"`
	Cargo             Cargo              `bson:"cargo" json:"cargo"`
	Payment           Payment            `bson:"payment" json:"payment"`
	Distance          float64            `bson:"distance,omitempty" json:"distance,omitempty"`
	EstimatedDuration float64            `bson:"estimatedDuration,omitempty" json:"estimatedDuration,omitempty"`
	Bids              []Bid              `bson:"bids" json:"bids"`
	StatusHistory     []StatusChange     `bson:"statusHistory" json:"statusHistory"`
	Version           int64              `bson:"version" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
	CompletedAt       *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// Bid returns the embedded bid with the given ID, or nil.
func (j *Job) Bid(bidID string) *Bid {
	for i := range j.Bids {
		if j.Bids[i].ID == bidID {
			return &j.Bids[i]
		}
	}
	return nil
}
