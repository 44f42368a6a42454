package models

import "time"

// Bid statuses. A bid is created "pending"; accepted, rejected and
// withdrawn are terminal.
const (
	BidStatusPending   = "pending"
	BidStatusAccepted  = "accepted"
	BidStatusRejected  = "rejected"
	BidStatusWithdrawn = "withdrawn"
)

// Bid is a trucker's priced offer on an open job. Bids live embedded in
// their parent job document, in submission order.
type Bid struct {
	ID          string     `bson:"bidID" json:"bidId"`
	Trucker     string     `bson:"trucker" json:"trucker"`
	Amount      float64    `bson:"amount" json:"amount"`
	Currency    string     `bson:"currency" json:"currency"`
	Message     string     `bson:"message,omitempty" json:"message,omitempty"`
	Status      string     `bson:"status" json:"status"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	RespondedAt *time.Time `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}
