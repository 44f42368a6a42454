package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationJobPosted       = "job_posted"
	NotificationJobClaimed      = "job_claimed"
	NotificationJobStatusUpdate = "job_status_update"
	NotificationBidReceived     = "bid_received"
	NotificationBidAccepted     = "bid_accepted"
	NotificationBidRejected     = "bid_rejected"
	NotificationBidWithdrawn    = "bid_withdrawn"
	NotificationSystem          = "system"
)

// Notification is a durable per-user message created as a side effect of
// job and bid mutations. It is a projection: losing one never affects
// job or bid state.
type Notification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Recipient  string             `bson:"recipient" json:"recipient"`
	Sender     string             `bson:"sender,omitempty" json:"sender,omitempty"`
	Type       string             `bson:"type" json:"type"`
	Title      string             `bson:"title" json:"title"`
	Message    string             `bson:"message" json:"message"`
	RelatedJob string             `bson:"relatedJob,omitempty" json:"relatedJob,omitempty"`
	RelatedBid string             `bson:"relatedBid,omitempty" json:"relatedBid,omitempty"`
	Link       string             `bson:"link,omitempty" json:"link,omitempty"`
	IsRead     bool               `bson:"isRead" json:"isRead"`
	ReadAt     *time.Time         `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
