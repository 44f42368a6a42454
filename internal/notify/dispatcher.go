package notify

import (
	"context"
	"encoding/json"
	"time"

	"freightmarket-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Pusher is the live-channel side of the dispatcher: per-user delivery,
// per-job rooms and a global broadcast. The websocket hub implements it
// and is handed in by reference at construction.
type Pusher interface {
	Send(userID string, message []byte) error
	BroadcastToJob(jobID string, message []byte)
	BroadcastAll(message []byte)
}

// Store persists notification rows.
type Store interface {
	InsertNotifications(ctx context.Context, rows []models.Notification) error
}

// Input describes one notification fanned out to a set of recipients.
type Input struct {
	Sender     string
	Type       string
	Title      string
	Message    string
	RelatedJob string
	RelatedBid string
	Link       string
}

// Dispatcher turns job and bid state changes into durable notifications
// plus best-effort websocket pushes. It never returns errors to callers:
// the job mutation has already committed by the time it runs, and a lost
// notification must not look like a failed operation.
type Dispatcher struct {
	store  Store
	pusher Pusher
	log    *zap.SugaredLogger
}

func NewDispatcher(store Store, pusher Pusher) *Dispatcher {
	return &Dispatcher{
		store:  store,
		pusher: pusher,
		log:    zap.S().Named("notify"),
	}
}

// Notify writes one notification row per recipient, then pushes a live
// newNotification event to each recipient's channel. Both phases are
// best-effort; failures are logged and swallowed.
func (d *Dispatcher) Notify(ctx context.Context, recipients []string, in Input) {
	if len(recipients) == 0 {
		return
	}
	now := time.Now()

	rows := make([]models.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		rows = append(rows, models.Notification{
			ID:         primitive.NewObjectID(),
			Recipient:  recipient,
			Sender:     in.Sender,
			Type:       in.Type,
			Title:      in.Title,
			Message:    in.Message,
			RelatedJob: in.RelatedJob,
			RelatedBid: in.RelatedBid,
			Link:       in.Link,
			CreatedAt:  now,
		})
	}
	if err := d.store.InsertNotifications(ctx, rows); err != nil {
		d.log.Errorw("failed to persist notifications", "type", in.Type, "recipients", len(recipients), "error", err)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event":      "newNotification",
		"type":       in.Type,
		"title":      in.Title,
		"message":    in.Message,
		"relatedJob": in.RelatedJob,
		"relatedBid": in.RelatedBid,
		"link":       in.Link,
		"createdAt":  now,
	})
	if err != nil {
		d.log.Errorw("failed to marshal notification event", "type", in.Type, "error", err)
		return
	}
	for _, recipient := range recipients {
		if err := d.pusher.Send(recipient, payload); err != nil {
			d.log.Warnw("websocket push failed", "recipient", recipient, "type", in.Type, "error", err)
		}
	}
}

// BroadcastJobStatus fans a statusUpdated event out to the job's room.
func (d *Dispatcher) BroadcastJobStatus(jobID, status, updatedBy string) {
	payload, err := json.Marshal(map[string]interface{}{
		"event":     "statusUpdated",
		"jobId":     jobID,
		"status":    status,
		"updatedBy": updatedBy,
	})
	if err != nil {
		d.log.Errorw("failed to marshal statusUpdated event", "jobId", jobID, "error", err)
		return
	}
	d.pusher.BroadcastToJob(jobID, payload)
}

// BroadcastNewBid fans a newBid event out to the job's room.
func (d *Dispatcher) BroadcastNewBid(jobID string, amount float64, trucker string) {
	payload, err := json.Marshal(map[string]interface{}{
		"event":   "newBid",
		"jobId":   jobID,
		"amount":  amount,
		"trucker": trucker,
	})
	if err != nil {
		d.log.Errorw("failed to marshal newBid event", "jobId", jobID, "error", err)
		return
	}
	d.pusher.BroadcastToJob(jobID, payload)
}

// BroadcastJobPosted announces a fresh posting to every connected client.
func (d *Dispatcher) BroadcastJobPosted(jobID, title string) {
	payload, err := json.Marshal(map[string]interface{}{
		"event": "newJobPosted",
		"jobId": jobID,
		"title": title,
	})
	if err != nil {
		d.log.Errorw("failed to marshal newJobPosted event", "jobId", jobID, "error", err)
		return
	}
	d.pusher.BroadcastAll(payload)
}
