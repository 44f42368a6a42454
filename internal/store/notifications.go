package store

import (
	"context"
	"fmt"
	"time"

	"freightmarket-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pageWindow normalizes client paging input. Mongo rejects negative
// skip values at query time, so they are clamped here rather than
// surfaced as server errors.
func pageWindow(limit, offset int64) (int64, int64) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// InsertNotifications writes one row per recipient in a single batch.
func (m *Mongo) InsertNotifications(ctx context.Context, rows []models.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(rows))
	for i := range rows {
		docs = append(docs, rows[i])
	}
	_, err := m.notifications().InsertMany(ctx, docs)
	return err
}

// ListNotifications returns a user's notifications newest-first.
func (m *Mongo) ListNotifications(ctx context.Context, recipient string, unreadOnly bool, limit, offset int64) ([]models.Notification, error) {
	query := bson.M{"recipient": recipient}
	if unreadOnly {
		query["isRead"] = false
	}
	limit, offset = pageWindow(limit, offset)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)
	cursor, err := m.notifications().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var result []models.Notification
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	if result == nil {
		result = []models.Notification{}
	}
	return result, nil
}

// UnreadNotificationCount counts a user's unread notifications.
func (m *Mongo) UnreadNotificationCount(ctx context.Context, recipient string) (int64, error) {
	return m.notifications().CountDocuments(ctx, bson.M{"recipient": recipient, "isRead": false})
}

// MarkNotificationRead flags one of the user's notifications as read.
func (m *Mongo) MarkNotificationRead(ctx context.Context, id, recipient string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotificationNotFound
	}
	res, err := m.notifications().UpdateOne(ctx,
		bson.M{"_id": oid, "recipient": recipient},
		bson.M{"$set": bson.M{"isRead": true, "readAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllNotificationsRead flags every unread notification for the user.
func (m *Mongo) MarkAllNotificationsRead(ctx context.Context, recipient string) (int64, error) {
	res, err := m.notifications().UpdateMany(ctx,
		bson.M{"recipient": recipient, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

// DeleteNotification removes one of the user's notifications.
func (m *Mongo) DeleteNotification(ctx context.Context, id, recipient string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotificationNotFound
	}
	res, err := m.notifications().DeleteOne(ctx, bson.M{"_id": oid, "recipient": recipient})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
