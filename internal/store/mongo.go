package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Lookup errors surfaced by the notification and user collections.
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email is already registered")
)

// Mongo implements the engine's Store and Directory contracts plus the
// notification and user collections on one MongoDB database.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) jobs() *mongo.Collection          { return m.db.Collection("jobs") }
func (m *Mongo) notifications() *mongo.Collection { return m.db.Collection("notifications") }
func (m *Mongo) users() *mongo.Collection         { return m.db.Collection("users") }
