package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User matches the document in MongoDB.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Company   string             `bson:"company,omitempty" json:"company,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
