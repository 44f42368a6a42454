package database

import (
	"context"
	"time"

	"freightmarket-api-server/config"
	"freightmarket-api-server/internal/auth"
	"freightmarket-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SeedAdmin creates the administrator account on first boot. Admins are
// never self-registered through the API.
func SeedAdmin(ctx context.Context, db *mongo.Database, cfg config.Config) error {
	log := zap.S().Named("database")

	email := cfg.Admin.Email
	if email == "" {
		email = "admin@example.com"
	}
	password := cfg.Admin.Password
	if password == "" {
		password = "adminpassword"
	}

	userCollection := db.Collection("users")
	count, err := userCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin already exists, seeding skipped")
		return nil
	}

	log.Info("admin not found, seeding")
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:     email,
		Name:      "Administrator",
		Password:  hashedPassword,
		Role:      models.RoleAdmin,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if _, err := userCollection.InsertOne(ctx, admin); err != nil {
		return err
	}

	log.Info("admin seeded successfully")
	return nil
}
