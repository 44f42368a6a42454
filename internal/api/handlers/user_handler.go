package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"freightmarket-api-server/internal/auth"
	"freightmarket-api-server/internal/models"
	"freightmarket-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Store *store.Mongo
	Auth  *auth.Service
}

type registerPayload struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	Company  string `json:"company"`
	Phone    string `json:"phone"`
}

type loginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and returns a token. Admin accounts are
// seeded, never self-registered.
func (h *UserHandler) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}

	switch payload.Role {
	case models.RoleTrucker, models.RoleDispatcher, models.RoleShipper, models.RoleServiceProvider:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": "invalid role"})
		return
	}

	hashed, err := auth.HashPassword(payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{
		Name:      payload.Name,
		Email:     strings.ToLower(payload.Email),
		Password:  hashed,
		Role:      payload.Role,
		Company:   payload.Company,
		Phone:     payload.Phone,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": "Email is already registered"})
			return
		}
		respondError(c, err)
		return
	}

	token, err := h.Auth.GenerateToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"token": token, "user": user}})
}

// Login checks credentials and returns a token.
func (h *UserHandler) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}

	user, err := h.Store.FindUserByEmail(c.Request.Context(), strings.ToLower(payload.Email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized", "message": "Invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}
	if !user.IsActive || !auth.CheckPasswordHash(payload.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized", "message": "Invalid credentials"})
		return
	}

	token, err := h.Auth.GenerateToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"token": token, "user": user}})
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.Store.FindUserByID(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not_found", "message": "User not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}
