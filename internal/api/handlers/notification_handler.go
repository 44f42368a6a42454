package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"freightmarket-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Store *store.Mongo
}

// GetNotifications lists the caller's notifications, newest first.
// Supports ?unread=true, ?limit= and ?offset=.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	rows, err := h.Store.ListNotifications(c.Request.Context(), userID, unreadOnly, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(rows), "data": rows})
}

// GetUnreadCount returns how many notifications the caller has not read.
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.Store.UnreadNotificationCount(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"unreadCount": count}})
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	err := h.Store.MarkNotificationRead(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not_found", "message": "Notification not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// MarkAllRead flags every unread notification for the caller.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	modified, err := h.Store.MarkAllNotificationsRead(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"modified": modified}})
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(c *gin.Context) {
	err := h.Store.DeleteNotification(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not_found", "message": "Notification not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}
