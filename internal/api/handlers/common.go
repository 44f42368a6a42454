package handlers

import (
	"errors"
	"net/http"

	"freightmarket-api-server/internal/jobs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// actorFromContext rebuilds the principal the Authenticate middleware
// stored on the request.
func actorFromContext(c *gin.Context) jobs.Actor {
	return jobs.Actor{
		ID:   c.GetString("user_id"),
		Role: c.GetString("user_role"),
	}
}

// statusForKind maps engine error kinds to HTTP status codes.
func statusForKind(kind jobs.Kind) int {
	switch kind {
	case jobs.KindValidation, jobs.KindDuplicateBid:
		return http.StatusBadRequest
	case jobs.KindUnauthorized:
		return http.StatusForbidden
	case jobs.KindNotFound:
		return http.StatusNotFound
	case jobs.KindInvalidTransition, jobs.KindJobNotOpen, jobs.KindBidNotPending, jobs.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError renders an engine error with its stable kind, or a
// generic 500 for anything unexpected.
func respondError(c *gin.Context, err error) {
	var engineErr *jobs.Error
	if errors.As(err, &engineErr) {
		c.JSON(statusForKind(engineErr.Kind), gin.H{
			"success": false,
			"error":   string(engineErr.Kind),
			"message": engineErr.Message,
		})
		return
	}
	zap.S().Named("api").Errorw("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "internal_error",
		"message": "Something went wrong",
	})
}
