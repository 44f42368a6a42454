package handlers

import (
	"net/http"

	"freightmarket-api-server/internal/jobs"

	"github.com/gin-gonic/gin"
)

type BidHandler struct {
	Service *jobs.Service
}

// PlaceBid submits a trucker's offer on an open job.
func (h *BidHandler) PlaceBid(c *gin.Context) {
	var input jobs.PlaceBidInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}
	job, err := h.Service.PlaceBid(c.Request.Context(), c.Param("id"), actorFromContext(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}

// AcceptBid picks the winner and rejects every rival pending bid.
func (h *BidHandler) AcceptBid(c *gin.Context) {
	job, err := h.Service.AcceptBid(c.Request.Context(), c.Param("id"), c.Param("bidId"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}

// RejectBid declines one pending bid.
func (h *BidHandler) RejectBid(c *gin.Context) {
	job, err := h.Service.RejectBid(c.Request.Context(), c.Param("id"), c.Param("bidId"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}

// WithdrawBid lets the bidder pull their own pending bid.
func (h *BidHandler) WithdrawBid(c *gin.Context) {
	job, err := h.Service.WithdrawBid(c.Request.Context(), c.Param("id"), c.Param("bidId"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}
