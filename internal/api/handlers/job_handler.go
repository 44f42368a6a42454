package handlers

import (
	"net/http"

	"freightmarket-api-server/internal/jobs"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	Service *jobs.Service
}

// GetJobs lists postings scoped to the requester's role.
func (h *JobHandler) GetJobs(c *gin.Context) {
	jobList, err := h.Service.ListJobs(c.Request.Context(), actorFromContext(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(jobList), "data": jobList})
}

// GetJob fetches a single posting.
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.Service.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}

// CreateJob posts a new job. The poster role comes from the token, never
// from the payload.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var input jobs.CreateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}
	job, err := h.Service.CreateJob(c.Request.Context(), actorFromContext(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": job})
}

// UpdateJob edits a posting's descriptive fields.
func (h *JobHandler) UpdateJob(c *gin.Context) {
	var input jobs.UpdateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}
	job, err := h.Service.UpdateJob(c.Request.Context(), c.Param("id"), actorFromContext(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}

// DeleteJob removes a posting.
func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.Service.DeleteJob(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// ClaimJob lets a trucker take an open job directly.
func (h *JobHandler) ClaimJob(c *gin.Context) {
	job, err := h.Service.ClaimJob(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}

type updateStatusPayload struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateJobStatus moves a job along its lifecycle.
func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	var payload updateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}
	job, err := h.Service.UpdateJobStatus(c.Request.Context(), c.Param("id"), actorFromContext(c), payload.Status, payload.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}
