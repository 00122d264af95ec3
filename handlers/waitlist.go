package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JoinWaitlist handles POST /api/waitlist.
func (h *BookingHandler) JoinWaitlist(c *gin.Context) {
	var input struct {
		ConsultantID string `json:"consultant_id" binding:"required"`
		ServiceID    string `json:"service_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	entry, err := h.Service.JoinWaitlist(c.Request.Context(), input.ConsultantID, CallerID(c), input.ServiceID)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// LeaveWaitlist handles DELETE /api/waitlist/:entryID.
func (h *BookingHandler) LeaveWaitlist(c *gin.Context) {
	if err := h.Service.LeaveWaitlist(c.Request.Context(), c.Param("entryID"), CallerID(c)); err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": "left"})
}

// StudentWaitlists handles GET /api/waitlist.
func (h *BookingHandler) StudentWaitlists(c *gin.Context) {
	entries, err := h.Service.StudentWaitlists(c.Request.Context(), CallerID(c))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waitlists": entries})
}
