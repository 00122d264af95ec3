package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JoinGroupSession handles POST /api/group-sessions/:bookingID/join.
// The outcome is discriminated: admitted, waitlisted (with the queue
// position) or already_enrolled.
func (h *BookingHandler) JoinGroupSession(c *gin.Context) {
	result, err := h.Service.JoinGroupSession(c.Request.Context(), c.Param("bookingID"), CallerID(c))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LeaveGroupSession handles POST /api/group-sessions/:bookingID/leave.
// Leaving a session you are not enrolled in is an idempotent no-op.
func (h *BookingHandler) LeaveGroupSession(c *gin.Context) {
	outcome, err := h.Service.LeaveGroupSession(c.Request.Context(), c.Param("bookingID"), CallerID(c))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}

// AvailableGroupSessions handles GET /api/group-sessions/available.
func (h *BookingHandler) AvailableGroupSessions(c *gin.Context) {
	sessions, err := h.Service.AvailableGroupSessions(c.Request.Context(), CallerID(c))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// EnrolledGroupSessions handles GET /api/group-sessions/enrolled.
func (h *BookingHandler) EnrolledGroupSessions(c *gin.Context) {
	sessions, err := h.Service.EnrolledGroupSessions(c.Request.Context(), CallerID(c))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
