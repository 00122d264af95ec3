package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ToggleSavedConsultant handles POST /api/saved-consultants/:consultantID/toggle.
func (h *BookingHandler) ToggleSavedConsultant(c *gin.Context) {
	saved, err := h.Service.ToggleSavedConsultant(c.Request.Context(), CallerID(c), c.Param("consultantID"))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// ListSavedConsultants handles GET /api/saved-consultants.
func (h *BookingHandler) ListSavedConsultants(c *gin.Context) {
	saved, err := h.Service.ListSavedConsultants(c.Request.Context(), CallerID(c))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_consultants": saved})
}
