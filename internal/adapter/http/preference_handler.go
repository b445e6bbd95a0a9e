package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carenow/queue-notify/internal/app"
)

type PreferenceHandler struct {
	service *app.PreferenceService
}

func NewPreferenceHandler(service *app.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

func (h *PreferenceHandler) Get(c *gin.Context) {
	pref, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPreferenceResponse(pref))
}

func (h *PreferenceHandler) Upsert(c *gin.Context) {
	var req UpsertPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	pref := req.ToPreference(c.Param("id"))
	if err := h.service.Upsert(c.Request.Context(), pref); err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPreferenceResponse(pref))
}
