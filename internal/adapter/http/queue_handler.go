package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carenow/queue-notify/internal/app"
	"github.com/carenow/queue-notify/internal/domain"
)

type QueueHandler struct {
	service *app.QueueService
}

func NewQueueHandler(service *app.QueueService) *QueueHandler {
	return &QueueHandler{service: service}
}

// Advance moves a queue to a new position. The caller gets 202 because
// notification fan-out happens asynchronously after the event is published.
func (h *QueueHandler) Advance(c *gin.Context) {
	var req AdvanceQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	advance, err := h.service.Advance(c.Request.Context(), c.Param("key"), req.Position)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, AdvanceQueueResponse{
		QueueKey: advance.QueueKey,
		Before:   advance.Before,
		After:    advance.After,
	})
}

func (h *QueueHandler) GetState(c *gin.Context) {
	state, err := h.service.GetState(c.Request.Context(), c.Param("key"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewQueueStateResponse(state))
}

func handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrQueueNotFound),
		errors.Is(err, domain.ErrPreferenceNotFound),
		errors.Is(err, domain.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEmptyRecipient),
		errors.Is(err, domain.ErrInvalidThreshold):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrStaleAdvance):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
